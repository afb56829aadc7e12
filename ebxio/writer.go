package ebxio

import (
	"encoding/binary"
	"math"

	"github.com/shoe7ess/FrostyToolsuite/ds"
)

// Writer is a growable byte buffer with an explicit write cursor, so that
// the writer's pre-pass/emit split (layout first, backpatch absolute offsets
// second) is a plain slice write rather than a second streaming pass.
type Writer struct {
	buf []byte
	pos int
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 4096)}
}

func (w *Writer) Tell() int64 {
	return int64(w.pos)
}

func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

// Seek moves the write cursor to an absolute position, growing the buffer
// with zero bytes if necessary so a later WriteAt-style overwrite lands on
// real storage.
func (w *Writer) Seek(absolute int64) {
	w.pos = int(absolute)
	w.ensure(0)
}

func (w *Writer) ensure(extra int) {
	need := w.pos + extra
	if need <= len(w.buf) {
		return
	}
	w.buf = append(w.buf, make([]byte, need-len(w.buf))...)
}

func (w *Writer) WriteBytes(bs []byte) {
	w.ensure(len(bs))
	copy(w.buf[w.pos:], bs)
	w.pos += len(bs)
}

func (w *Writer) WriteU8(v uint8) {
	w.WriteBytes([]byte{v})
}

func (w *Writer) WriteI8(v int8) {
	w.WriteU8(uint8(v))
}

func (w *Writer) WriteU16(v uint16) {
	bs := make([]byte, 2)
	binary.LittleEndian.PutUint16(bs, v)
	w.WriteBytes(bs)
}

func (w *Writer) WriteI16(v int16) {
	w.WriteU16(uint16(v))
}

func (w *Writer) WriteU32(v uint32) {
	bs := make([]byte, 4)
	binary.LittleEndian.PutUint32(bs, v)
	w.WriteBytes(bs)
}

func (w *Writer) WriteI32(v int32) {
	w.WriteU32(uint32(v))
}

func (w *Writer) WriteU64(v uint64) {
	bs := make([]byte, 8)
	binary.LittleEndian.PutUint64(bs, v)
	w.WriteBytes(bs)
}

func (w *Writer) WriteI64(v int64) {
	w.WriteU64(uint64(v))
}

func (w *Writer) WriteF32(v float32) {
	w.WriteU32(math.Float32bits(v))
}

func (w *Writer) WriteF64(v float64) {
	w.WriteU64(math.Float64bits(v))
}

func (w *Writer) WriteGuid(g Guid) {
	w.WriteBytes(g[:])
}

func (w *Writer) WriteCString(s string) {
	w.WriteBytes([]byte(s))
	w.WriteU8(0)
}

// WriteFixedString writes s padded with zero bytes to exactly n bytes. The
// caller is responsible for ensuring len(s) < n.
func (w *Writer) WriteFixedString(s string, n int) {
	bs := make([]byte, n)
	copy(bs, s)
	w.WriteBytes(bs)
}

// Pad zero-fills up to the next multiple of align.
func (w *Writer) Pad(align int) {
	if align <= 1 {
		return
	}
	target := ds.NearestDivisibleByM(w.pos, align)
	if target == w.pos {
		return
	}
	w.WriteBytes(ds.Repeat(target-w.pos, byte(0)))
}

// WriteAt overwrites bytes at an absolute offset without disturbing the
// current write cursor — used to backpatch table offsets once the regions
// that follow them have been laid out.
func (w *Writer) WriteAt(offset int64, bs []byte) {
	save := w.pos
	w.Seek(offset)
	w.WriteBytes(bs)
	w.pos = save
	w.ensure(0)
}

func (w *Writer) WriteU32At(offset int64, v uint32) {
	bs := make([]byte, 4)
	binary.LittleEndian.PutUint32(bs, v)
	w.WriteAt(offset, bs)
}
