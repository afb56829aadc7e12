package ebxio

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/shoe7ess/FrostyToolsuite/ds"
)

// Reader wraps a random-access byte stream with the positional primitives
// EBX decoding needs: fixed-width little-endian scalars, GUIDs, and
// null-terminated or fixed-size strings.
type Reader struct {
	r io.ReadSeeker
}

func NewReader(r io.ReadSeeker) *Reader {
	return &Reader{r: r}
}

func NewReaderBytes(bs []byte) *Reader {
	return &Reader{r: newSeekableBytes(bs)}
}

func (b *Reader) Tell() (int64, error) {
	return b.r.Seek(0, io.SeekCurrent)
}

func (b *Reader) Seek(absolute int64) error {
	_, err := b.r.Seek(absolute, io.SeekStart)
	return errors.Wrap(err, "ebxio.Reader.Seek")
}

func (b *Reader) ReadBytes(n int) ([]byte, error) {
	bs := make([]byte, n)
	if n == 0 {
		return bs, nil
	}
	if _, err := io.ReadFull(b.r, bs); err != nil {
		return nil, errors.Wrap(err, "ebxio.Reader.ReadBytes")
	}
	return bs, nil
}

func (b *Reader) ReadU8() (uint8, error) {
	bs, err := b.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return bs[0], nil
}

func (b *Reader) ReadI8() (int8, error) {
	v, err := b.ReadU8()
	return int8(v), err
}

func (b *Reader) ReadU16() (uint16, error) {
	bs, err := b.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(bs), nil
}

func (b *Reader) ReadI16() (int16, error) {
	v, err := b.ReadU16()
	return int16(v), err
}

func (b *Reader) ReadU32() (uint32, error) {
	bs, err := b.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(bs), nil
}

func (b *Reader) ReadI32() (int32, error) {
	v, err := b.ReadU32()
	return int32(v), err
}

func (b *Reader) ReadU64() (uint64, error) {
	bs, err := b.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(bs), nil
}

func (b *Reader) ReadI64() (int64, error) {
	v, err := b.ReadU64()
	return int64(v), err
}

func (b *Reader) ReadF32() (float32, error) {
	v, err := b.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (b *Reader) ReadF64() (float64, error) {
	v, err := b.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (b *Reader) ReadGuid() (Guid, error) {
	bs, err := b.ReadBytes(16)
	if err != nil {
		return Guid{}, err
	}
	var g Guid
	copy(g[:], bs)
	return g, nil
}

// ReadCString reads bytes up to and including the next NUL terminator and
// returns the string without the terminator.
func (b *Reader) ReadCString() (string, error) {
	buf := make([]byte, 0, 16)
	for {
		c, err := b.ReadU8()
		if err != nil {
			return "", errors.Wrap(err, "ebxio.Reader.ReadCString: missing terminator")
		}
		if c == 0 {
			return string(buf), nil
		}
		buf = append(buf, c)
	}
}

// ReadFixedString reads exactly n bytes and trims everything from the first
// NUL onward (EBX's fixed-width `String` field kind).
func (b *Reader) ReadFixedString(n int) (string, error) {
	bs, err := b.ReadBytes(n)
	if err != nil {
		return "", err
	}
	if idx := indexByte(bs, 0); idx >= 0 {
		bs = bs[:idx]
	}
	return string(bs), nil
}

// Pad advances the position to the next multiple of align (no-op if already
// aligned or align <= 1).
func (b *Reader) Pad(align int) error {
	if align <= 1 {
		return nil
	}
	pos, err := b.Tell()
	if err != nil {
		return err
	}
	target := ds.NearestDivisibleByM(int(pos), align)
	if target == int(pos) {
		return nil
	}
	_, err = b.ReadBytes(target - int(pos))
	return err
}

func indexByte(bs []byte, c byte) int {
	for i, b := range bs {
		if b == c {
			return i
		}
	}
	return -1
}

// newSeekableBytes adapts a []byte into an io.ReadSeeker without pulling in
// bytes.Reader's value-copy semantics at call sites.
func newSeekableBytes(bs []byte) io.ReadSeeker {
	return &bytesReadSeeker{data: bs}
}

type bytesReadSeeker struct {
	data []byte
	pos  int64
}

func (r *bytesReadSeeker) Read(p []byte) (int, error) {
	if r.pos >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += int64(n)
	return n, nil
}

func (r *bytesReadSeeker) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = r.pos
	case io.SeekEnd:
		base = int64(len(r.data))
	default:
		return 0, errors.New("ebxio: invalid seek whence")
	}
	newPos := base + offset
	if newPos < 0 {
		return 0, errors.New("ebxio: negative seek position")
	}
	r.pos = newPos
	return newPos, nil
}
