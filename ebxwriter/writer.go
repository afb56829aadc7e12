// Package ebxwriter encodes an *ebxasset.Asset back into the Partition-dialect
// wire format ebxreader decodes: a pre-pass walk to discover the type,
// array-shape, and import sets a fresh set of descriptor tables must
// describe, followed by a single emission pass writing every instance's
// field data, backed by growable side buffers for strings, arrays, and
// boxed values.
package ebxwriter

import (
	"github.com/pkg/errors"

	"github.com/shoe7ess/FrostyToolsuite/ebxasset"
	"github.com/shoe7ess/FrostyToolsuite/ebxdesc"
	"github.com/shoe7ess/FrostyToolsuite/ebxheader"
	"github.com/shoe7ess/FrostyToolsuite/ebxio"
	"github.com/shoe7ess/FrostyToolsuite/ebxlog"
	"github.com/shoe7ess/FrostyToolsuite/ebxresolve"
	"github.com/shoe7ess/FrostyToolsuite/ebxschema"
)

// outputMagic is always the version-4 Partition magic: version 4 is the only
// one of the two Partition magics with a boxed-value table, and this writer
// supports BoxedValueRef fields unconditionally rather than picking a magic
// per-asset based on whether one happens to be present.
const outputMagic = ebxheader.MagicV4

// stringsOffsetPatchPos and boxedRelPatchPos are the header's byte offsets
// this writer backpatches once the descriptor-table region's actual size
// (StringsOffset) and the boxed-value region's actual position (the
// boxedValuesOffset relative delta) are known. TypeNamesLen (at byte offset
// 26) is likewise backpatched once the name pool is encoded; every other
// header field is known before the header is first written.
const (
	stringsOffsetPatchPos = 4
	boxedRelPatchPos      = 60
)

// Writer encodes one asset per call to WriteAsset onto the stream it was
// constructed with. Like Reader, it is not meant to be reused across assets.
type Writer struct {
	stream *ebxio.Writer
	oracle ebxschema.Oracle
	logger ebxlog.Logger
}

// New builds a Writer that appends its encoded output to stream. A nil
// logger installs the silent default.
func New(stream *ebxio.Writer, oracle ebxschema.Oracle, logger ebxlog.Logger) *Writer {
	if logger == nil {
		logger = ebxlog.Default
	}
	return &Writer{stream: stream, oracle: oracle, logger: logger}
}

// WriteAsset encodes a in full: pre-pass, descriptor-table synthesis, one
// emission pass over every object in a.Objects, then final assembly of the
// header and every region in wire order.
func (w *Writer) WriteAsset(a *ebxasset.Asset) error {
	pre, err := collect(w.oracle, a)
	if err != nil {
		return errors.Wrap(err, "ebxwriter.WriteAsset: pre-pass")
	}

	desc := newDescriptorBuilder(w.oracle)
	if err := desc.build(pre); err != nil {
		return errors.Wrap(err, "ebxwriter.WriteAsset: descriptor tables")
	}

	instanceRows, err := buildInstanceRows(a.Objects, desc)
	if err != nil {
		return err
	}

	es := &emitState{
		oracle:    w.oracle,
		desc:      desc,
		pre:       pre,
		asset:     a,
		instances: ebxio.NewWriter(),
		arrays:    ebxio.NewWriter(),
		boxed:     ebxio.NewWriter(),
		strings:   newStringInterner(),
	}
	if err := es.writeAllInstances(a); err != nil {
		return errors.Wrap(err, "ebxwriter.WriteAsset: instance data")
	}

	// The string pool and the instance data are padded to 16 bytes, and the
	// strings and boxed-value regions start on 16-byte boundaries, so every
	// side buffer's own alignment padding still holds at its file position.
	es.strings.buf.Pad(16)
	es.instances.Seek(int64(es.instances.Len()))
	es.instances.Pad(16)

	header := ebxheader.Header{
		Magic:                outputMagic,
		ImportCount:          uint32(len(pre.imports)),
		InstanceCount:        uint16(len(instanceRows)),
		ExportedCount:        uint16(a.ExportedCount),
		UniqueTypeCount:      uint16(len(pre.types)),
		TypeDescriptorCount:  uint16(len(desc.types)),
		FieldDescriptorCount: uint16(len(desc.fields)),
		StringsLen:           es.strings.Len(),
		ArrayCount:           uint32(len(es.arrayRows)),
		DataLen:              uint32(es.instances.Len()),
		FileGuid:             a.FileGuid,
		BoxedValuesCount:     uint32(len(es.boxedValueRows)),
	}
	header.StringsAndDataLen = header.StringsLen + header.DataLen

	headerStart := w.stream.Tell()
	ebxheader.Encode(w.stream, header)

	ebxdesc.EncodeImports(w.stream, pre.imports)

	header.TypeNamesLen = ebxdesc.EncodeTypeNames(w.stream, desc.names)

	ebxdesc.EncodeFieldDescriptors(w.stream, desc.fields)
	ebxdesc.EncodeTypeDescriptors(w.stream, desc.types)
	ebxdesc.EncodeInstanceRows(w.stream, instanceRows)

	w.stream.Pad(16)
	ebxdesc.EncodeArrayRows(w.stream, es.arrayRows)
	w.stream.Pad(16)
	ebxdesc.EncodeBoxedValueRows(w.stream, es.boxedValueRows)

	w.stream.Pad(16)
	stringsOffset := w.stream.Tell()
	w.stream.WriteBytes(es.strings.Bytes())
	w.stream.WriteBytes(es.instances.Bytes())
	w.stream.WriteBytes(es.arrays.Bytes())
	w.stream.Pad(16)
	boxedValuesOffset := w.stream.Tell()
	w.stream.WriteBytes(es.boxed.Bytes())

	w.stream.WriteU32At(headerStart+stringsOffsetPatchPos, uint32(stringsOffset))
	rel := uint32(boxedValuesOffset - stringsOffset - int64(header.StringsLen))
	w.stream.WriteU32At(headerStart+boxedRelPatchPos, rel)

	// TypeNamesLen was only known after encoding the name pool, patched here
	// rather than threaded back through the Header value used for the first
	// Encode call.
	w.stream.WriteAt(headerStart+26, u16Bytes(header.TypeNamesLen))

	return nil
}

func u16Bytes(v uint16) []byte {
	return []byte{byte(v), byte(v >> 8)}
}

// buildInstanceRows compacts a.Objects' type sequence into runs, the wire's
// instance table representation.
func buildInstanceRows(objects []ebxschema.Instance, desc *descriptorBuilder) ([]ebxdesc.InstanceRow, error) {
	var rows []ebxdesc.InstanceRow
	for _, obj := range objects {
		idx, ok := desc.typeIndex[obj.TypeNameHash()]
		if !ok {
			return nil, errors.Errorf("ebxwriter: object type hash %d has no descriptor", obj.TypeNameHash())
		}
		if n := len(rows); n > 0 && rows[n-1].TypeRef == uint16(idx) && rows[n-1].Count < 0xFFFF {
			rows[n-1].Count++
			continue
		}
		rows = append(rows, ebxdesc.InstanceRow{TypeRef: uint16(idx), Count: 1})
	}
	return rows, nil
}

// writeAllInstances lays out every top-level object: alignment padding, the
// optional exported GUID, the optional non-4-aligned header slot, then its
// field data at the resulting startOffset. Mirrors ebxreader.readInstance in
// reverse.
func (e *emitState) writeAllInstances(a *ebxasset.Asset) error {
	for i, obj := range a.Objects {
		idx, ok := e.desc.typeIndex[obj.TypeNameHash()]
		if !ok {
			return errors.Errorf("ebxwriter: object %d has unregistered type hash %d", i, obj.TypeNameHash())
		}
		t := e.desc.types[idx]
		align := ebxresolve.Alignment(t)
		e.instances.Pad(int(align))

		if i < a.ExportedCount {
			var guid ebxio.Guid
			if i < len(a.Guids) {
				guid = a.Guids[i].Guid
			}
			e.instances.WriteGuid(guid)
		}
		if ebxresolve.HasObjectHeader(t) {
			e.instances.WriteBytes(make([]byte, 8))
		}

		startOffset := e.instances.Tell() - 8

		info, ok := e.oracle.TypeInfo(t.NameHash)
		if !ok {
			return errors.Wrapf(ebxasset.ErrSchemaMismatch, "instance type hash %d", t.NameHash)
		}
		if err := e.writeInstanceBody(t, info, obj, startOffset); err != nil {
			return errors.Wrapf(err, "ebxwriter: instance %d", i)
		}
	}
	return nil
}
