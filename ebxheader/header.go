// Package ebxheader decodes and encodes the fixed-size Partition header:
// magic, the descriptor-table sizes, and (version 4 only) the boxed-value
// table location.
package ebxheader

import (
	"github.com/pkg/errors"

	"github.com/shoe7ess/FrostyToolsuite/ebxasset"
	"github.com/shoe7ess/FrostyToolsuite/ebxio"
)

const (
	MagicV2 uint32 = 2
	MagicV4 uint32 = 4

	paddingSize = 16
)

type Header struct {
	Magic               uint32
	StringsOffset       uint32
	StringsAndDataLen   uint32
	ImportCount         uint32
	InstanceCount       uint16
	ExportedCount       uint16
	UniqueTypeCount     uint16
	TypeDescriptorCount uint16
	FieldDescriptorCount uint16
	TypeNamesLen        uint16
	StringsLen          uint32
	ArrayCount          uint32
	DataLen             uint32
	FileGuid            ebxio.Guid
	BoxedValuesCount    uint32
	// BoxedValuesOffset is already rebased to an absolute file offset.
	BoxedValuesOffset uint32
}

// InstanceRegionOffset is where the instance data region begins.
func (h Header) InstanceRegionOffset() int64 {
	return int64(h.StringsOffset) + int64(h.StringsLen)
}

// ArraysOffset is where the array region begins.
func (h Header) ArraysOffset() int64 {
	return h.InstanceRegionOffset() + int64(h.DataLen)
}

func Decode(r *ebxio.Reader) (*Header, error) {
	magic, err := r.ReadU32()
	if err != nil {
		return nil, errors.Wrap(err, "ebxheader.Decode: magic")
	}
	if magic != MagicV2 && magic != MagicV4 {
		return nil, errors.Wrapf(ebxasset.ErrBadMagic, "ebxheader.Decode: magic %d", magic)
	}

	h := &Header{Magic: magic}
	if h.StringsOffset, err = r.ReadU32(); err != nil {
		return nil, errors.Wrap(err, "ebxheader.Decode: stringsOffset")
	}
	if h.StringsAndDataLen, err = r.ReadU32(); err != nil {
		return nil, errors.Wrap(err, "ebxheader.Decode: stringsAndDataLen")
	}
	if h.ImportCount, err = r.ReadU32(); err != nil {
		return nil, errors.Wrap(err, "ebxheader.Decode: importCount")
	}
	if h.InstanceCount, err = r.ReadU16(); err != nil {
		return nil, errors.Wrap(err, "ebxheader.Decode: instanceCount")
	}
	if h.ExportedCount, err = r.ReadU16(); err != nil {
		return nil, errors.Wrap(err, "ebxheader.Decode: exportedCount")
	}
	if h.UniqueTypeCount, err = r.ReadU16(); err != nil {
		return nil, errors.Wrap(err, "ebxheader.Decode: uniqueTypeCount")
	}
	if h.TypeDescriptorCount, err = r.ReadU16(); err != nil {
		return nil, errors.Wrap(err, "ebxheader.Decode: typeDescriptorCount")
	}
	if h.FieldDescriptorCount, err = r.ReadU16(); err != nil {
		return nil, errors.Wrap(err, "ebxheader.Decode: fieldDescriptorCount")
	}
	if h.TypeNamesLen, err = r.ReadU16(); err != nil {
		return nil, errors.Wrap(err, "ebxheader.Decode: typeNamesLen")
	}
	if h.StringsLen, err = r.ReadU32(); err != nil {
		return nil, errors.Wrap(err, "ebxheader.Decode: stringsLen")
	}
	if h.ArrayCount, err = r.ReadU32(); err != nil {
		return nil, errors.Wrap(err, "ebxheader.Decode: arrayCount")
	}
	if h.DataLen, err = r.ReadU32(); err != nil {
		return nil, errors.Wrap(err, "ebxheader.Decode: dataLen")
	}
	if h.FileGuid, err = r.ReadGuid(); err != nil {
		return nil, errors.Wrap(err, "ebxheader.Decode: fileGuid")
	}

	if magic == MagicV4 {
		if h.BoxedValuesCount, err = r.ReadU32(); err != nil {
			return nil, errors.Wrap(err, "ebxheader.Decode: boxedValuesCount")
		}
		rel, err := r.ReadU32()
		if err != nil {
			return nil, errors.Wrap(err, "ebxheader.Decode: boxedValuesOffset")
		}
		h.BoxedValuesOffset = h.StringsOffset + h.StringsLen + rel
	} else {
		if _, err := r.ReadBytes(paddingSize); err != nil {
			return nil, errors.Wrap(err, "ebxheader.Decode: padding")
		}
	}

	return h, nil
}

func Encode(w *ebxio.Writer, h Header) {
	w.WriteU32(h.Magic)
	w.WriteU32(h.StringsOffset)
	w.WriteU32(h.StringsAndDataLen)
	w.WriteU32(h.ImportCount)
	w.WriteU16(h.InstanceCount)
	w.WriteU16(h.ExportedCount)
	w.WriteU16(h.UniqueTypeCount)
	w.WriteU16(h.TypeDescriptorCount)
	w.WriteU16(h.FieldDescriptorCount)
	w.WriteU16(h.TypeNamesLen)
	w.WriteU32(h.StringsLen)
	w.WriteU32(h.ArrayCount)
	w.WriteU32(h.DataLen)
	w.WriteGuid(h.FileGuid)

	if h.Magic == MagicV4 {
		w.WriteU32(h.BoxedValuesCount)
		rel := h.BoxedValuesOffset - h.StringsOffset - h.StringsLen
		w.WriteU32(rel)
	} else {
		w.WriteBytes(make([]byte, paddingSize))
	}
}
