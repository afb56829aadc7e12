package ebxreader

import (
	"github.com/pkg/errors"

	"github.com/shoe7ess/FrostyToolsuite/ds"
	"github.com/shoe7ess/FrostyToolsuite/ebxasset"
	"github.com/shoe7ess/FrostyToolsuite/ebxdesc"
	"github.com/shoe7ess/FrostyToolsuite/ebxresolve"
	"github.com/shoe7ess/FrostyToolsuite/ebxschema"
)

// readClassBody walks t's own field descriptors (not its base type's —
// Inherited recurses explicitly), seeking to startOffset+field.DataOffset for
// each, and pads to t's own alignment once every field has been read.
func (rd *Reader) readClassBody(t ebxdesc.TypeDescriptor, info ebxschema.TypeInfo, obj ebxschema.Instance, startOffset int64) error {
	parentIdx := rd.resolver.IndexOf(t)

	for j := uint8(0); j < t.FieldCount; j++ {
		field, err := rd.resolver.ResolveField(uint32(t.FieldIndex) + uint32(j))
		if err != nil {
			return err
		}
		if err := rd.stream.Seek(startOffset + int64(field.DataOffset)); err != nil {
			return err
		}

		switch field.Flags.Kind() {
		case ebxdesc.Inherited:
			baseType, err := rd.resolver.ResolveTypeRelative(parentIdx, field)
			if err != nil {
				return err
			}
			baseInfo, ok := rd.oracle.TypeInfo(baseType.NameHash)
			if !ok {
				return errors.Wrapf(ebxasset.ErrSchemaMismatch, "base type hash %d", baseType.NameHash)
			}
			if err := rd.readClassBody(baseType, baseInfo, obj, startOffset); err != nil {
				return err
			}

		case ebxdesc.Array:
			elems, err := rd.readArrayField()
			if err != nil {
				return err
			}
			rd.assignArray(info, field, obj, elems)

		default:
			val, err := rd.readFieldValue(field, parentIdx)
			if err != nil {
				return err
			}
			rd.assignScalar(info, field, obj, val)
		}
	}

	return rd.stream.Pad(int(ebxresolve.Alignment(t)))
}

func (rd *Reader) assignScalar(info ebxschema.TypeInfo, field ebxdesc.FieldDescriptor, obj ebxschema.Instance, val any) {
	prop, ok := info.Property(field.NameHash)
	if !ok {
		rd.logger.Debugf("ebxreader: skipping unknown field %q (hash %d) on type %q", field.Name, field.NameHash, info.Name)
		return
	}
	if prop.Wrap != nil {
		val = prop.Wrap(val)
	}
	if err := prop.Set(obj, val); err != nil {
		rd.logger.Debugf("ebxreader: skipping field %q: %v (decoded value %s)", field.Name, err, ds.DumpJSON(val))
	}
}

func (rd *Reader) assignArray(info ebxschema.TypeInfo, field ebxdesc.FieldDescriptor, obj ebxschema.Instance, elems []any) {
	prop, ok := info.Property(field.NameHash)
	if !ok {
		rd.logger.Debugf("ebxreader: skipping unknown array field %q (hash %d) on type %q", field.Name, field.NameHash, info.Name)
		return
	}
	for _, v := range elems {
		if prop.Wrap != nil {
			v = prop.Wrap(v)
		}
		if err := prop.Append(obj, v); err != nil {
			rd.logger.Debugf("ebxreader: skipping element of field %q: %v", field.Name, err)
		}
	}
}

// readArrayField reads the i32 index into the array table and decodes every
// element at that row's offset within the array region. A negative index (no
// elements assigned) yields an empty slice rather than an error.
func (rd *Reader) readArrayField() ([]any, error) {
	idx, err := rd.stream.ReadI32()
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return []any{}, nil
	}
	if int(idx) >= len(rd.arrayRows) {
		return nil, errors.Wrapf(ebxasset.ErrBadLayout, "array index %d out of range (%d rows)", idx, len(rd.arrayRows))
	}
	row := rd.arrayRows[idx]

	saved, err := rd.stream.Tell()
	if err != nil {
		return nil, err
	}
	if err := rd.stream.Seek(rd.header.ArraysOffset() + int64(row.Offset)); err != nil {
		return nil, err
	}

	arrType, err := rd.resolver.ResolveType(uint16(row.TypeDescriptorRef))
	if err != nil {
		return nil, errors.Wrap(ebxasset.ErrBadLayout, err.Error())
	}
	elemField, err := rd.resolver.ResolveField(uint32(arrType.FieldIndex))
	if err != nil {
		return nil, errors.Wrap(ebxasset.ErrBadLayout, err.Error())
	}
	parentIdx := rd.resolver.IndexOf(arrType)

	elems := make([]any, 0, row.Count)
	for i := uint32(0); i < row.Count; i++ {
		v, err := rd.readFieldValue(elemField, parentIdx)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}

	if err := rd.stream.Seek(saved); err != nil {
		return nil, err
	}
	return elems, nil
}
