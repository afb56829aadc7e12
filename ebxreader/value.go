package ebxreader

import (
	"github.com/pkg/errors"

	"github.com/shoe7ess/FrostyToolsuite/ebxasset"
	"github.com/shoe7ess/FrostyToolsuite/ebxdesc"
	"github.com/shoe7ess/FrostyToolsuite/ebxio"
	"github.com/shoe7ess/FrostyToolsuite/ebxresolve"
	"github.com/shoe7ess/FrostyToolsuite/ebxschema"
)

// fixedStringLen is the wire width of the fixed-size String field kind.
const fixedStringLen = 32

// readFieldValue decodes one value at the current stream position per
// field's kind. parentIdx is the table index of the type descriptor field
// belongs to, needed to resolve relative type refs (Struct field types).
func (rd *Reader) readFieldValue(field ebxdesc.FieldDescriptor, parentIdx int) (any, error) {
	switch field.Flags.Kind() {
	case ebxdesc.Boolean:
		v, err := rd.stream.ReadU8()
		return v != 0, err
	case ebxdesc.Int8:
		return rd.stream.ReadI8()
	case ebxdesc.UInt8:
		return rd.stream.ReadU8()
	case ebxdesc.Int16:
		return rd.stream.ReadI16()
	case ebxdesc.UInt16:
		return rd.stream.ReadU16()
	case ebxdesc.Int32:
		return rd.stream.ReadI32()
	case ebxdesc.UInt32:
		return rd.stream.ReadU32()
	case ebxdesc.Int64:
		return rd.stream.ReadI64()
	case ebxdesc.UInt64:
		return rd.stream.ReadU64()
	case ebxdesc.Float32:
		return rd.stream.ReadF32()
	case ebxdesc.Float64:
		return rd.stream.ReadF64()
	case ebxdesc.Enum:
		return rd.stream.ReadI32()
	case ebxdesc.Guid:
		return rd.stream.ReadGuid()
	case ebxdesc.Sha1:
		bs, err := rd.stream.ReadBytes(20)
		if err != nil {
			return nil, err
		}
		var sha ebxasset.Sha1
		copy(sha[:], bs)
		return sha, nil

	case ebxdesc.String:
		return rd.stream.ReadFixedString(fixedStringLen)

	case ebxdesc.CString:
		off, err := rd.stream.ReadU32()
		if err != nil {
			return nil, err
		}
		return rd.stringAt(off)

	case ebxdesc.ResourceRef:
		return rd.stream.ReadU64()

	case ebxdesc.FileRef:
		off, err := rd.stream.ReadU32()
		if err != nil {
			return nil, err
		}
		if _, err := rd.stream.ReadU32(); err != nil { // padding
			return nil, err
		}
		return rd.stringAt(off)

	case ebxdesc.TypeRef, ebxdesc.Delegate:
		off, err := rd.stream.ReadU32()
		if err != nil {
			return nil, err
		}
		if _, err := rd.stream.ReadU32(); err != nil { // padding
			return nil, err
		}
		s, err := rd.stringAt(off)
		if err != nil {
			return nil, err
		}
		if g, ok := ebxio.ParseGuid(s); ok {
			return ebxasset.TypeRefValue{Guid: g, HasGuid: true}, nil
		}
		return ebxasset.TypeRefValue{Name: s}, nil

	case ebxdesc.BoxedValueRef:
		idx, err := rd.stream.ReadI32()
		if err != nil {
			return nil, err
		}
		if _, err := rd.stream.ReadBytes(12); err != nil { // padding
			return nil, err
		}
		if idx < 0 {
			return nil, nil
		}
		saved, err := rd.stream.Tell()
		if err != nil {
			return nil, err
		}
		prim, err := rd.decodeBoxedValueAt(idx)
		if err != nil {
			return nil, err
		}
		if err := rd.stream.Seek(saved); err != nil {
			return nil, err
		}
		return prim, nil

	case ebxdesc.Struct:
		return rd.readStruct(field, parentIdx)

	case ebxdesc.Class:
		return rd.readPointerRef()

	case ebxdesc.DbObject:
		return nil, errors.Wrap(ebxasset.ErrUnsupported, "DbObject field kind")

	default:
		return nil, errors.Wrapf(ebxasset.ErrUnsupported, "field kind %s", field.Flags.Kind())
	}
}

// stringAt resolves an offset into the string pool without disturbing the
// caller's stream position. 0xFFFFFFFF denotes an absent/empty string.
func (rd *Reader) stringAt(offset uint32) (string, error) {
	if offset == 0xFFFFFFFF {
		return "", nil
	}
	saved, err := rd.stream.Tell()
	if err != nil {
		return "", err
	}
	if err := rd.stream.Seek(int64(rd.header.StringsOffset) + int64(offset)); err != nil {
		return "", err
	}
	s, err := rd.stream.ReadCString()
	if err != nil {
		return "", errors.Wrap(ebxasset.ErrCorruptString, err.Error())
	}
	if err := rd.stream.Seek(saved); err != nil {
		return "", err
	}
	return s, nil
}

// readStruct resolves the nested type (plain or relative to parentIdx),
// constructs a blank instance, and decodes its body at the current position.
func (rd *Reader) readStruct(field ebxdesc.FieldDescriptor, parentIdx int) (any, error) {
	innerType, err := rd.resolver.ResolveTypeRelative(parentIdx, field)
	if err != nil {
		return nil, errors.Wrap(ebxasset.ErrBadLayout, err.Error())
	}
	if err := rd.stream.Pad(int(ebxresolve.Alignment(innerType))); err != nil {
		return nil, err
	}

	info, ok := rd.oracle.TypeInfo(innerType.NameHash)
	if !ok {
		return nil, errors.Wrapf(ebxasset.ErrSchemaMismatch, "struct type hash %d", innerType.NameHash)
	}
	inst, err := rd.oracle.NewInstance(innerType.NameHash)
	if err != nil {
		return nil, errors.Wrapf(ebxasset.ErrSchemaMismatch, "struct type hash %d: %v", innerType.NameHash, err)
	}

	pos, err := rd.stream.Tell()
	if err != nil {
		return nil, err
	}
	if err := rd.readClassBody(innerType, info, inst, pos); err != nil {
		return nil, err
	}
	return inst, nil
}

// readPointerRef decodes a Class-kind field's on-wire pointer encoding: 0 is
// null, the top bit set is an external import index, otherwise a 1-based
// internal instance index (incrementing that instance's ref count).
func (rd *Reader) readPointerRef() (ebxasset.PointerRef, error) {
	v, err := rd.stream.ReadU32()
	if err != nil {
		return ebxasset.PointerRef{}, err
	}
	switch {
	case v == 0:
		return ebxasset.PointerRef{Kind: ebxasset.PointerNull}, nil
	case v&0x80000000 != 0:
		return ebxasset.PointerRef{Kind: ebxasset.PointerExternal, ImportIndex: int(v &^ 0x80000000)}, nil
	default:
		idx := int(v) - 1
		if idx < 0 || idx >= len(rd.refCounts) {
			return ebxasset.PointerRef{}, errors.Wrapf(ebxasset.ErrBadLayout, "internal pointer index %d out of range", idx)
		}
		rd.refCounts[idx]++
		return ebxasset.PointerRef{Kind: ebxasset.PointerInternal, InternalIndex: idx}, nil
	}
}

// decodeBoxedValueAt seeks to a boxed-value row's offset within the
// boxed-value region and decodes one value of its declared kind, recursing
// into array decode when that kind is Array. The decoded value is tagged
// with row.Type via ebxschema.Primitive since a boxed field carries no
// static declared kind of its own — unlike a regular field or array
// element, whose kind the schema declares up front. The caller is
// responsible for restoring the stream position afterward.
func (rd *Reader) decodeBoxedValueAt(idx int32) (ebxschema.Primitive, error) {
	if int(idx) >= len(rd.boxedValueRows) {
		return ebxschema.Primitive{}, errors.Wrapf(ebxasset.ErrBadLayout, "boxed value index %d out of range (%d rows)", idx, len(rd.boxedValueRows))
	}
	row := rd.boxedValueRows[idx]
	if err := rd.stream.Seek(int64(rd.header.BoxedValuesOffset) + int64(row.Offset)); err != nil {
		return ebxschema.Primitive{}, err
	}

	if row.Type == ebxdesc.Array {
		elems, err := rd.readArrayField()
		if err != nil {
			return ebxschema.Primitive{}, err
		}
		return ebxschema.FromActualType(ebxdesc.Array, elems), nil
	}

	t, err := rd.resolver.ResolveType(row.TypeDescriptorRef)
	if err != nil {
		return ebxschema.Primitive{}, errors.Wrap(ebxasset.ErrBadLayout, err.Error())
	}
	synthetic := ebxdesc.FieldDescriptor{Flags: ebxdesc.FieldFlags(row.Type), TypeDescriptorRef: row.TypeDescriptorRef}
	val, err := rd.readFieldValue(synthetic, rd.resolver.IndexOf(t))
	if err != nil {
		return ebxschema.Primitive{}, err
	}
	return ebxschema.FromActualType(row.Type, val), nil
}
