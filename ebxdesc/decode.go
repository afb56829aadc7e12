package ebxdesc

import (
	"github.com/pkg/errors"

	"github.com/shoe7ess/FrostyToolsuite/ebxio"
)

func DecodeImport(r *ebxio.Reader) (ImportRef, error) {
	fileGuid, err := r.ReadGuid()
	if err != nil {
		return ImportRef{}, errors.Wrap(err, "ebxdesc.DecodeImport: fileGuid")
	}
	classGuid, err := r.ReadGuid()
	if err != nil {
		return ImportRef{}, errors.Wrap(err, "ebxdesc.DecodeImport: classGuid")
	}
	return ImportRef{FileGuid: fileGuid, ClassGuid: classGuid}, nil
}

func DecodeImports(r *ebxio.Reader, count uint32) ([]ImportRef, error) {
	imports := make([]ImportRef, 0, count)
	for i := uint32(0); i < count; i++ {
		imp, err := DecodeImport(r)
		if err != nil {
			return nil, errors.Wrapf(err, "ebxdesc.DecodeImports: entry %d", i)
		}
		imports = append(imports, imp)
	}
	return imports, nil
}

func DecodeFieldDescriptor(r *ebxio.Reader) (FieldDescriptor, error) {
	nameHash, err := r.ReadU32()
	if err != nil {
		return FieldDescriptor{}, errors.Wrap(err, "ebxdesc.DecodeFieldDescriptor: nameHash")
	}
	flags, err := r.ReadU16()
	if err != nil {
		return FieldDescriptor{}, errors.Wrap(err, "ebxdesc.DecodeFieldDescriptor: flags")
	}
	typeRef, err := r.ReadU16()
	if err != nil {
		return FieldDescriptor{}, errors.Wrap(err, "ebxdesc.DecodeFieldDescriptor: typeRef")
	}
	dataOffset, err := r.ReadU32()
	if err != nil {
		return FieldDescriptor{}, errors.Wrap(err, "ebxdesc.DecodeFieldDescriptor: dataOffset")
	}
	secondOffset, err := r.ReadU32()
	if err != nil {
		return FieldDescriptor{}, errors.Wrap(err, "ebxdesc.DecodeFieldDescriptor: secondOffset")
	}
	return FieldDescriptor{
		NameHash:          nameHash,
		Flags:             FieldFlags(flags),
		TypeDescriptorRef: typeRef,
		DataOffset:        dataOffset,
		SecondOffset:      secondOffset,
	}, nil
}

func DecodeFieldDescriptors(r *ebxio.Reader, count uint16) ([]FieldDescriptor, error) {
	fields := make([]FieldDescriptor, 0, count)
	for i := uint16(0); i < count; i++ {
		f, err := DecodeFieldDescriptor(r)
		if err != nil {
			return nil, errors.Wrapf(err, "ebxdesc.DecodeFieldDescriptors: entry %d", i)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func DecodeTypeDescriptor(r *ebxio.Reader) (TypeDescriptor, error) {
	nameHash, err := r.ReadU32()
	if err != nil {
		return TypeDescriptor{}, errors.Wrap(err, "ebxdesc.DecodeTypeDescriptor: nameHash")
	}
	fieldIndex, err := r.ReadI32()
	if err != nil {
		return TypeDescriptor{}, errors.Wrap(err, "ebxdesc.DecodeTypeDescriptor: fieldIndex")
	}
	fieldCount, err := r.ReadU8()
	if err != nil {
		return TypeDescriptor{}, errors.Wrap(err, "ebxdesc.DecodeTypeDescriptor: fieldCount")
	}
	alignment, err := r.ReadU8()
	if err != nil {
		return TypeDescriptor{}, errors.Wrap(err, "ebxdesc.DecodeTypeDescriptor: alignment")
	}
	flags, err := r.ReadU16()
	if err != nil {
		return TypeDescriptor{}, errors.Wrap(err, "ebxdesc.DecodeTypeDescriptor: flags")
	}
	size, err := r.ReadU16()
	if err != nil {
		return TypeDescriptor{}, errors.Wrap(err, "ebxdesc.DecodeTypeDescriptor: size")
	}
	secondSize, err := r.ReadU16()
	if err != nil {
		return TypeDescriptor{}, errors.Wrap(err, "ebxdesc.DecodeTypeDescriptor: secondSize")
	}
	return TypeDescriptor{
		NameHash:   nameHash,
		FieldIndex: fieldIndex,
		FieldCount: fieldCount,
		Alignment:  alignment,
		Flags:      flags,
		Size:       size,
		SecondSize: secondSize,
	}, nil
}

func DecodeTypeDescriptors(r *ebxio.Reader, count uint16) ([]TypeDescriptor, error) {
	types := make([]TypeDescriptor, 0, count)
	for i := uint16(0); i < count; i++ {
		t, err := DecodeTypeDescriptor(r)
		if err != nil {
			return nil, errors.Wrapf(err, "ebxdesc.DecodeTypeDescriptors: entry %d", i)
		}
		types = append(types, t)
	}
	return types, nil
}

func DecodeInstanceRow(r *ebxio.Reader) (InstanceRow, error) {
	typeRef, err := r.ReadU16()
	if err != nil {
		return InstanceRow{}, errors.Wrap(err, "ebxdesc.DecodeInstanceRow: typeRef")
	}
	count, err := r.ReadU16()
	if err != nil {
		return InstanceRow{}, errors.Wrap(err, "ebxdesc.DecodeInstanceRow: count")
	}
	return InstanceRow{TypeRef: typeRef, Count: count}, nil
}

func DecodeInstanceRows(r *ebxio.Reader, count uint16) ([]InstanceRow, error) {
	rows := make([]InstanceRow, 0, count)
	for i := uint16(0); i < count; i++ {
		row, err := DecodeInstanceRow(r)
		if err != nil {
			return nil, errors.Wrapf(err, "ebxdesc.DecodeInstanceRows: entry %d", i)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func DecodeArrayRow(r *ebxio.Reader) (ArrayRow, error) {
	offset, err := r.ReadU32()
	if err != nil {
		return ArrayRow{}, errors.Wrap(err, "ebxdesc.DecodeArrayRow: offset")
	}
	count, err := r.ReadU32()
	if err != nil {
		return ArrayRow{}, errors.Wrap(err, "ebxdesc.DecodeArrayRow: count")
	}
	typeRef, err := r.ReadI32()
	if err != nil {
		return ArrayRow{}, errors.Wrap(err, "ebxdesc.DecodeArrayRow: typeRef")
	}
	return ArrayRow{Offset: offset, Count: count, TypeDescriptorRef: typeRef}, nil
}

func DecodeArrayRows(r *ebxio.Reader, count uint32) ([]ArrayRow, error) {
	rows := make([]ArrayRow, 0, count)
	for i := uint32(0); i < count; i++ {
		row, err := DecodeArrayRow(r)
		if err != nil {
			return nil, errors.Wrapf(err, "ebxdesc.DecodeArrayRows: entry %d", i)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func DecodeBoxedValueRow(r *ebxio.Reader) (BoxedValueRow, error) {
	offset, err := r.ReadU32()
	if err != nil {
		return BoxedValueRow{}, errors.Wrap(err, "ebxdesc.DecodeBoxedValueRow: offset")
	}
	typeRef, err := r.ReadU16()
	if err != nil {
		return BoxedValueRow{}, errors.Wrap(err, "ebxdesc.DecodeBoxedValueRow: typeRef")
	}
	kind, err := r.ReadU16()
	if err != nil {
		return BoxedValueRow{}, errors.Wrap(err, "ebxdesc.DecodeBoxedValueRow: type")
	}
	return BoxedValueRow{Offset: offset, TypeDescriptorRef: typeRef, Type: TypeEnum(kind)}, nil
}

func DecodeBoxedValueRows(r *ebxio.Reader, count uint32) ([]BoxedValueRow, error) {
	rows := make([]BoxedValueRow, 0, count)
	for i := uint32(0); i < count; i++ {
		row, err := DecodeBoxedValueRow(r)
		if err != nil {
			return nil, errors.Wrapf(err, "ebxdesc.DecodeBoxedValueRows: entry %d", i)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DecodeTypeNames reads the densely-packed NUL-terminated name region and
// indexes every name by its ebxhash.Hash32, spanning exactly length bytes.
func DecodeTypeNames(r *ebxio.Reader, length uint16, hash32 func(string) uint32) (map[uint32]string, error) {
	start, err := r.Tell()
	if err != nil {
		return nil, err
	}
	names := map[uint32]string{}
	for {
		pos, err := r.Tell()
		if err != nil {
			return nil, err
		}
		if pos-start >= int64(length) {
			break
		}
		name, err := r.ReadCString()
		if err != nil {
			return nil, errors.Wrap(err, "ebxdesc.DecodeTypeNames")
		}
		names[hash32(name)] = name
	}
	return names, nil
}
