// Package ebxdesc holds the in-memory form of EBX's on-wire descriptor
// tables: type descriptors, field descriptors, array rows, boxed-value
// rows, and import references.
package ebxdesc

import "github.com/shoe7ess/FrostyToolsuite/ebxio"

// TypeEnum is the 5-bit kind carried in a field descriptor's flags.
type TypeEnum uint8

const (
	Void TypeEnum = iota
	DbObject
	Inherited
	String
	CString
	FileRef
	ResourceRef
	TypeRef
	Delegate
	BoxedValueRef
	Guid
	Sha1
	Struct
	Class
	Array
	Enum
	Boolean
	Int8
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Int64
	UInt64
	Float32
	Float64
)

func (k TypeEnum) String() string {
	names := [...]string{
		"Void", "DbObject", "Inherited", "String", "CString", "FileRef",
		"ResourceRef", "TypeRef", "Delegate", "BoxedValueRef", "Guid", "Sha1",
		"Struct", "Class", "Array", "Enum", "Boolean", "Int8", "UInt8",
		"Int16", "UInt16", "Int32", "UInt32", "Int64", "UInt64", "Float32",
		"Float64",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// FieldFlags packs the TypeEnum kind into its low 5 bits, plus orthogonal
// bits. FieldFlagRelativeTypeRef is the activation bit for the "resolve type
// ref relative to the parent type descriptor's index" path (spec open
// question, decided in DESIGN.md): when set, the field's typeDescriptorRef is
// a delta added to the parent type's own table index rather than a direct
// index.
type FieldFlags uint16

const (
	fieldKindMask             FieldFlags = 0x001F
	FieldFlagRelativeTypeRef  FieldFlags = 0x0080
)

func (f FieldFlags) Kind() TypeEnum {
	return TypeEnum(f & fieldKindMask)
}

func (f FieldFlags) IsRelativeTypeRef() bool {
	return f&FieldFlagRelativeTypeRef != 0
}

// TypeDescriptor is a row in the type-descriptor table.
type TypeDescriptor struct {
	NameHash    uint32
	FieldIndex  int32
	FieldCount  uint8
	Alignment   uint8
	Flags       uint16
	Size        uint16
	SecondSize  uint16
	Name        string
}

// FieldDescriptor is a row in the field-descriptor table.
type FieldDescriptor struct {
	NameHash          uint32
	Flags             FieldFlags
	TypeDescriptorRef uint16
	DataOffset        uint32
	SecondOffset      uint32
	Name              string
}

// ArrayRow is a row in the array table; an array-valued field on the wire is
// an i32 index into this table.
type ArrayRow struct {
	Offset            uint32
	Count             uint32
	TypeDescriptorRef int32
}

// BoxedValueRow is a row in the boxed-value table.
type BoxedValueRow struct {
	Offset            uint32
	TypeDescriptorRef uint16
	Type              TypeEnum
}

// ImportRef uniquely identifies an object in another asset.
type ImportRef struct {
	FileGuid  ebxio.Guid
	ClassGuid ebxio.Guid
}

// InstanceRow is a row in the instance table: a type ref repeated Count
// times (repetition encodes runs of same-typed instances compactly).
type InstanceRow struct {
	TypeRef uint16
	Count   uint16
}
