// Package ebxschema is the seam the core codec treats as an opaque oracle:
// resolving a type by its name hash, constructing a blank instance for a
// type hash, and enumerating a type's declared properties. The real schema
// library lives outside this module; this package only defines the contract
// plus a minimal in-memory reference implementation used by tests and the
// demonstration CLI.
package ebxschema

import "github.com/shoe7ess/FrostyToolsuite/ebxdesc"

// Instance is a schema-typed object. The codec never inspects an instance's
// shape directly — all field access goes through the PropertyDescriptor
// closures bound at schema-load time, per the precomputed-dispatch design
// (no runtime reflection).
type Instance interface {
	TypeNameHash() uint32
}

// PropertyDescriptor is one declared property of a schema type: its name
// hash, declared wire kind, and a precomputed (not reflected) binding for
// reading/writing/appending values on an Instance.
type PropertyDescriptor struct {
	NameHash uint32
	Name     string

	// Kind is the property's declared TypeEnum. For Array properties this is
	// ebxdesc.Array and ElementKind carries the element's own kind.
	Kind        ebxdesc.TypeEnum
	ElementKind ebxdesc.TypeEnum

	// ElementTypeHash names the nested schema type for Struct/Class/boxed
	// properties and for Struct/Class array elements. Zero for primitives.
	ElementTypeHash uint32

	// ArrayHash is the stable type-name hash of the schema's ordered
	// collection type. The writer does not read it: every array type
	// descriptor it synthesizes carries the name hash of "Array".
	ArrayHash uint32

	Transient bool

	// Wrap lifts a raw decoded value into the primitive-wrapper's concrete
	// type, if this property implements that capability; nil otherwise.
	Wrap func(raw any) any
	// Unwrap is Wrap's inverse, used by the writer pre-pass/emit to recover
	// the concrete wire value from a wrapped property value.
	Unwrap func(wrapped any) any

	Get    func(Instance) (any, bool)
	Set    func(Instance, any) error
	Append func(Instance, any) error
}

// TypeInfo is a schema type's declaration: its name, its base type (if any,
// for the Inherited-field splice), and its declared properties in
// declaration order.
type TypeInfo struct {
	NameHash     uint32
	Name         string
	BaseNameHash uint32
	Alignment    uint8
	Properties   []PropertyDescriptor
}

func (t TypeInfo) Property(nameHash uint32) (PropertyDescriptor, bool) {
	for _, p := range t.Properties {
		if p.NameHash == nameHash {
			return p, true
		}
	}
	return PropertyDescriptor{}, false
}

// Oracle is the schema library's contract as consumed by the reader and
// writer: resolve a type by name hash, and construct a blank instance for a
// type hash with its properties pre-initialized (ordered collections as
// empty []any slices).
type Oracle interface {
	TypeInfo(nameHash uint32) (TypeInfo, bool)
	NewInstance(nameHash uint32) (Instance, error)
}

// Primitive is the tagged-variant form of the IPrimitive wrapper seam: a
// concrete wire-typed value plus the kind it was decoded as. FromActualType
// lifts a raw decoded value into one; ActualType recovers the raw value.
type Primitive struct {
	Kind  ebxdesc.TypeEnum
	Value any
}

func FromActualType(kind ebxdesc.TypeEnum, v any) Primitive {
	return Primitive{Kind: kind, Value: v}
}

func (p Primitive) ActualType() any {
	return p.Value
}
