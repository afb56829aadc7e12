// Package ebxresolve maps on-wire type refs (plain and relative-to-parent)
// to descriptor-table rows, and resolves absolute field indices into the
// shared field table.
package ebxresolve

import (
	"github.com/pkg/errors"

	"github.com/shoe7ess/FrostyToolsuite/ds"
	"github.com/shoe7ess/FrostyToolsuite/ebxdesc"
)

// Resolver owns immutable slices of the type-descriptor and field-descriptor
// tables decoded from a single asset, and indexes into them by ref.
type Resolver struct {
	types  []ebxdesc.TypeDescriptor
	fields []ebxdesc.FieldDescriptor
}

func New(types []ebxdesc.TypeDescriptor, fields []ebxdesc.FieldDescriptor) *Resolver {
	return &Resolver{types: types, fields: fields}
}

// Types returns a defensive copy of the type-descriptor table, so callers
// cannot corrupt the resolver's own view by mutating what they get back.
func (r *Resolver) Types() []ebxdesc.TypeDescriptor {
	return ds.ShallowCopy(r.types)
}

// ResolveType indexes the type-descriptor table directly.
func (r *Resolver) ResolveType(ref uint16) (ebxdesc.TypeDescriptor, error) {
	if int(ref) >= len(r.types) {
		return ebxdesc.TypeDescriptor{}, errors.Errorf(
			"ebxresolve: type ref %d out of range (table has %d entries)", ref, len(r.types),
		)
	}
	return r.types[ref], nil
}

// ResolveTypeRelative resolves ref as either a direct table index, or, when
// field.Flags.IsRelativeTypeRef() is set, a delta added to parent's own
// position in the type-descriptor table (see DESIGN.md for the rationale).
func (r *Resolver) ResolveTypeRelative(parentIndex int, field ebxdesc.FieldDescriptor) (ebxdesc.TypeDescriptor, error) {
	if !field.Flags.IsRelativeTypeRef() {
		return r.ResolveType(field.TypeDescriptorRef)
	}
	idx := parentIndex + int(field.TypeDescriptorRef)
	if idx < 0 || idx >= len(r.types) {
		return ebxdesc.TypeDescriptor{}, errors.Errorf(
			"ebxresolve: relative type ref %d from parent %d out of range (table has %d entries)",
			field.TypeDescriptorRef, parentIndex, len(r.types),
		)
	}
	return r.types[idx], nil
}

// IndexOf returns the table index of t by identity of its fields, used by
// callers that only have a TypeDescriptor value (not its index) but need to
// resolve relative refs against it.
func (r *Resolver) IndexOf(t ebxdesc.TypeDescriptor) int {
	for i := range r.types {
		if r.types[i] == t {
			return i
		}
	}
	return -1
}

// ResolveField returns the field descriptor at an absolute index into the
// shared field table.
func (r *Resolver) ResolveField(absoluteIndex uint32) (ebxdesc.FieldDescriptor, error) {
	if int(absoluteIndex) >= len(r.fields) {
		return ebxdesc.FieldDescriptor{}, errors.Errorf(
			"ebxresolve: field index %d out of range (table has %d entries)", absoluteIndex, len(r.fields),
		)
	}
	return r.fields[absoluteIndex], nil
}

// Alignment returns max(1, t.Alignment), the byte alignment used to pad
// before an instance or struct body. An undeclared (zero) alignment pads to
// nothing, not to 4 — that substitution only applies to HasObjectHeader.
func Alignment(t ebxdesc.TypeDescriptor) uint8 {
	if t.Alignment == 0 {
		return 1
	}
	return t.Alignment
}

// HasObjectHeader reports whether an instance of t carries the extra 8-byte
// object-header slot before its field data. Types with alignment 0 are
// treated as 4-aligned for this check specifically, so an undeclared
// alignment never triggers the extra header even though Alignment(t) pads
// it to nothing.
func HasObjectHeader(t ebxdesc.TypeDescriptor) bool {
	align := t.Alignment
	if align == 0 {
		align = 4
	}
	return align != 4
}

// ValidateTypeDescriptor checks that fieldIndex+fieldCount stays within the
// shared field table.
func (r *Resolver) ValidateTypeDescriptor(t ebxdesc.TypeDescriptor) error {
	end := int(t.FieldIndex) + int(t.FieldCount)
	if t.FieldIndex < 0 || end > len(r.fields) {
		return errors.Errorf(
			"ebxresolve: type %q fieldIndex=%d fieldCount=%d overruns field table of %d entries",
			t.Name, t.FieldIndex, t.FieldCount, len(r.fields),
		)
	}
	return nil
}
