package ebxwriter

import (
	"github.com/shoe7ess/FrostyToolsuite/ebxasset"
	"github.com/shoe7ess/FrostyToolsuite/ebxdesc"
	"github.com/shoe7ess/FrostyToolsuite/ebxhash"
	"github.com/shoe7ess/FrostyToolsuite/ebxio"
	"github.com/shoe7ess/FrostyToolsuite/ebxschema"
)

// dataContainerHash is the canonical element-type hash every pointer-element
// array normalizes to, via canonicalElementHash: arrays of
// pointers to different concrete classes all share one synthesized array
// type descriptor rather than one per pointee type.
var dataContainerHash = ebxhash.Hash32("DataContainer")

// arrayTypeName and arrayTypeNameHash are the stable schema name and name
// hash of the ordered-collection type itself, shared by every synthesized
// array type descriptor regardless of element type.
const arrayTypeName = "Array"

var arrayTypeNameHash = ebxhash.Hash32(arrayTypeName)

// canonicalElementHash normalizes a Class-kind array element's declared
// pointee type to dataContainerHash; every other kind keeps its own hash.
func canonicalElementHash(kind ebxdesc.TypeEnum, hash uint32) uint32 {
	if kind == ebxdesc.Class {
		return dataContainerHash
	}
	return hash
}

// inferTypeHash recovers a struct element's concrete type hash from its
// decoded runtime value, for the same untagged-boxed-array case inferKind
// handles.
func inferTypeHash(v any) uint32 {
	if inst, ok := v.(ebxschema.Instance); ok {
		return inst.TypeNameHash()
	}
	return 0
}

// inferKind recovers a TypeEnum from a decoded Go value's runtime type. It
// exists for the one case the schema can't declare a kind up front: the
// payload of a BoxedValueRef, and the elements of a boxed array, both of
// which ebxschema.Primitive otherwise tags explicitly. Int32/Enum,
// UInt64/ResourceRef, and the string-valued kinds collide on their Go
// representation here — real schema
// metadata, not runtime reflection, is the only way to disambiguate those,
// so this is a best-effort fallback for untagged values only.
func inferKind(v any) ebxdesc.TypeEnum {
	switch v.(type) {
	case bool:
		return ebxdesc.Boolean
	case int8:
		return ebxdesc.Int8
	case uint8:
		return ebxdesc.UInt8
	case int16:
		return ebxdesc.Int16
	case uint16:
		return ebxdesc.UInt16
	case int32:
		return ebxdesc.Int32
	case uint32:
		return ebxdesc.UInt32
	case int64:
		return ebxdesc.Int64
	case uint64:
		return ebxdesc.UInt64
	case float32:
		return ebxdesc.Float32
	case float64:
		return ebxdesc.Float64
	case ebxio.Guid:
		return ebxdesc.Guid
	case ebxasset.Sha1:
		return ebxdesc.Sha1
	case string:
		return ebxdesc.CString
	case ebxasset.TypeRefValue:
		return ebxdesc.TypeRef
	case ebxasset.PointerRef:
		return ebxdesc.Class
	case ebxschema.Instance:
		return ebxdesc.Struct
	case []any:
		return ebxdesc.Array
	default:
		return ebxdesc.Void
	}
}
