package ebxwriter

import (
	"github.com/pkg/errors"

	"github.com/shoe7ess/FrostyToolsuite/ebxasset"
	"github.com/shoe7ess/FrostyToolsuite/ebxdesc"
	"github.com/shoe7ess/FrostyToolsuite/ebxio"
	"github.com/shoe7ess/FrostyToolsuite/ebxresolve"
	"github.com/shoe7ess/FrostyToolsuite/ebxschema"
)

const fixedStringLen = 32

// emitState carries everything the per-instance field emission needs:
// the descriptor tables just built, the schema oracle, the asset being
// written (for resolving pointer targets), and the three side buffers a
// field can append to as it's encountered.
type emitState struct {
	oracle ebxschema.Oracle
	desc   *descriptorBuilder
	pre    *prepassResult
	asset  *ebxasset.Asset

	instances *ebxio.Writer
	arrays    *ebxio.Writer
	boxed     *ebxio.Writer
	strings   *stringInterner

	arrayRows      []ebxdesc.ArrayRow
	boxedValueRows []ebxdesc.BoxedValueRow
}

func (e *emitState) fieldAt(absolute int32) ebxdesc.FieldDescriptor {
	return e.desc.fields[absolute]
}

// writeInstanceBody writes one top-level instance's field data at its
// already-reserved startOffset within the instance region, mirroring
// ebxreader.readClassBody in reverse.
func (e *emitState) writeInstanceBody(t ebxdesc.TypeDescriptor, info ebxschema.TypeInfo, obj ebxschema.Instance, startOffset int64) error {
	return e.writeClassBody(t, info, obj, startOffset)
}

func (e *emitState) writeClassBody(t ebxdesc.TypeDescriptor, info ebxschema.TypeInfo, obj ebxschema.Instance, startOffset int64) error {
	parentIdx := e.desc.typeIndex[t.NameHash]

	for j := uint8(0); j < t.FieldCount; j++ {
		field := e.fieldAt(t.FieldIndex + int32(j))
		e.instances.Seek(startOffset + int64(field.DataOffset))

		switch field.Flags.Kind() {
		case ebxdesc.Inherited:
			baseType := e.desc.types[field.TypeDescriptorRef]
			baseInfo, ok := e.oracle.TypeInfo(baseType.NameHash)
			if !ok {
				return errors.Wrapf(ebxasset.ErrSchemaMismatch, "base type hash %d", baseType.NameHash)
			}
			if err := e.writeClassBody(baseType, baseInfo, obj, startOffset); err != nil {
				return err
			}

		case ebxdesc.Array:
			prop, ok := info.Property(field.NameHash)
			if !ok {
				continue
			}
			val, ok := prop.Get(obj)
			if !ok {
				val = []any{}
			}
			elems, _ := val.([]any)
			if err := e.writeArrayField(prop.ElementKind, canonicalElementHash(prop.ElementKind, prop.ElementTypeHash), elems); err != nil {
				return err
			}

		default:
			prop, ok := info.Property(field.NameHash)
			if !ok {
				continue
			}
			val, ok := prop.Get(obj)
			if !ok {
				continue
			}
			if prop.Unwrap != nil {
				val = prop.Unwrap(val)
			}
			if err := e.writeFieldValue(field, val, parentIdx); err != nil {
				return err
			}
		}
	}

	e.instances.Seek(startOffset + int64(t.Size))
	e.instances.Pad(int(ebxresolve.Alignment(t)))
	return nil
}

func (e *emitState) writeFieldValue(field ebxdesc.FieldDescriptor, val any, parentIdx int) error {
	switch field.Flags.Kind() {
	case ebxdesc.Boolean:
		b, _ := val.(bool)
		if b {
			e.instances.WriteU8(1)
		} else {
			e.instances.WriteU8(0)
		}
	case ebxdesc.Int8:
		v, _ := val.(int8)
		e.instances.WriteI8(v)
	case ebxdesc.UInt8:
		v, _ := val.(uint8)
		e.instances.WriteU8(v)
	case ebxdesc.Int16:
		v, _ := val.(int16)
		e.instances.WriteI16(v)
	case ebxdesc.UInt16:
		v, _ := val.(uint16)
		e.instances.WriteU16(v)
	case ebxdesc.Int32, ebxdesc.Enum:
		v, _ := val.(int32)
		e.instances.WriteI32(v)
	case ebxdesc.UInt32:
		v, _ := val.(uint32)
		e.instances.WriteU32(v)
	case ebxdesc.Int64:
		v, _ := val.(int64)
		e.instances.WriteI64(v)
	case ebxdesc.UInt64:
		v, _ := val.(uint64)
		e.instances.WriteU64(v)
	case ebxdesc.Float32:
		v, _ := val.(float32)
		e.instances.WriteF32(v)
	case ebxdesc.Float64:
		v, _ := val.(float64)
		e.instances.WriteF64(v)
	case ebxdesc.Guid:
		v, _ := val.(ebxio.Guid)
		e.instances.WriteGuid(v)
	case ebxdesc.Sha1:
		v, _ := val.(ebxasset.Sha1)
		e.instances.WriteBytes(v[:])
	case ebxdesc.String:
		s, _ := val.(string)
		e.instances.WriteFixedString(s, fixedStringLen)
	case ebxdesc.CString:
		s, _ := val.(string)
		e.instances.WriteU32(e.strings.Intern(s))
	case ebxdesc.ResourceRef:
		v, _ := val.(uint64)
		e.instances.WriteU64(v)
	case ebxdesc.FileRef:
		s, _ := val.(string)
		e.instances.WriteU32(e.strings.Intern(s))
		e.instances.WriteU32(0)
	case ebxdesc.TypeRef, ebxdesc.Delegate:
		ref, _ := val.(ebxasset.TypeRefValue)
		s := ref.Name
		if ref.HasGuid {
			s = ref.Guid.String()
		}
		e.instances.WriteU32(e.strings.Intern(s))
		e.instances.WriteU32(0)
	case ebxdesc.BoxedValueRef:
		prim, ok := val.(ebxschema.Primitive)
		if !ok || prim.Value == nil {
			e.instances.WriteI32(-1)
			e.instances.WriteBytes(make([]byte, 12))
			return nil
		}
		idx, err := e.writeBoxedValue(prim)
		if err != nil {
			return err
		}
		e.instances.WriteI32(idx)
		e.instances.WriteBytes(make([]byte, 12))
	case ebxdesc.Struct:
		inst, ok := val.(ebxschema.Instance)
		if !ok || inst == nil {
			return errors.Wrap(ebxasset.ErrBadLayout, "nil struct field value")
		}
		innerType, err := resolveTypeRelative(e.desc, parentIdx, field)
		if err != nil {
			return err
		}
		e.instances.Pad(int(ebxresolve.Alignment(innerType)))
		info, ok := e.oracle.TypeInfo(innerType.NameHash)
		if !ok {
			return errors.Wrapf(ebxasset.ErrSchemaMismatch, "struct type hash %d", innerType.NameHash)
		}
		pos := e.instances.Tell()
		if err := e.writeClassBody(innerType, info, inst, pos); err != nil {
			return err
		}
	case ebxdesc.Class:
		ref, _ := val.(ebxasset.PointerRef)
		v, err := e.encodePointer(ref)
		if err != nil {
			return err
		}
		e.instances.WriteU32(v)
	default:
		return errors.Wrapf(ebxasset.ErrUnsupported, "field kind %s", field.Flags.Kind())
	}
	return nil
}

// resolveTypeRelative mirrors ebxresolve.Resolver.ResolveTypeRelative against
// the writer's own type table; the writer always emits plain (non-relative)
// type refs, so this only ever takes the direct-index path, but shares the
// same contract so a future relative-ref emission mode would be a localized
// change.
func resolveTypeRelative(desc *descriptorBuilder, parentIdx int, field ebxdesc.FieldDescriptor) (ebxdesc.TypeDescriptor, error) {
	if field.Flags.IsRelativeTypeRef() {
		idx := parentIdx + int(field.TypeDescriptorRef)
		if idx < 0 || idx >= len(desc.types) {
			return ebxdesc.TypeDescriptor{}, errors.Errorf("ebxwriter: relative type ref %d from parent %d out of range", field.TypeDescriptorRef, parentIdx)
		}
		return desc.types[idx], nil
	}
	if int(field.TypeDescriptorRef) >= len(desc.types) {
		return ebxdesc.TypeDescriptor{}, errors.Errorf("ebxwriter: type ref %d out of range", field.TypeDescriptorRef)
	}
	return desc.types[field.TypeDescriptorRef], nil
}

// encodePointer mirrors ebxreader.readPointerRef in reverse: null is 0, an
// external ref sets the top bit over the import's dense index, an internal
// ref is its instance's 1-based position in the final emission order.
func (e *emitState) encodePointer(ref ebxasset.PointerRef) (uint32, error) {
	switch ref.Kind {
	case ebxasset.PointerNull:
		return 0, nil
	case ebxasset.PointerExternal:
		if ref.ImportIndex < 0 || ref.ImportIndex >= len(e.asset.Imports) {
			return 0, errors.Wrapf(ebxasset.ErrBadLayout, "import index %d out of range", ref.ImportIndex)
		}
		idx, ok := e.pre.importIdx[e.asset.Imports[ref.ImportIndex]]
		if !ok {
			return 0, errors.Errorf("ebxwriter: import at index %d was not collected", ref.ImportIndex)
		}
		return 0x80000000 | uint32(idx), nil
	case ebxasset.PointerInternal:
		if ref.InternalIndex < 0 || ref.InternalIndex >= len(e.asset.Objects) {
			return 0, errors.Wrapf(ebxasset.ErrBadLayout, "internal pointer index %d out of range", ref.InternalIndex)
		}
		idx, ok := e.pre.instanceIdx[e.asset.Objects[ref.InternalIndex]]
		if !ok {
			return 0, errors.Errorf("ebxwriter: internal pointer target was not collected")
		}
		return uint32(idx) + 1, nil
	default:
		return 0, nil
	}
}

// writeArrayField writes elems into the array side buffer, records an
// ArrayRow describing them, and writes the row's table index as the i32
// field value — the array-kind field's actual on-wire representation. An
// empty array still gets a row (count 0) rather than the "no row" -1
// sentinel, since the pre-pass already guarantees the field's shape exists
// in the type table regardless of whether this particular occurrence is
// empty.
func (e *emitState) writeArrayField(elementKind ebxdesc.TypeEnum, elementTypeHash uint32, elems []any) error {
	shapeTypeIdx, ok := e.desc.shapeIndex[arrayShape{elementKind: elementKind, elementTypeHash: elementTypeHash}]
	if !ok {
		return errors.Errorf("ebxwriter: array shape (kind %s, hash %d) was not registered by the pre-pass", elementKind, elementTypeHash)
	}
	elemField := e.fieldAt(e.desc.types[shapeTypeIdx].FieldIndex)

	offset := uint32(e.arrays.Tell())
	for _, el := range elems {
		if err := e.writeArrayElement(elemField, el, shapeTypeIdx); err != nil {
			return err
		}
	}

	rowIdx := len(e.arrayRows)
	e.arrayRows = append(e.arrayRows, ebxdesc.ArrayRow{
		Offset:            offset,
		Count:             uint32(len(elems)),
		TypeDescriptorRef: int32(shapeTypeIdx),
	})
	e.instances.WriteI32(int32(rowIdx))
	return nil
}

// writeArrayElement writes one array element using the instance writer's
// field-value dispatch, but targeting the array side buffer instead.
func (e *emitState) writeArrayElement(field ebxdesc.FieldDescriptor, val any, parentIdx int) error {
	saved := e.instances
	e.instances = e.arrays
	defer func() { e.instances = saved }()
	return e.writeFieldValue(field, val, parentIdx)
}

// writeBoxedValue writes one boxed value into the boxed-value side buffer
// and returns its row's table index, the boxed-value field's on-wire
// representation. The row's declared Type comes from prim.Kind, the tag
// ebxreader attached at decode time precisely so the writer could recover it
// here.
func (e *emitState) writeBoxedValue(prim ebxschema.Primitive) (int32, error) {
	offset := uint32(e.boxed.Tell())

	if prim.Kind == ebxdesc.Array {
		// A boxed array's wire content at its own offset is the same
		// four-byte array-table index an ordinary Array-kind field writes;
		// ebxreader.decodeBoxedValueAt recurses into readArrayField for
		// exactly this reason. The elements themselves go into the shared
		// array region, not inline here.
		elems, _ := prim.Value.([]any)
		var elementKind ebxdesc.TypeEnum
		var elementTypeHash uint32
		if len(elems) > 0 {
			elementKind = inferKind(elems[0])
			elementTypeHash = canonicalElementHash(elementKind, inferTypeHash(elems[0]))
		}
		saved := e.instances
		e.instances = e.boxed
		err := e.writeArrayField(elementKind, elementTypeHash, elems)
		e.instances = saved
		if err != nil {
			return 0, err
		}
		rowIdx := int32(len(e.boxedValueRows))
		e.boxedValueRows = append(e.boxedValueRows, ebxdesc.BoxedValueRow{Offset: offset, Type: ebxdesc.Array})
		return rowIdx, nil
	}

	typeRef := uint16(0)
	if hash := inferTypeHash(prim.Value); hash != 0 {
		if idx, ok := e.desc.typeIndex[hash]; ok {
			typeRef = uint16(idx)
		}
	}
	synthetic := ebxdesc.FieldDescriptor{Flags: ebxdesc.FieldFlags(prim.Kind), TypeDescriptorRef: typeRef}

	saved := e.instances
	e.instances = e.boxed
	err := e.writeFieldValue(synthetic, prim.Value, int(typeRef))
	e.instances = saved
	if err != nil {
		return 0, err
	}

	rowIdx := int32(len(e.boxedValueRows))
	e.boxedValueRows = append(e.boxedValueRows, ebxdesc.BoxedValueRow{Offset: offset, TypeDescriptorRef: typeRef, Type: prim.Kind})
	return rowIdx, nil
}
