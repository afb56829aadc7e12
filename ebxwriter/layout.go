package ebxwriter

import (
	"github.com/pkg/errors"

	"github.com/shoe7ess/FrostyToolsuite/ds"
	"github.com/shoe7ess/FrostyToolsuite/ebxasset"
	"github.com/shoe7ess/FrostyToolsuite/ebxdesc"
	"github.com/shoe7ess/FrostyToolsuite/ebxschema"
)

// instanceHeaderSize is the implicit per-object header every type's own
// field layout reserves before its first real field, matching
// ebxreader.readInstance's startOffset = pos - 8: for a 4-aligned top-level
// instance this header is never physically written (startOffset sits 8
// bytes before the first byte actually on disk), while for a non-4-aligned
// one and for any nested struct value it is genuinely present as zeroed
// space, since both sides compute field positions as startOffset+DataOffset
// off of the same anchor either way.
const instanceHeaderSize = 8

// descriptorBuilder synthesizes the type-descriptor and field-descriptor
// tables for every type the pre-pass found reachable, plus one synthetic
// type per distinct array shape. It computes each type's field layout
// (dataOffset, size) itself since the schema oracle declares alignment but
// not a concrete byte layout.
type descriptorBuilder struct {
	oracle ebxschema.Oracle

	typeIndex  map[uint32]int
	shapeIndex map[arrayShape]int

	types  []ebxdesc.TypeDescriptor
	fields []ebxdesc.FieldDescriptor

	size  map[uint32]uint32
	align map[uint32]uint8

	names     []string
	seenNames map[string]bool

	computing map[uint32]bool
}

func newDescriptorBuilder(oracle ebxschema.Oracle) *descriptorBuilder {
	return &descriptorBuilder{
		oracle:     oracle,
		typeIndex:  map[uint32]int{},
		shapeIndex: map[arrayShape]int{},
		size:       map[uint32]uint32{},
		align:      map[uint32]uint8{},
		seenNames:  map[string]bool{},
		computing:  map[uint32]bool{},
	}
}

func roundUp(v uint32, align uint8) uint32 {
	if align <= 1 {
		return v
	}
	return uint32(ds.NearestDivisibleByM(int(v), int(align)))
}

func (b *descriptorBuilder) addName(n string) {
	if n == "" || b.seenNames[n] {
		return
	}
	b.seenNames[n] = true
	b.names = append(b.names, n)
}

// sizeAndAlign returns a concrete type's wire footprint, computing it
// on-demand (and memoizing) from its own declared alignment and its
// properties' field sizes, recursing into base/struct dependencies as
// needed. Types reachable only as a struct field's declared type but never
// actually instantiated by the pre-pass are registered lazily here.
func (b *descriptorBuilder) sizeAndAlign(hash uint32) (uint32, uint8, error) {
	if sz, ok := b.size[hash]; ok {
		return sz, b.align[hash], nil
	}
	if b.computing[hash] {
		return 0, 0, errors.Errorf("ebxwriter: cyclic struct/base layout at type hash %d", hash)
	}
	b.computing[hash] = true
	defer delete(b.computing, hash)

	info, ok := b.oracle.TypeInfo(hash)
	if !ok {
		return 0, 0, errors.Wrapf(ebxasset.ErrSchemaMismatch, "type hash %d", hash)
	}
	b.ensureType(hash)

	offset := uint32(instanceHeaderSize)
	maxAlign := uint8(1)
	if info.BaseNameHash != 0 {
		baseSize, baseAlign, err := b.sizeAndAlign(info.BaseNameHash)
		if err != nil {
			return 0, 0, err
		}
		offset = baseSize
		maxAlign = baseAlign
	}
	for _, p := range info.Properties {
		if p.Transient {
			continue
		}
		sz, al, err := b.fieldSizeAlign(p)
		if err != nil {
			return 0, 0, err
		}
		offset = roundUp(offset, al)
		offset += sz
		if al > maxAlign {
			maxAlign = al
		}
	}

	align := info.Alignment
	if align == 0 {
		align = maxAlign
	}
	size := roundUp(offset, align)
	b.size[hash] = size
	b.align[hash] = align
	return size, align, nil
}

func (b *descriptorBuilder) fieldSizeAlign(p ebxschema.PropertyDescriptor) (uint32, uint8, error) {
	switch p.Kind {
	case ebxdesc.Boolean, ebxdesc.Int8, ebxdesc.UInt8:
		return 1, 1, nil
	case ebxdesc.Int16, ebxdesc.UInt16:
		return 2, 2, nil
	case ebxdesc.Int32, ebxdesc.UInt32, ebxdesc.Float32, ebxdesc.Enum, ebxdesc.Array, ebxdesc.Class, ebxdesc.CString:
		return 4, 4, nil
	case ebxdesc.Int64, ebxdesc.UInt64, ebxdesc.Float64, ebxdesc.ResourceRef:
		return 8, 8, nil
	case ebxdesc.FileRef, ebxdesc.TypeRef, ebxdesc.Delegate:
		return 8, 4, nil
	case ebxdesc.Guid:
		return 16, 4, nil
	case ebxdesc.Sha1:
		return 20, 4, nil
	case ebxdesc.String:
		return 32, 1, nil
	case ebxdesc.BoxedValueRef:
		return 16, 4, nil
	case ebxdesc.Struct:
		return b.sizeAndAlign(p.ElementTypeHash)
	default:
		return 4, 4, nil
	}
}

// ensureType reserves a table slot for hash if the pre-pass didn't already.
func (b *descriptorBuilder) ensureType(hash uint32) int {
	if idx, ok := b.typeIndex[hash]; ok {
		return idx
	}
	idx := len(b.types)
	b.typeIndex[hash] = idx
	b.types = append(b.types, ebxdesc.TypeDescriptor{})
	return idx
}

// build synthesizes every concrete type's descriptor and field run, then
// appends one synthetic array-shape type per distinct shape the pre-pass
// found, collecting every type and field name into b.names for the
// type-names region.
func (b *descriptorBuilder) build(pre *prepassResult) error {
	for _, hash := range pre.types {
		b.ensureType(hash)
	}

	for _, hash := range pre.types {
		if err := b.buildConcreteType(hash); err != nil {
			return err
		}
	}

	for _, shape := range pre.arrayShapes {
		b.buildArrayShapeType(shape)
	}

	return nil
}

func (b *descriptorBuilder) buildConcreteType(hash uint32) error {
	info, ok := b.oracle.TypeInfo(hash)
	if !ok {
		return errors.Wrapf(ebxasset.ErrSchemaMismatch, "type hash %d", hash)
	}
	size, align, err := b.sizeAndAlign(hash)
	if err != nil {
		return err
	}
	b.addName(info.Name)

	fieldIndex := len(b.fields)
	offset := uint32(instanceHeaderSize)

	if info.BaseNameHash != 0 {
		baseIdx, ok := b.typeIndex[info.BaseNameHash]
		if !ok {
			return errors.Errorf("ebxwriter: base type hash %d not registered", info.BaseNameHash)
		}
		baseSize, _, err := b.sizeAndAlign(info.BaseNameHash)
		if err != nil {
			return err
		}
		b.fields = append(b.fields, ebxdesc.FieldDescriptor{
			Flags:             ebxdesc.FieldFlags(ebxdesc.Inherited),
			TypeDescriptorRef: uint16(baseIdx),
			DataOffset:        0,
		})
		offset = baseSize
	}

	for _, p := range info.Properties {
		if p.Transient {
			continue
		}
		sz, al, err := b.fieldSizeAlign(p)
		if err != nil {
			return err
		}
		offset = roundUp(offset, al)

		var typeRef uint16
		if (p.Kind == ebxdesc.Struct || p.Kind == ebxdesc.Class) && p.ElementTypeHash != 0 {
			if idx, ok := b.typeIndex[p.ElementTypeHash]; ok {
				typeRef = uint16(idx)
			}
		}
		b.addName(p.Name)
		b.fields = append(b.fields, ebxdesc.FieldDescriptor{
			NameHash:          p.NameHash,
			Name:              p.Name,
			Flags:             ebxdesc.FieldFlags(p.Kind),
			TypeDescriptorRef: typeRef,
			DataOffset:        offset,
		})
		offset += sz
	}

	idx := b.typeIndex[hash]
	b.types[idx] = ebxdesc.TypeDescriptor{
		NameHash:   info.NameHash,
		Name:       info.Name,
		FieldIndex: int32(fieldIndex),
		FieldCount: uint8(len(b.fields) - fieldIndex),
		Alignment:  align,
		Size:       uint16(size),
	}
	return nil
}

func (b *descriptorBuilder) buildArrayShapeType(shape arrayShape) {
	if _, ok := b.shapeIndex[shape]; ok {
		return
	}
	var elemTypeRef uint16
	if shape.elementTypeHash != 0 {
		if idx, ok := b.typeIndex[shape.elementTypeHash]; ok {
			elemTypeRef = uint16(idx)
		}
	}

	fieldIndex := len(b.fields)
	b.fields = append(b.fields, ebxdesc.FieldDescriptor{
		Flags:             ebxdesc.FieldFlags(shape.elementKind),
		TypeDescriptorRef: elemTypeRef,
	})

	b.addName(arrayTypeName)

	idx := len(b.types)
	b.shapeIndex[shape] = idx
	b.types = append(b.types, ebxdesc.TypeDescriptor{
		NameHash:   arrayTypeNameHash,
		Name:       arrayTypeName,
		FieldIndex: int32(fieldIndex),
		FieldCount: 1,
		Alignment:  4,
	})
}
