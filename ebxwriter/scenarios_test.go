package ebxwriter

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoe7ess/FrostyToolsuite/ebxasset"
	"github.com/shoe7ess/FrostyToolsuite/ebxdesc"
	"github.com/shoe7ess/FrostyToolsuite/ebxhash"
	"github.com/shoe7ess/FrostyToolsuite/ebxheader"
	"github.com/shoe7ess/FrostyToolsuite/ebxio"
	"github.com/shoe7ess/FrostyToolsuite/ebxreader"
	"github.com/shoe7ess/FrostyToolsuite/ebxschema"
)

// decodedTables is the subset of the descriptor-table region a test needs to
// inspect directly — things ebxasset.Asset doesn't surface, like a field's
// on-wire DataOffset or a type's computed Size.
type decodedTables struct {
	header         *ebxheader.Header
	types          []ebxdesc.TypeDescriptor
	fields         []ebxdesc.FieldDescriptor
	arrayRows      []ebxdesc.ArrayRow
	boxedValueRows []ebxdesc.BoxedValueRow
}

func decodeTables(t *testing.T, raw []byte) decodedTables {
	t.Helper()
	r := ebxio.NewReaderBytes(raw)
	header, err := ebxheader.Decode(r)
	require.NoError(t, err)
	_, err = ebxdesc.DecodeImports(r, header.ImportCount)
	require.NoError(t, err)
	_, err = ebxdesc.DecodeTypeNames(r, header.TypeNamesLen, ebxhash.Hash32)
	require.NoError(t, err)
	fields, err := ebxdesc.DecodeFieldDescriptors(r, header.FieldDescriptorCount)
	require.NoError(t, err)
	types, err := ebxdesc.DecodeTypeDescriptors(r, header.TypeDescriptorCount)
	require.NoError(t, err)
	_, err = ebxdesc.DecodeInstanceRows(r, header.InstanceCount)
	require.NoError(t, err)
	require.NoError(t, r.Pad(16))
	arrayRows, err := ebxdesc.DecodeArrayRows(r, header.ArrayCount)
	require.NoError(t, err)
	require.NoError(t, r.Pad(16))
	boxedValueRows, err := ebxdesc.DecodeBoxedValueRows(r, header.BoxedValuesCount)
	require.NoError(t, err)
	return decodedTables{
		header: header, types: types, fields: fields,
		arrayRows: arrayRows, boxedValueRows: boxedValueRows,
	}
}

func findType(types []ebxdesc.TypeDescriptor, hash uint32) ebxdesc.TypeDescriptor {
	for _, ty := range types {
		if ty.NameHash == hash {
			return ty
		}
	}
	return ebxdesc.TypeDescriptor{}
}

func writeAndRead(t *testing.T, oracle ebxschema.Oracle, asset *ebxasset.Asset) ([]byte, *ebxasset.Asset) {
	t.Helper()
	stream := ebxio.NewWriter()
	w := New(stream, oracle, nil)
	require.NoError(t, w.WriteAsset(asset))

	raw := stream.Bytes()
	reader := ebxio.NewReaderBytes(raw)
	decoded, err := ebxreader.New(reader, oracle, nil).ReadAsset()
	require.NoError(t, err)
	return raw, decoded
}

// TestWriteAsset_InheritanceChain exercises a two-level Child:Base chain
// through an actual Inherited-kind field: Base declares A, Child declares B
// on top of it, and the derived type's first real field must land exactly
// at the base type's own computed size.
func TestWriteAsset_InheritanceChain(t *testing.T) {
	baseHash := ebxhash.Hash32("ScenarioBase")
	childHash := ebxhash.Hash32("ScenarioChild")

	oracle := ebxschema.NewMapOracle()
	oracle.Register(ebxschema.TypeInfo{
		NameHash:  baseHash,
		Name:      "ScenarioBase",
		Alignment: 4,
		Properties: []ebxschema.PropertyDescriptor{
			{NameHash: ebxhash.Hash32("A"), Name: "A", Kind: ebxdesc.UInt32},
		},
	})
	oracle.Register(ebxschema.TypeInfo{
		NameHash:     childHash,
		Name:         "ScenarioChild",
		BaseNameHash: baseHash,
		Alignment:    4,
		Properties: []ebxschema.PropertyDescriptor{
			{NameHash: ebxhash.Hash32("B"), Name: "B", Kind: ebxdesc.Float32},
		},
	})

	childAny, err := oracle.NewInstance(childHash)
	require.NoError(t, err)
	child := childAny.(*ebxschema.DynamicInstance)

	baseInfo, ok := oracle.TypeInfo(baseHash)
	require.True(t, ok)
	childInfo, ok := oracle.TypeInfo(childHash)
	require.True(t, ok)

	setProp(t, baseInfo, child, "A", uint32(0xDEADBEEF))
	setProp(t, childInfo, child, "B", float32(1.5))

	asset := &ebxasset.Asset{
		Objects:       []ebxschema.Instance{child},
		ExportedCount: 1,
	}
	raw, decoded := writeAndRead(t, oracle, asset)

	got := decoded.Objects[0].(*ebxschema.DynamicInstance)
	a, ok := got.Get(ebxhash.Hash32("A"))
	require.True(t, ok)
	assert.Equal(t, uint32(0xDEADBEEF), a)
	b, ok := got.Get(ebxhash.Hash32("B"))
	require.True(t, ok)
	assert.Equal(t, float32(1.5), b)

	tables := decodeTables(t, raw)
	baseType := findType(tables.types, baseHash)
	childType := findType(tables.types, childHash)
	require.NotZero(t, childType.FieldCount)

	inheritedField := tables.fields[childType.FieldIndex]
	assert.Equal(t, ebxdesc.Inherited, inheritedField.Flags.Kind())

	bField := tables.fields[childType.FieldIndex+1]
	assert.Equal(t, baseType.Size, uint16(bField.DataOffset))
}

// TestWriteAsset_ArrayOfStructs exercises an Array field whose ElementKind is
// Struct: three {X,Y} points, checking the decoded shape and the array
// table's row count.
func TestWriteAsset_ArrayOfStructs(t *testing.T) {
	pointHash := ebxhash.Hash32("ScenarioPoint")
	containerHash := ebxhash.Hash32("ScenarioPointContainer")

	oracle := ebxschema.NewMapOracle()
	oracle.Register(ebxschema.TypeInfo{
		NameHash:  pointHash,
		Name:      "ScenarioPoint",
		Alignment: 2,
		Properties: []ebxschema.PropertyDescriptor{
			{NameHash: ebxhash.Hash32("X"), Name: "X", Kind: ebxdesc.UInt16},
			{NameHash: ebxhash.Hash32("Y"), Name: "Y", Kind: ebxdesc.UInt16},
		},
	})
	oracle.Register(ebxschema.TypeInfo{
		NameHash:  containerHash,
		Name:      "ScenarioPointContainer",
		Alignment: 4,
		Properties: []ebxschema.PropertyDescriptor{
			{
				NameHash: ebxhash.Hash32("Points"), Name: "Points",
				Kind: ebxdesc.Array, ElementKind: ebxdesc.Struct, ElementTypeHash: pointHash,
			},
		},
	})

	containerAny, err := oracle.NewInstance(containerHash)
	require.NoError(t, err)
	container := containerAny.(*ebxschema.DynamicInstance)
	containerInfo, ok := oracle.TypeInfo(containerHash)
	require.True(t, ok)
	pointInfo, ok := oracle.TypeInfo(pointHash)
	require.True(t, ok)

	coords := [][2]uint16{{1, 2}, {3, 4}, {5, 6}}
	for _, c := range coords {
		ptAny, err := oracle.NewInstance(pointHash)
		require.NoError(t, err)
		pt := ptAny.(*ebxschema.DynamicInstance)
		setProp(t, pointInfo, pt, "X", c[0])
		setProp(t, pointInfo, pt, "Y", c[1])
		appendProp(t, containerInfo, container, "Points", ebxschema.Instance(pt))
	}

	asset := &ebxasset.Asset{
		Objects:       []ebxschema.Instance{container},
		ExportedCount: 1,
	}
	raw, decoded := writeAndRead(t, oracle, asset)

	got := decoded.Objects[0].(*ebxschema.DynamicInstance)
	pointsAny, ok := got.Get(ebxhash.Hash32("Points"))
	require.True(t, ok)
	points := pointsAny.([]any)
	require.Len(t, points, 3)
	for i, c := range coords {
		pt := points[i].(*ebxschema.DynamicInstance)
		x, ok := pt.Get(ebxhash.Hash32("X"))
		require.True(t, ok)
		y, ok := pt.Get(ebxhash.Hash32("Y"))
		require.True(t, ok)
		assert.Equal(t, c[0], x)
		assert.Equal(t, c[1], y)
	}

	tables := decodeTables(t, raw)
	require.Len(t, tables.arrayRows, 1)
	assert.Equal(t, uint32(3), tables.arrayRows[0].Count)
}

// TestWriteAsset_InternalPointerCycle has two objects point at each other,
// checking that both ref counts land at 1 and that writing terminates at
// all — the pre-pass's cycle-safety reasoning only matters if something
// actually exercises a cycle.
func TestWriteAsset_InternalPointerCycle(t *testing.T) {
	nodeHash := ebxhash.Hash32("ScenarioCycleNode")
	oracle := ebxschema.NewMapOracle()
	oracle.Register(ebxschema.TypeInfo{
		NameHash:  nodeHash,
		Name:      "ScenarioCycleNode",
		Alignment: 4,
		Properties: []ebxschema.PropertyDescriptor{
			{NameHash: ebxhash.Hash32("Other"), Name: "Other", Kind: ebxdesc.Class},
		},
	})

	aAny, err := oracle.NewInstance(nodeHash)
	require.NoError(t, err)
	bAny, err := oracle.NewInstance(nodeHash)
	require.NoError(t, err)
	a := aAny.(*ebxschema.DynamicInstance)
	b := bAny.(*ebxschema.DynamicInstance)
	info, ok := oracle.TypeInfo(nodeHash)
	require.True(t, ok)

	setProp(t, info, a, "Other", ebxasset.PointerRef{Kind: ebxasset.PointerInternal, InternalIndex: 1})
	setProp(t, info, b, "Other", ebxasset.PointerRef{Kind: ebxasset.PointerInternal, InternalIndex: 0})

	asset := &ebxasset.Asset{
		Objects:       []ebxschema.Instance{a, b},
		ExportedCount: 2,
	}
	_, decoded := writeAndRead(t, oracle, asset)

	require.Len(t, decoded.Objects, 2)
	assert.Equal(t, []uint32{1, 1}, decoded.RefCounts)

	gotA := decoded.Objects[0].(*ebxschema.DynamicInstance)
	otherAny, ok := gotA.Get(ebxhash.Hash32("Other"))
	require.True(t, ok)
	ptr := otherAny.(ebxasset.PointerRef)
	assert.Equal(t, ebxasset.PointerInternal, ptr.Kind)
	assert.Equal(t, 1, ptr.InternalIndex)
}

// TestWriteAsset_ExternalImport builds an asset referencing an object in
// another file via PointerExternal, and checks that the import table,
// Dependencies, and the decoded pointer's ImportIndex all round-trip.
func TestWriteAsset_ExternalImport(t *testing.T) {
	nodeHash := ebxhash.Hash32("ScenarioImportNode")
	oracle := ebxschema.NewMapOracle()
	oracle.Register(ebxschema.TypeInfo{
		NameHash:  nodeHash,
		Name:      "ScenarioImportNode",
		Alignment: 4,
		Properties: []ebxschema.PropertyDescriptor{
			{NameHash: ebxhash.Hash32("Other"), Name: "Other", Kind: ebxdesc.Class},
		},
	})

	nodeAny, err := oracle.NewInstance(nodeHash)
	require.NoError(t, err)
	node := nodeAny.(*ebxschema.DynamicInstance)
	info, ok := oracle.TypeInfo(nodeHash)
	require.True(t, ok)

	externalFileGuid := ebxio.GuidFromUUID(uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"))
	externalClassGuid := ebxio.GuidFromUUID(uuid.MustParse("11111111-2222-3333-4444-000000000001"))
	imp := ebxdesc.ImportRef{FileGuid: externalFileGuid, ClassGuid: externalClassGuid}

	setProp(t, info, node, "Other", ebxasset.PointerRef{Kind: ebxasset.PointerExternal, ImportIndex: 0})

	asset := &ebxasset.Asset{
		Objects:       []ebxschema.Instance{node},
		ExportedCount: 1,
		Imports:       []ebxdesc.ImportRef{imp},
	}
	_, decoded := writeAndRead(t, oracle, asset)

	require.Len(t, decoded.Imports, 1)
	assert.Equal(t, imp, decoded.Imports[0])
	require.Len(t, decoded.Dependencies, 1)
	assert.Equal(t, externalFileGuid, decoded.Dependencies[0])

	got := decoded.Objects[0].(*ebxschema.DynamicInstance)
	otherAny, ok := got.Get(ebxhash.Hash32("Other"))
	require.True(t, ok)
	ptr := otherAny.(ebxasset.PointerRef)
	assert.Equal(t, ebxasset.PointerExternal, ptr.Kind)
	assert.Equal(t, 0, ptr.ImportIndex)
}

// TestWriteAsset_BoxedValueEnum exercises a BoxedValueRef field carrying an
// Enum-kind payload: decodeBoxedValueAt/writeBoxedValue with row.Type ==
// ebxdesc.Enum, checking the decoded Primitive's value and kind.
func TestWriteAsset_BoxedValueEnum(t *testing.T) {
	nodeHash := ebxhash.Hash32("ScenarioBoxedNode")
	oracle := ebxschema.NewMapOracle()
	oracle.Register(ebxschema.TypeInfo{
		NameHash:  nodeHash,
		Name:      "ScenarioBoxedNode",
		Alignment: 4,
		Properties: []ebxschema.PropertyDescriptor{
			{NameHash: ebxhash.Hash32("Boxed"), Name: "Boxed", Kind: ebxdesc.BoxedValueRef},
		},
	})

	nodeAny, err := oracle.NewInstance(nodeHash)
	require.NoError(t, err)
	node := nodeAny.(*ebxschema.DynamicInstance)
	info, ok := oracle.TypeInfo(nodeHash)
	require.True(t, ok)

	setProp(t, info, node, "Boxed", ebxschema.FromActualType(ebxdesc.Enum, int32(3)))

	asset := &ebxasset.Asset{
		Objects:       []ebxschema.Instance{node},
		ExportedCount: 1,
	}
	raw, decoded := writeAndRead(t, oracle, asset)

	got := decoded.Objects[0].(*ebxschema.DynamicInstance)
	boxedAny, ok := got.Get(ebxhash.Hash32("Boxed"))
	require.True(t, ok)
	prim := boxedAny.(ebxschema.Primitive)
	assert.Equal(t, ebxdesc.Enum, prim.Kind)
	assert.Equal(t, int32(3), prim.ActualType())

	tables := decodeTables(t, raw)
	require.Len(t, tables.boxedValueRows, 1)
	assert.Equal(t, ebxdesc.Enum, tables.boxedValueRows[0].Type)
}

// TestWriteAsset_RoundTripIdempotence checks write -> read -> write produces
// byte-identical output: re-encoding a decoded asset must reproduce the
// original bytes exactly, not merely an equivalent structure.
func TestWriteAsset_RoundTripIdempotence(t *testing.T) {
	oracle := fixtureOracle()

	rootAny, err := oracle.NewInstance(rootHash)
	require.NoError(t, err)
	root := rootAny.(*ebxschema.DynamicInstance)
	leafAny, err := oracle.NewInstance(leafHash)
	require.NoError(t, err)
	leaf := leafAny.(*ebxschema.DynamicInstance)
	rootInfo, ok := oracle.TypeInfo(rootHash)
	require.True(t, ok)
	leafInfo, ok := oracle.TypeInfo(leafHash)
	require.True(t, ok)

	setProp(t, rootInfo, root, "Value", int32(1))
	setProp(t, rootInfo, root, "Flag", false)
	setProp(t, rootInfo, root, "Label", "idempotence")
	setProp(t, rootInfo, root, "Note", "note")
	setProp(t, rootInfo, root, "Next", ebxasset.PointerRef{Kind: ebxasset.PointerInternal, InternalIndex: 1})
	setProp(t, leafInfo, leaf, "Y", int32(5))

	asset := &ebxasset.Asset{
		FileGuid:      ebxio.GuidFromUUID(uuid.MustParse("22222222-3333-4444-5555-666666666666")),
		Objects:       []ebxschema.Instance{root, leaf},
		ExportedCount: 1,
	}

	firstBytes, decoded := writeAndRead(t, oracle, asset)

	secondAsset := &ebxasset.Asset{
		FileGuid:      decoded.FileGuid,
		Objects:       decoded.Objects,
		ExportedCount: decoded.ExportedCount,
		Imports:       decoded.Imports,
	}
	secondStream := ebxio.NewWriter()
	require.NoError(t, New(secondStream, oracle, nil).WriteAsset(secondAsset))

	assert.Equal(t, firstBytes, secondStream.Bytes())
}

// TestWriteAsset_Determinism checks that encoding the same in-memory asset
// twice produces byte-identical output.
func TestWriteAsset_Determinism(t *testing.T) {
	oracle := fixtureOracle()

	build := func() *ebxasset.Asset {
		rootAny, err := oracle.NewInstance(rootHash)
		require.NoError(t, err)
		root := rootAny.(*ebxschema.DynamicInstance)
		leafAny, err := oracle.NewInstance(leafHash)
		require.NoError(t, err)
		leaf := leafAny.(*ebxschema.DynamicInstance)
		rootInfo, ok := oracle.TypeInfo(rootHash)
		require.True(t, ok)
		leafInfo, ok := oracle.TypeInfo(leafHash)
		require.True(t, ok)

		setProp(t, rootInfo, root, "Value", int32(77))
		setProp(t, rootInfo, root, "Flag", true)
		setProp(t, rootInfo, root, "Label", "determinism")
		setProp(t, rootInfo, root, "Note", "note")
		setProp(t, rootInfo, root, "Next", ebxasset.PointerRef{Kind: ebxasset.PointerInternal, InternalIndex: 1})
		appendProp(t, rootInfo, root, "Items", int32(9))
		setProp(t, leafInfo, leaf, "Y", int32(11))

		return &ebxasset.Asset{
			FileGuid:      ebxio.GuidFromUUID(uuid.MustParse("33333333-4444-5555-6666-777777777777")),
			Objects:       []ebxschema.Instance{root, leaf},
			ExportedCount: 1,
		}
	}

	stream1 := ebxio.NewWriter()
	require.NoError(t, New(stream1, oracle, nil).WriteAsset(build()))
	stream2 := ebxio.NewWriter()
	require.NoError(t, New(stream2, oracle, nil).WriteAsset(build()))

	assert.Equal(t, stream1.Bytes(), stream2.Bytes())
}
