package ebxwriter

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoe7ess/FrostyToolsuite/ebxasset"
	"github.com/shoe7ess/FrostyToolsuite/ebxdesc"
	"github.com/shoe7ess/FrostyToolsuite/ebxhash"
	"github.com/shoe7ess/FrostyToolsuite/ebxio"
	"github.com/shoe7ess/FrostyToolsuite/ebxreader"
	"github.com/shoe7ess/FrostyToolsuite/ebxschema"
)

var (
	rootHash = ebxhash.Hash32("RoundTripRoot")
	leafHash = ebxhash.Hash32("RoundTripLeaf")
	innerHash = ebxhash.Hash32("RoundTripInner")
)

// fixtureOracle registers a small schema exercising every field kind the
// round-trip test below touches: scalars, a fixed string, an array, a
// nested struct, and an internal class pointer.
func fixtureOracle() *ebxschema.MapOracle {
	o := ebxschema.NewMapOracle()
	o.Register(ebxschema.TypeInfo{
		NameHash:  innerHash,
		Name:      "RoundTripInner",
		Alignment: 4,
		Properties: []ebxschema.PropertyDescriptor{
			{NameHash: ebxhash.Hash32("X"), Name: "X", Kind: ebxdesc.Int32},
		},
	})
	o.Register(ebxschema.TypeInfo{
		NameHash:  leafHash,
		Name:      "RoundTripLeaf",
		Alignment: 4,
		Properties: []ebxschema.PropertyDescriptor{
			{NameHash: ebxhash.Hash32("Y"), Name: "Y", Kind: ebxdesc.Int32},
		},
	})
	o.Register(ebxschema.TypeInfo{
		NameHash:  rootHash,
		Name:      "RoundTripRoot",
		Alignment: 4,
		Properties: []ebxschema.PropertyDescriptor{
			{NameHash: ebxhash.Hash32("Value"), Name: "Value", Kind: ebxdesc.Int32},
			{NameHash: ebxhash.Hash32("Flag"), Name: "Flag", Kind: ebxdesc.Boolean},
			{NameHash: ebxhash.Hash32("Label"), Name: "Label", Kind: ebxdesc.String},
			{NameHash: ebxhash.Hash32("Note"), Name: "Note", Kind: ebxdesc.CString},
			{NameHash: ebxhash.Hash32("Items"), Name: "Items", Kind: ebxdesc.Array, ElementKind: ebxdesc.Int32},
			{NameHash: ebxhash.Hash32("Next"), Name: "Next", Kind: ebxdesc.Class},
			{NameHash: ebxhash.Hash32("Inner"), Name: "Inner", Kind: ebxdesc.Struct, ElementTypeHash: innerHash},
		},
	})
	return o
}

// TestWriteAsset_RoundTripsThroughReader builds an in-memory asset touching
// scalars, a fixed string, a CString, an array, a nested struct, and an
// internal pointer, encodes it, and checks that decoding the result
// reproduces every value.
func TestWriteAsset_RoundTripsThroughReader(t *testing.T) {
	oracle := fixtureOracle()

	rootAny, err := oracle.NewInstance(rootHash)
	require.NoError(t, err)
	root := rootAny.(*ebxschema.DynamicInstance)

	leafAny, err := oracle.NewInstance(leafHash)
	require.NoError(t, err)
	leaf := leafAny.(*ebxschema.DynamicInstance)

	innerAny, err := oracle.NewInstance(innerHash)
	require.NoError(t, err)
	inner := innerAny.(*ebxschema.DynamicInstance)

	rootInfo, ok := oracle.TypeInfo(rootHash)
	require.True(t, ok)
	leafInfo, ok := oracle.TypeInfo(leafHash)
	require.True(t, ok)
	innerInfo, ok := oracle.TypeInfo(innerHash)
	require.True(t, ok)

	setProp(t, innerInfo, inner, "X", int32(7))
	setProp(t, leafInfo, leaf, "Y", int32(99))

	setProp(t, rootInfo, root, "Value", int32(42))
	setProp(t, rootInfo, root, "Flag", true)
	setProp(t, rootInfo, root, "Label", "hello world")
	setProp(t, rootInfo, root, "Note", "a note")
	setProp(t, rootInfo, root, "Next", ebxasset.PointerRef{Kind: ebxasset.PointerInternal, InternalIndex: 1})
	setProp(t, rootInfo, root, "Inner", ebxschema.Instance(inner))
	appendProp(t, rootInfo, root, "Items", int32(1))
	appendProp(t, rootInfo, root, "Items", int32(2))
	appendProp(t, rootInfo, root, "Items", int32(3))

	asset := &ebxasset.Asset{
		FileGuid:      ebxio.GuidFromUUID(uuid.MustParse("11111111-2222-3333-4444-555555555555")),
		Objects:       []ebxschema.Instance{root, leaf},
		ExportedCount: 1,
	}

	stream := ebxio.NewWriter()
	w := New(stream, oracle, nil)
	require.NoError(t, w.WriteAsset(asset))

	reader := ebxio.NewReaderBytes(stream.Bytes())
	rd := ebxreader.New(reader, oracle, nil)
	decoded, err := rd.ReadAsset()
	require.NoError(t, err)

	require.Len(t, decoded.Objects, 2)
	assert.Equal(t, asset.FileGuid, decoded.FileGuid)
	assert.Equal(t, 1, decoded.ExportedCount)

	gotRoot := decoded.Objects[0].(*ebxschema.DynamicInstance)
	value, ok := gotRoot.Get(ebxhash.Hash32("Value"))
	require.True(t, ok)
	assert.Equal(t, int32(42), value)

	flag, ok := gotRoot.Get(ebxhash.Hash32("Flag"))
	require.True(t, ok)
	assert.Equal(t, true, flag)

	label, ok := gotRoot.Get(ebxhash.Hash32("Label"))
	require.True(t, ok)
	assert.Equal(t, "hello world", label)

	note, ok := gotRoot.Get(ebxhash.Hash32("Note"))
	require.True(t, ok)
	assert.Equal(t, "a note", note)

	items, ok := gotRoot.Get(ebxhash.Hash32("Items"))
	require.True(t, ok)
	assert.Equal(t, []any{int32(1), int32(2), int32(3)}, items)

	next, ok := gotRoot.Get(ebxhash.Hash32("Next"))
	require.True(t, ok)
	ptr := next.(ebxasset.PointerRef)
	assert.Equal(t, ebxasset.PointerInternal, ptr.Kind)
	assert.Equal(t, 1, ptr.InternalIndex)
	assert.Equal(t, uint32(1), decoded.RefCounts[1])
	assert.Equal(t, uint32(0), decoded.RefCounts[0])

	innerVal, ok := gotRoot.Get(ebxhash.Hash32("Inner"))
	require.True(t, ok)
	gotInner := innerVal.(*ebxschema.DynamicInstance)
	x, ok := gotInner.Get(ebxhash.Hash32("X"))
	require.True(t, ok)
	assert.Equal(t, int32(7), x)

	gotLeaf := decoded.Objects[1].(*ebxschema.DynamicInstance)
	y, ok := gotLeaf.Get(ebxhash.Hash32("Y"))
	require.True(t, ok)
	assert.Equal(t, int32(99), y)
}

func setProp(t *testing.T, info ebxschema.TypeInfo, obj ebxschema.Instance, name string, val any) {
	t.Helper()
	prop, ok := info.Property(ebxhash.Hash32(name))
	require.True(t, ok, "property %q not declared", name)
	require.NoError(t, prop.Set(obj, val))
}

func appendProp(t *testing.T, info ebxschema.TypeInfo, obj ebxschema.Instance, name string, val any) {
	t.Helper()
	prop, ok := info.Property(ebxhash.Hash32(name))
	require.True(t, ok, "property %q not declared", name)
	require.NoError(t, prop.Append(obj, val))
}
