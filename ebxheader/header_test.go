package ebxheader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoe7ess/FrostyToolsuite/ebxasset"
	"github.com/shoe7ess/FrostyToolsuite/ebxio"
)

func TestHeader_V4_RoundTripsIncludingBoxedValues(t *testing.T) {
	h := Header{
		Magic:               MagicV4,
		StringsOffset:       100,
		StringsAndDataLen:   50,
		ImportCount:         1,
		InstanceCount:       2,
		ExportedCount:       1,
		UniqueTypeCount:     1,
		TypeDescriptorCount: 1,
		FieldDescriptorCount: 1,
		TypeNamesLen:        10,
		StringsLen:          20,
		ArrayCount:          0,
		DataLen:             30,
		FileGuid:            ebxio.Guid{1, 2, 3},
		BoxedValuesCount:    2,
		BoxedValuesOffset:   100 + 20 + 40, // absolute, rel=40
	}

	w := ebxio.NewWriter()
	Encode(w, h)

	r := ebxio.NewReaderBytes(w.Bytes())
	got, err := Decode(r)
	require.NoError(t, err)
	assert.Equal(t, h, *got)
	assert.Equal(t, int64(120), got.InstanceRegionOffset())
	assert.Equal(t, int64(150), got.ArraysOffset())
}

func TestHeader_V2_PadsInsteadOfBoxedValues(t *testing.T) {
	h := Header{Magic: MagicV2, FileGuid: ebxio.Guid{9}}
	w := ebxio.NewWriter()
	Encode(w, h)

	r := ebxio.NewReaderBytes(w.Bytes())
	got, err := Decode(r)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), got.BoxedValuesCount)
	assert.Equal(t, h.FileGuid, got.FileGuid)
}

func TestHeader_BadMagicIsRejected(t *testing.T) {
	w := ebxio.NewWriter()
	w.WriteU32(99)
	r := ebxio.NewReaderBytes(w.Bytes())
	_, err := Decode(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, ebxasset.ErrBadMagic)
}
