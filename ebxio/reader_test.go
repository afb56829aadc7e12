package ebxio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_ReadU32LittleEndian(t *testing.T) {
	r := NewReaderBytes([]byte{3, 1, 4, 3, 12, 34, 56, 78})

	v1, err := r.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(50594051), v1)

	v2, err := r.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(1312301580), v2)
}

func TestReader_ReadCString(t *testing.T) {
	r := NewReaderBytes([]byte("hello\x00world\x00"))

	s1, err := r.ReadCString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s1)

	s2, err := r.ReadCString()
	require.NoError(t, err)
	assert.Equal(t, "world", s2)
}

func TestReader_ReadFixedString_TrimsAtFirstNUL(t *testing.T) {
	bs := make([]byte, 32)
	copy(bs, "asset_name")
	r := NewReaderBytes(bs)

	s, err := r.ReadFixedString(32)
	require.NoError(t, err)
	assert.Equal(t, "asset_name", s)
}

func TestReader_Pad(t *testing.T) {
	r := NewReaderBytes(make([]byte, 32))
	_, err := r.ReadBytes(3)
	require.NoError(t, err)
	require.NoError(t, r.Pad(16))

	pos, err := r.Tell()
	require.NoError(t, err)
	assert.Equal(t, int64(16), pos)
}

func TestReader_SeekAndTell(t *testing.T) {
	r := NewReaderBytes(make([]byte, 64))
	require.NoError(t, r.Seek(40))
	pos, err := r.Tell()
	require.NoError(t, err)
	assert.Equal(t, int64(40), pos)
}
