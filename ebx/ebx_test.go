package ebx

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shoe7ess/FrostyToolsuite/ebxio"
	"github.com/shoe7ess/FrostyToolsuite/ebxreader"
	"github.com/shoe7ess/FrostyToolsuite/ebxriff"
	"github.com/shoe7ess/FrostyToolsuite/ebxschema"
	"github.com/shoe7ess/FrostyToolsuite/ebxwriter"
)

func TestNewReader_SelectsByVersion(t *testing.T) {
	oracle := ebxschema.NewMapOracle()
	stream := ebxio.NewReaderBytes(nil)

	partition := NewReader(stream, oracle, nil, 4)
	_, isPartition := partition.(*ebxreader.Reader)
	assert.True(t, isPartition)

	riff := NewReader(stream, oracle, nil, RIFFVersion)
	_, isRiff := riff.(*ebxriff.Reader)
	assert.True(t, isRiff)
}

func TestNewWriter_SelectsByVersion(t *testing.T) {
	oracle := ebxschema.NewMapOracle()
	stream := ebxio.NewWriter()

	partition := NewWriter(stream, oracle, nil, 2)
	_, isPartition := partition.(*ebxwriter.Writer)
	assert.True(t, isPartition)

	riff := NewWriter(stream, oracle, nil, RIFFVersion)
	_, isRiff := riff.(*ebxriff.Writer)
	assert.True(t, isRiff)
}

func TestRIFFReader_ReportsUnsupported(t *testing.T) {
	oracle := ebxschema.NewMapOracle()
	stream := ebxio.NewReaderBytes(nil)
	reader := ebxriff.NewReader(stream, oracle, nil)

	_, err := reader.ReadAsset()
	assert.ErrorContains(t, err, "RIFF framing not implemented")
}
