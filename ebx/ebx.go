// Package ebx is the dialect selector: it picks the Partition codec
// (ebxreader/ebxwriter) or the RIFF codec (ebxriff) by profile version and
// exposes both behind the AssetReader/AssetWriter contract so callers never
// switch on version themselves.
package ebx

import (
	"github.com/shoe7ess/FrostyToolsuite/ebxasset"
	"github.com/shoe7ess/FrostyToolsuite/ebxio"
	"github.com/shoe7ess/FrostyToolsuite/ebxlog"
	"github.com/shoe7ess/FrostyToolsuite/ebxreader"
	"github.com/shoe7ess/FrostyToolsuite/ebxriff"
	"github.com/shoe7ess/FrostyToolsuite/ebxschema"
	"github.com/shoe7ess/FrostyToolsuite/ebxwriter"
)

// AssetReader and AssetWriter re-export ebxasset's contract so callers only
// need to import this package for the dialect-selection surface.
type (
	AssetReader = ebxasset.AssetReader
	AssetWriter = ebxasset.AssetWriter
)

// RIFFVersion is the EBX profile version that selects the RIFF dialect.
// Every other version selects Partition.
const RIFFVersion = 6

// NewReader picks ebxreader.Reader for any profileVersion but RIFFVersion,
// and ebxriff.Reader for RIFFVersion.
func NewReader(stream *ebxio.Reader, oracle ebxschema.Oracle, logger ebxlog.Logger, profileVersion int) AssetReader {
	if profileVersion == RIFFVersion {
		return ebxriff.NewReader(stream, oracle, logger)
	}
	return ebxreader.New(stream, oracle, logger)
}

// NewWriter picks ebxwriter.Writer for any profileVersion but RIFFVersion,
// and ebxriff.Writer for RIFFVersion.
func NewWriter(stream *ebxio.Writer, oracle ebxschema.Oracle, logger ebxlog.Logger, profileVersion int) AssetWriter {
	if profileVersion == RIFFVersion {
		return ebxriff.NewWriter(stream, oracle, logger)
	}
	return ebxwriter.New(stream, oracle, logger)
}
