// Package ebxriff is the seam for the second EBX wire dialect (profile
// version 6). It shares the same object-graph shape and the same
// ebxasset.AssetReader/AssetWriter contract as the Partition dialect
// (ebxreader/ebxwriter), but the RIFF container format itself — chunk
// framing, its own header layout — is explicitly out of scope per this
// module's purpose and scope section. Only the construction and dispatch
// seam is implemented here; both operations fail loudly rather than
// pretending to decode bytes they don't understand.
package ebxriff

import (
	"github.com/pkg/errors"

	"github.com/shoe7ess/FrostyToolsuite/ebxasset"
	"github.com/shoe7ess/FrostyToolsuite/ebxio"
	"github.com/shoe7ess/FrostyToolsuite/ebxlog"
	"github.com/shoe7ess/FrostyToolsuite/ebxschema"
)

// Reader satisfies ebxasset.AssetReader for the RIFF dialect.
type Reader struct {
	stream *ebxio.Reader
	oracle ebxschema.Oracle
	logger ebxlog.Logger
}

func NewReader(stream *ebxio.Reader, oracle ebxschema.Oracle, logger ebxlog.Logger) *Reader {
	if logger == nil {
		logger = ebxlog.Default
	}
	return &Reader{stream: stream, oracle: oracle, logger: logger}
}

func (r *Reader) ReadAsset() (*ebxasset.Asset, error) {
	return nil, errors.Wrap(ebxasset.ErrUnsupported, "ebxriff: RIFF framing not implemented")
}

// Writer satisfies ebxasset.AssetWriter for the RIFF dialect.
type Writer struct {
	stream *ebxio.Writer
	oracle ebxschema.Oracle
	logger ebxlog.Logger
}

func NewWriter(stream *ebxio.Writer, oracle ebxschema.Oracle, logger ebxlog.Logger) *Writer {
	if logger == nil {
		logger = ebxlog.Default
	}
	return &Writer{stream: stream, oracle: oracle, logger: logger}
}

func (w *Writer) WriteAsset(a *ebxasset.Asset) error {
	return errors.Wrap(ebxasset.ErrUnsupported, "ebxriff: RIFF framing not implemented")
}
