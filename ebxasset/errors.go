package ebxasset

import "github.com/pkg/errors"

// Sentinel error kinds from the error handling design. BadMagic aborts
// before any object construction; BadLayout, Unsupported, and CorruptString
// abort the current parse leaving the asset unloaded; SchemaMismatch
// reports the oracle returning nothing for a type hash.
var (
	ErrBadMagic       = errors.New("ebx: unsupported magic/version")
	ErrBadLayout      = errors.New("ebx: descriptor or layout is malformed")
	ErrUnsupported    = errors.New("ebx: construct unsupported on this dialect")
	ErrSchemaMismatch = errors.New("ebx: schema oracle has no type for this hash")
	ErrCorruptString  = errors.New("ebx: string pool entry missing its terminator")
)
