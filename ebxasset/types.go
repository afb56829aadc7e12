package ebxasset

import "github.com/shoe7ess/FrostyToolsuite/ebxio"

// TypeRefValue is the decoded form of a TypeRef/Delegate field: the
// resolved string is parsed as a GUID when possible, otherwise kept as a
// bare type name.
type TypeRefValue struct {
	Guid    ebxio.Guid
	Name    string
	HasGuid bool
}

// Sha1 is the fixed 20-byte digest wire type.
type Sha1 [20]byte
