// Package ebxio provides positional byte I/O over EBX payloads: little-endian
// fixed-width integers and floats, 16-byte GUIDs, null-terminated strings,
// alignment padding, and absolute seeking.
package ebxio

import (
	"github.com/google/uuid"
)

// Guid is a 16-byte GUID as it appears on the wire: a partition identity, an
// instance's AssetClassGuid, or one half of an ImportRef.
type Guid [16]byte

// ZeroGuid is the empty GUID used for non-exported instances.
var ZeroGuid = Guid{}

func (g Guid) IsZero() bool {
	return g == ZeroGuid
}

func (g Guid) String() string {
	return uuid.UUID(g).String()
}

func GuidFromUUID(u uuid.UUID) Guid {
	return Guid(u)
}

// ParseGuid parses a hyphenated GUID string, used when a TypeRef/Delegate
// field's resolved string happens to be a GUID rather than a bare name.
func ParseGuid(s string) (Guid, bool) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Guid{}, false
	}
	return Guid(u), true
}
