// Package ebxasset holds the data model shared by the reader and the
// writer: the decoded Asset, per-instance identity (AssetClassGuid), and the
// discriminated PointerRef value. It is deliberately free of any dependency
// on ebxreader/ebxwriter so both can depend on it without a cycle.
package ebxasset

import (
	"github.com/shoe7ess/FrostyToolsuite/ebxdesc"
	"github.com/shoe7ess/FrostyToolsuite/ebxio"
	"github.com/shoe7ess/FrostyToolsuite/ebxschema"
)

// AssetClassGuid identifies an instance within its asset: an optional stable
// GUID (non-empty for the first exportedCount instances) plus its dense
// 0-based position in the instance vector.
type AssetClassGuid struct {
	Guid  ebxio.Guid
	Index int
}

// PointerKind discriminates a PointerRef's three shapes.
type PointerKind uint8

const (
	PointerNull PointerKind = iota
	PointerInternal
	PointerExternal
)

// PointerRef is an in-band object reference: null, internal (an index into
// this asset's instance vector), or external (an index into the import
// table).
type PointerRef struct {
	Kind          PointerKind
	InternalIndex int // 0-based into Asset.Objects, valid when Kind == PointerInternal
	ImportIndex   int // 0-based into Asset.Imports, valid when Kind == PointerExternal
}

func (p PointerRef) IsNull() bool {
	return p.Kind == PointerNull
}

// Asset is an immutable-after-load bundle: a partition GUID, its ordered
// root/instance objects, per-instance reference counts, the imports it
// references, and the dependency file GUIDs derived from those imports.
type Asset struct {
	FileGuid     ebxio.Guid
	Objects      []ebxschema.Instance
	Guids        []AssetClassGuid
	RefCounts    []uint32
	Imports      []ebxdesc.ImportRef
	Dependencies []ebxio.Guid
	ExportedCount int
}

// AssetReader is satisfied by both the Partition and RIFF dialect readers.
type AssetReader interface {
	ReadAsset() (*Asset, error)
}

// AssetWriter is satisfied by both the Partition and RIFF dialect writers.
type AssetWriter interface {
	WriteAsset(a *Asset) error
}
