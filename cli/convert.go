package cli

import (
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/shoe7ess/FrostyToolsuite/ds"
	"github.com/shoe7ess/FrostyToolsuite/ebx"
	"github.com/shoe7ess/FrostyToolsuite/ebxasset"
	"github.com/shoe7ess/FrostyToolsuite/ebxdesc"
	"github.com/shoe7ess/FrostyToolsuite/ebxio"
	"github.com/shoe7ess/FrostyToolsuite/ebxschema"
)

// CheckExistence reports whether a path names an existing file.
func CheckExistence(path string) bool {
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	return err == nil
}

// peekProfileVersion reads the stream's leading u32 (the Partition magic /
// RIFF version marker) and rewinds, so the dialect selector can be invoked
// without the caller parsing the header twice.
func peekProfileVersion(stream *ebxio.Reader) (int, error) {
	v, err := stream.ReadU32()
	if err != nil {
		return 0, err
	}
	if err := stream.Seek(0); err != nil {
		return 0, err
	}
	return int(v), nil
}

// StartConverting decodes the EBX asset at from and writes an inspectable
// JSON dump of its object graph to to. The inverse direction (JSON back into
// a schema-typed graph) needs the real schema library this module treats as
// an external collaborator, so it isn't offered here.
func StartConverting(from, to string, force bool) {
	if !CheckExistence(from) {
		println("Source file does not exist!")
		return
	}
	if CheckExistence(to) && !force {
		println("Destination file existed. Please type the command again with --force to allow overwriting!")
		println("Explicit --force is needed to make sure that you paid attention not to overwrite an existing file.")
		return
	}

	fileBytes, err := os.ReadFile(from)
	if err != nil {
		println("Error happened reading file: " + err.Error())
		return
	}

	stream := ebxio.NewReaderBytes(fileBytes)
	profileVersion, err := peekProfileVersion(stream)
	if err != nil {
		println("Error happened reading the asset's leading magic/version: " + err.Error())
		return
	}

	// No real schema library is wired into this demonstration CLI — see
	// ebxschema.Oracle's doc comment. Any type the asset references that
	// this oracle doesn't know about surfaces as a decode error below.
	oracle := ebxschema.NewMapOracle()
	reader := ebx.NewReader(stream, oracle, Logger, profileVersion)

	asset, err := reader.ReadAsset()
	if err != nil {
		println("Error happened decoding the EBX asset: " + err.Error())
		return
	}

	dump := dumpAsset(oracle, asset)
	bs, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		println("Error happened rendering the decoded graph as JSON: " + err.Error())
		return
	}
	if err := os.WriteFile(to, bs, 0644); err != nil {
		println("Error happened writing to file at: " + to)
		return
	}
	println("Done converting. Please check your result file at: " + to)
}

// dumpAsset renders a decoded Asset as an ordered, JSON-marshalable tree:
// file identity and bookkeeping first, then every object in instance order.
func dumpAsset(oracle ebxschema.Oracle, asset *ebxasset.Asset) *ds.LinkedHashMap[string, any] {
	out := ds.NewLinkedHashMap[string, any]()
	out.Put("fileGuid", asset.FileGuid.String())
	out.Put("exportedCount", asset.ExportedCount)
	out.Put("dependencies", dumpGuids(asset.Dependencies))
	out.Put("imports", dumpImports(asset.Imports))
	out.Put("refCounts", asset.RefCounts)

	objects := make([]any, 0, len(asset.Objects))
	for _, obj := range asset.Objects {
		objects = append(objects, dumpValue(oracle, obj))
	}
	out.Put("objects", objects)
	return out
}

func dumpGuids(guids []ebxio.Guid) []string {
	ss := make([]string, 0, len(guids))
	for _, g := range guids {
		ss = append(ss, g.String())
	}
	return ss
}

func dumpImports(imports []ebxdesc.ImportRef) []any {
	out := make([]any, 0, len(imports))
	for _, imp := range imports {
		row := ds.NewLinkedHashMap[string, any]()
		row.Put("fileGuid", imp.FileGuid.String())
		row.Put("classGuid", imp.ClassGuid.String())
		out = append(out, row)
	}
	return out
}

// dumpValue renders one decoded field/element value as a JSON-marshalable
// shape, recursing through the schema-typed shapes the reader/writer pass
// around (ebxschema.Instance, ebxasset.PointerRef, ebxschema.Primitive,
// TypeRefValue, Sha1, Guid, nested arrays).
func dumpValue(oracle ebxschema.Oracle, val any) any {
	switch v := val.(type) {
	case nil:
		return nil
	case ebxschema.Instance:
		return dumpInstance(oracle, v)
	case ebxasset.PointerRef:
		return dumpPointer(v)
	case ebxschema.Primitive:
		row := ds.NewLinkedHashMap[string, any]()
		row.Put("kind", v.Kind.String())
		row.Put("value", dumpValue(oracle, v.Value))
		return row
	case ebxasset.TypeRefValue:
		if v.HasGuid {
			return v.Guid.String()
		}
		return v.Name
	case ebxasset.Sha1:
		return hex.EncodeToString(v[:])
	case ebxio.Guid:
		return v.String()
	case []any:
		out := make([]any, 0, len(v))
		for _, e := range v {
			out = append(out, dumpValue(oracle, e))
		}
		return out
	default:
		return v
	}
}

func dumpPointer(ref ebxasset.PointerRef) *ds.LinkedHashMap[string, any] {
	row := ds.NewLinkedHashMap[string, any]()
	switch ref.Kind {
	case ebxasset.PointerNull:
		row.Put("kind", "null")
	case ebxasset.PointerInternal:
		row.Put("kind", "internal")
		row.Put("index", ref.InternalIndex)
	case ebxasset.PointerExternal:
		row.Put("kind", "external")
		row.Put("importIndex", ref.ImportIndex)
	}
	return row
}

// dumpInstance walks obj's declared properties (own type, then base chain)
// in declaration order via the oracle's TypeInfo, the same Property lookup
// the reader/writer use for field binding.
func dumpInstance(oracle ebxschema.Oracle, obj ebxschema.Instance) *ds.LinkedHashMap[string, any] {
	row := ds.NewLinkedHashMap[string, any]()
	info, ok := oracle.TypeInfo(obj.TypeNameHash())
	if !ok {
		row.Put("typeHash", obj.TypeNameHash())
		return row
	}
	row.Put("type", info.Name)
	for cur, seen := info, map[uint32]bool{}; ; {
		for _, p := range cur.Properties {
			val, ok := p.Get(obj)
			if !ok {
				continue
			}
			if p.Unwrap != nil {
				val = p.Unwrap(val)
			}
			row.Put(p.Name, dumpValue(oracle, val))
		}
		if cur.BaseNameHash == 0 || seen[cur.BaseNameHash] {
			break
		}
		seen[cur.BaseNameHash] = true
		base, ok := oracle.TypeInfo(cur.BaseNameHash)
		if !ok {
			break
		}
		cur = base
	}
	return row
}
