package ebxwriter

import (
	"github.com/pkg/errors"

	"github.com/shoe7ess/FrostyToolsuite/ebxasset"
	"github.com/shoe7ess/FrostyToolsuite/ebxdesc"
	"github.com/shoe7ess/FrostyToolsuite/ebxschema"
)

// arrayShape identifies one distinct instantiation of the schema's ordered
// collection type: its element kind plus, for Struct/Class elements, the
// element's own concrete type hash.
type arrayShape struct {
	elementKind     ebxdesc.TypeEnum
	elementTypeHash uint32
}

// prepassResult is everything the descriptor/emit stages need, collected in
// one pass over the asset: the concrete type set (first-appearance order,
// base chains included), the array-shape set, the dense import table, and
// the instance emission order — which is simply asset.Objects, since a
// PointerRef's InternalIndex is already defined as an index into that same
// vector. There is no separate instance graph to rediscover; the pre-pass
// only needs to walk each object's properties to find the types, array
// shapes, and imports that nothing in Objects' own type list would surface
// on its own (nested struct values, array element types, import refs).
type prepassResult struct {
	types       []uint32
	arrayShapes []arrayShape
	instances   []ebxschema.Instance
	instanceIdx map[ebxschema.Instance]int
	imports     []ebxdesc.ImportRef
	importIdx   map[ebxdesc.ImportRef]int
}

// collect walks every object in asset.Objects and its property values,
// registering every concrete type reachable (including base chains), every
// distinct array shape, and every import actually referenced by an external
// pointer.
func collect(oracle ebxschema.Oracle, asset *ebxasset.Asset) (*prepassResult, error) {
	res := &prepassResult{
		instances:   asset.Objects,
		instanceIdx: make(map[ebxschema.Instance]int, len(asset.Objects)),
		importIdx:   map[ebxdesc.ImportRef]int{},
	}
	for i, obj := range asset.Objects {
		res.instanceIdx[obj] = i
	}

	seenTypes := map[uint32]bool{}
	seenShapes := map[arrayShape]bool{}

	// registerType pulls in hash's own base chain, and declaratively follows
	// every Struct-kind property (plain or array-element) to its nested
	// type, recursively. A struct field's FieldDescriptor is shared by every
	// instance of the parent type and needs a valid type-table ref
	// regardless of whether any particular instance happens to populate
	// that field, so this can't wait for the value walk below to discover
	// it by example.
	var registerType func(hash uint32)
	registerType = func(hash uint32) {
		for h := hash; h != 0 && !seenTypes[h]; {
			seenTypes[h] = true
			res.types = append(res.types, h)
			info, ok := oracle.TypeInfo(h)
			if !ok {
				break
			}
			for _, p := range info.Properties {
				if p.ElementTypeHash == 0 {
					continue
				}
				if p.Kind == ebxdesc.Struct || (p.Kind == ebxdesc.Array && p.ElementKind == ebxdesc.Struct) {
					registerType(p.ElementTypeHash)
				}
			}
			h = info.BaseNameHash
		}
	}
	registerShape := func(s arrayShape) {
		if !seenShapes[s] {
			seenShapes[s] = true
			res.arrayShapes = append(res.arrayShapes, s)
		}
	}
	registerImport := func(imp ebxdesc.ImportRef) {
		if _, ok := res.importIdx[imp]; !ok {
			res.importIdx[imp] = len(res.imports)
			res.imports = append(res.imports, imp)
		}
	}

	var visitProperties func(info ebxschema.TypeInfo, obj ebxschema.Instance) error
	var visitStructValue func(inst ebxschema.Instance) error
	var visitDynamic func(val any) error

	visitPointer := func(ref ebxasset.PointerRef) error {
		if !ref.IsNull() && ref.Kind == ebxasset.PointerExternal {
			if ref.ImportIndex < 0 || ref.ImportIndex >= len(asset.Imports) {
				return errors.Wrapf(ebxasset.ErrBadLayout, "import index %d out of range", ref.ImportIndex)
			}
			registerImport(asset.Imports[ref.ImportIndex])
		}
		// Internal targets need no recursion here: every object is already
		// in asset.Objects and gets its own top-level visit below.
		return nil
	}

	visitStructValue = func(inst ebxschema.Instance) error {
		if inst == nil {
			return nil
		}
		registerType(inst.TypeNameHash())
		info, ok := oracle.TypeInfo(inst.TypeNameHash())
		if !ok {
			return errors.Wrapf(ebxasset.ErrSchemaMismatch, "struct type hash %d", inst.TypeNameHash())
		}
		return visitProperties(info, inst)
	}

	visitDynamic = func(val any) error {
		switch v := val.(type) {
		case ebxasset.PointerRef:
			return visitPointer(v)
		case ebxschema.Instance:
			return visitStructValue(v)
		case []any:
			for _, e := range v {
				if err := visitDynamic(e); err != nil {
					return err
				}
			}
			return nil
		default:
			return nil
		}
	}

	visitProperties = func(info ebxschema.TypeInfo, obj ebxschema.Instance) error {
		for cur := info; ; {
			for _, p := range cur.Properties {
				if p.Transient {
					continue
				}
				val, ok := p.Get(obj)
				if !ok {
					continue
				}
				if p.Unwrap != nil {
					val = p.Unwrap(val)
				}
				switch p.Kind {
				case ebxdesc.Class:
					ref, ok := val.(ebxasset.PointerRef)
					if !ok {
						continue
					}
					if err := visitPointer(ref); err != nil {
						return err
					}
				case ebxdesc.Struct:
					inst, ok := val.(ebxschema.Instance)
					if !ok {
						continue
					}
					if err := visitStructValue(inst); err != nil {
						return err
					}
				case ebxdesc.Array:
					registerShape(arrayShape{
						elementKind:     p.ElementKind,
						elementTypeHash: canonicalElementHash(p.ElementKind, p.ElementTypeHash),
					})
					elems, ok := val.([]any)
					if !ok {
						continue
					}
					for _, e := range elems {
						switch p.ElementKind {
						case ebxdesc.Class:
							if ref, ok := e.(ebxasset.PointerRef); ok {
								if err := visitPointer(ref); err != nil {
									return err
								}
							}
						case ebxdesc.Struct:
							if inst, ok := e.(ebxschema.Instance); ok {
								if err := visitStructValue(inst); err != nil {
									return err
								}
							}
						}
					}
				case ebxdesc.BoxedValueRef:
					prim, ok := val.(ebxschema.Primitive)
					if !ok {
						continue
					}
					if prim.Kind == ebxdesc.Array {
						elems, _ := prim.Value.([]any)
						if len(elems) > 0 {
							k := inferKind(elems[0])
							registerShape(arrayShape{elementKind: k, elementTypeHash: canonicalElementHash(k, inferTypeHash(elems[0]))})
						}
					} else if prim.Kind == ebxdesc.Struct {
						if inst, ok := prim.Value.(ebxschema.Instance); ok {
							registerType(inst.TypeNameHash())
						}
					}
					if err := visitDynamic(prim.Value); err != nil {
						return err
					}
				}
			}
			if cur.BaseNameHash == 0 {
				break
			}
			base, ok := oracle.TypeInfo(cur.BaseNameHash)
			if !ok {
				break
			}
			cur = base
		}
		return nil
	}

	for _, obj := range asset.Objects {
		registerType(obj.TypeNameHash())
		info, ok := oracle.TypeInfo(obj.TypeNameHash())
		if !ok {
			return nil, errors.Wrapf(ebxasset.ErrSchemaMismatch, "type hash %d", obj.TypeNameHash())
		}
		if err := visitProperties(info, obj); err != nil {
			return nil, err
		}
	}

	return res, nil
}
