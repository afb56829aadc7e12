package ebxschema

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/shoe7ess/FrostyToolsuite/ebxdesc"
)

// DynamicInstance is the reference Instance implementation backed by a
// name-hash-keyed map. It exists so this package can ship a usable default
// Oracle for tests and the demonstration CLI; the real schema library would
// back Instance with generated, concretely-typed structs instead.
type DynamicInstance struct {
	typeNameHash uint32
	fields       map[uint32]any
}

func NewDynamicInstance(typeNameHash uint32) *DynamicInstance {
	return &DynamicInstance{typeNameHash: typeNameHash, fields: map[uint32]any{}}
}

func (d *DynamicInstance) TypeNameHash() uint32 {
	return d.typeNameHash
}

func (d *DynamicInstance) Get(nameHash uint32) (any, bool) {
	v, ok := d.fields[nameHash]
	return v, ok
}

// bindDynamic fills in a PropertyDescriptor's Get/Set/Append closures against
// a *DynamicInstance when the schema-table builder (MapOracle.Register)
// didn't supply its own — the per-name-hash binding happens once at
// registration time, not per field access.
func bindDynamic(p PropertyDescriptor) PropertyDescriptor {
	nameHash := p.NameHash
	if p.Get == nil {
		p.Get = func(inst Instance) (any, bool) {
			di, ok := inst.(*DynamicInstance)
			if !ok {
				return nil, false
			}
			return di.Get(nameHash)
		}
	}
	if p.Set == nil {
		p.Set = func(inst Instance, v any) error {
			di, ok := inst.(*DynamicInstance)
			if !ok {
				return errors.Errorf("ebxschema: instance is not a *DynamicInstance")
			}
			di.fields[nameHash] = v
			return nil
		}
	}
	if p.Append == nil && p.Kind == ebxdesc.Array {
		p.Append = func(inst Instance, v any) error {
			di, ok := inst.(*DynamicInstance)
			if !ok {
				return errors.Errorf("ebxschema: instance is not a *DynamicInstance")
			}
			cur, _ := di.fields[nameHash].([]any)
			di.fields[nameHash] = append(cur, v)
			return nil
		}
	}
	return p
}

// MapOracle is an in-memory Oracle backed by a name-hash-keyed type table.
// It pre-initializes every Array property of a new instance (including ones
// inherited from its base chain) to an empty ordered collection, matching
// the contract the reader's array decode relies on.
type MapOracle struct {
	types map[uint32]TypeInfo
}

func NewMapOracle() *MapOracle {
	return &MapOracle{types: map[uint32]TypeInfo{}}
}

func (o *MapOracle) Register(t TypeInfo) {
	t.Properties = lo.Map(t.Properties, func(p PropertyDescriptor, _ int) PropertyDescriptor {
		return bindDynamic(p)
	})
	o.types[t.NameHash] = t
}

func (o *MapOracle) TypeInfo(nameHash uint32) (TypeInfo, bool) {
	t, ok := o.types[nameHash]
	return t, ok
}

func (o *MapOracle) NewInstance(nameHash uint32) (Instance, error) {
	t, ok := o.types[nameHash]
	if !ok {
		return nil, errors.Errorf("ebxschema: unknown type hash %d", nameHash)
	}
	inst := NewDynamicInstance(nameHash)
	for cur, seen := t, map[uint32]bool{}; ; {
		for _, p := range cur.Properties {
			if p.Kind == ebxdesc.Array {
				inst.fields[p.NameHash] = []any{}
			}
		}
		if cur.BaseNameHash == 0 || seen[cur.BaseNameHash] {
			break
		}
		seen[cur.BaseNameHash] = true
		base, ok := o.types[cur.BaseNameHash]
		if !ok {
			break
		}
		cur = base
	}
	return inst, nil
}

// RegisteredHashes lists every type hash this oracle knows about, primarily
// useful for tests asserting a fixture schema loaded completely.
func (o *MapOracle) RegisteredHashes() []uint32 {
	return lo.Keys(o.types)
}
