// Package ebxhash computes the name hashes the type-names region is indexed
// by, and the hashes the type resolver uses to look up a schema type or
// property by name.
package ebxhash

// Hash32 is the 32-bit FNV-1a hash over the lowercased name, used to index
// the type-names region and to match a decoded type/field name against the
// name hash carried in its descriptor row.
func Hash32(name string) uint32 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)
	h := uint32(offset32)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		h ^= uint32(c)
		h *= prime32
	}
	return h
}
