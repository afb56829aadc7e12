package ebxwriter

import "github.com/shoe7ess/FrostyToolsuite/ebxio"

// stringInterner builds the free-form string pool: each distinct string is
// written once, NUL-terminated, and every repeat occurrence reuses the first
// occurrence's offset. Offsets are known the instant a string is first seen
// (the pool's own length so far), so interning needs no second pass to
// backfill offsets.
type stringInterner struct {
	buf     *ebxio.Writer
	offsets map[string]uint32
}

func newStringInterner() *stringInterner {
	return &stringInterner{buf: ebxio.NewWriter(), offsets: map[string]uint32{}}
}

func (s *stringInterner) Intern(str string) uint32 {
	if off, ok := s.offsets[str]; ok {
		return off
	}
	off := uint32(s.buf.Tell())
	s.buf.WriteCString(str)
	s.offsets[str] = off
	return off
}

func (s *stringInterner) Bytes() []byte {
	return s.buf.Bytes()
}

func (s *stringInterner) Len() uint32 {
	return uint32(s.buf.Len())
}
