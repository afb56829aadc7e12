package ebxlog

import "testing"

func TestDefault_IsSilent(t *testing.T) {
	// noop must never panic regardless of args, since callers pass it
	// straight through from error values that may be nil.
	Default.Debugf("field %q: %v", "Name", nil)
}

func TestStderr_Implements(t *testing.T) {
	var _ Logger = Stderr{}
	var _ Logger = noop{}
}
