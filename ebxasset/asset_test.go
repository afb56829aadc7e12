package ebxasset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointerRef_IsNull(t *testing.T) {
	assert.True(t, PointerRef{Kind: PointerNull}.IsNull())
	assert.False(t, PointerRef{Kind: PointerInternal, InternalIndex: 1}.IsNull())
	assert.False(t, PointerRef{Kind: PointerExternal, ImportIndex: 2}.IsNull())
}
