package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReference_Format(t *testing.T) {
	ref := NewReference()
	assert.True(t, strings.HasPrefix(ref, "TXN-"))
	assert.True(t, ValidReference(ref), "generated reference should validate: %s", ref)
}

func TestNewReference_Distinct(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		ref := NewReference()
		_, dup := seen[ref]
		assert.False(t, dup, "duplicate reference generated: %s", ref)
		seen[ref] = struct{}{}
	}
}

func TestValidReference(t *testing.T) {
	assert.True(t, ValidReference("TXN-1700000000000-A1B2C3"))
	assert.False(t, ValidReference("REF-1700000000000-A1B2C3"))
	assert.False(t, ValidReference("TXN-1700000000000"))
	assert.False(t, ValidReference(""))
}
