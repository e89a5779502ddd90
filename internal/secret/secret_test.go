package secret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/hmacsvc/internal/codec"
)

func TestGenerate(t *testing.T) {
	s, err := Generate(DefaultSize)
	require.NoError(t, err)
	assert.Len(t, s, 43)
	assert.NotContains(t, s, "=")

	raw, err := codec.Decode(s)
	require.NoError(t, err)
	assert.Len(t, raw, DefaultSize)
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		s, err := Generate(DefaultSize)
		require.NoError(t, err)
		assert.False(t, seen[s], "duplicate secret")
		seen[s] = true
	}
}

func TestGenerateRejectsNonPositive(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := Generate(n)
		assert.Error(t, err)
	}
}
