package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	raw, digest, err := New()
	require.NoError(t, err)

	// 32 bytes hex-encoded
	assert.Len(t, raw, 64)
	assert.Len(t, digest, 64)
	assert.NotEqual(t, raw, digest, "digest must not equal the raw token")

	// The digest must be reproducible from the raw token
	assert.Equal(t, digest, Hash(raw))
}

func TestNew_Unique(t *testing.T) {
	t.Parallel()

	raw1, _, err := New()
	require.NoError(t, err)
	raw2, _, err := New()
	require.NoError(t, err)

	assert.NotEqual(t, raw1, raw2, "two generated tokens must differ")
}

func TestHash_Deterministic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Hash("abc"), Hash("abc"))
	assert.NotEqual(t, Hash("abc"), Hash("abd"))
}
