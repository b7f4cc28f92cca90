package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tok, err := GenerateToken("shio")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tok, "shio_"))
	assert.Greater(t, len(tok), 30)

	other, err := GenerateToken("shio")
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("hunter2")
	require.NoError(t, err)
	assert.NotContains(t, hash, "hunter2")

	assert.True(t, VerifyHash("hunter2", hash))
	assert.False(t, VerifyHash("hunter3", hash))
}

func TestEqualIsExact(t *testing.T) {
	assert.True(t, Equal("abc", "abc"))
	assert.False(t, Equal("abc", "abd"))
	assert.False(t, Equal("abc", "abcd"))
	assert.False(t, Equal("", "a"))
}
