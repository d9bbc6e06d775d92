package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9', "code %q contains non-digit", code)
		}
	}
}

func TestGenerateFallbackToken(t *testing.T) {
	token, err := GenerateFallbackToken()
	require.NoError(t, err)
	assert.Len(t, token, 8)
	for _, c := range token {
		assert.Contains(t, fallbackAlphabet, string(c))
	}
}

func TestDigest(t *testing.T) {
	t.Run("deterministic for same code and secret", func(t *testing.T) {
		assert.Equal(t, Digest("123456", "secret"), Digest("123456", "secret"))
	})

	t.Run("differs across codes", func(t *testing.T) {
		assert.NotEqual(t, Digest("123456", "secret"), Digest("123457", "secret"))
	})

	t.Run("differs across secrets", func(t *testing.T) {
		assert.NotEqual(t, Digest("123456", "secret-a"), Digest("123456", "secret-b"))
	})

	t.Run("fixed length hex", func(t *testing.T) {
		assert.Len(t, Digest("1", "secret"), 64)
	})
}

func TestEqual(t *testing.T) {
	d := Digest("654321", "secret")
	assert.True(t, Equal(d, Digest("654321", "secret")))
	assert.False(t, Equal(d, Digest("123456", "secret")))
}
