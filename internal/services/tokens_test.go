package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractToken(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"bare token", "  abc123  ", "abc123"},
		{"query string", "https://app.example.com/verify?token=abc123&type=signup", "abc123"},
		{"token_hash key", "https://app.example.com/verify?type=recovery&token_hash=xyz", "xyz"},
		{"fragment", "https://app.example.com/#access_token=frag-1&expires_in=3600", "frag-1"},
		{"hash-routed", "https://app.example.com/#/verify?confirmation_token=hr-9", "hr-9"},
		{"bare query", "code=654321", "654321"},
		{"no known key", "https://app.example.com/verify?foo=bar", ""},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractToken(tc.in))
		})
	}
}

func TestLooksLikeJWT(t *testing.T) {
	assert.True(t, LooksLikeJWT("aaa.bbb.ccc"))
	assert.False(t, LooksLikeJWT("aaa.bbb"))
	assert.False(t, LooksLikeJWT("aaa..ccc"))
	assert.False(t, LooksLikeJWT("123456"))
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := generateCode(6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.Regexp(t, `^\d{6}$`, code)
	}
}

func TestHashTokenIsStable(t *testing.T) {
	assert.Equal(t, hashToken("abc"), hashToken("abc"))
	assert.NotEqual(t, hashToken("abc"), hashToken("abd"))
	assert.Len(t, hashToken("abc"), 64)
}
