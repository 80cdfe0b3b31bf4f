// internal/pkg/auth/token_test.go
package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenWithExp(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()})
	s, err := token.SignedString([]byte("irrelevant"))
	require.NoError(t, err)
	return s
}

func TestTokenExpiryReadsClaimWithoutVerification(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	got, err := TokenExpiry(tokenWithExp(t, exp))

	require.NoError(t, err)
	assert.True(t, got.Equal(exp))
}

func TestIsTokenExpired(t *testing.T) {
	now := time.Now()

	assert.False(t, IsTokenExpired(tokenWithExp(t, now.Add(time.Hour)), now))
	assert.True(t, IsTokenExpired(tokenWithExp(t, now.Add(-time.Hour)), now))
	assert.True(t, IsTokenExpired("not-a-jwt", now))
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := ExtractTokenFromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractTokenFromHeader("")
	assert.Error(t, err)

	_, err = ExtractTokenFromHeader("Basic abc")
	assert.Error(t, err)
}
