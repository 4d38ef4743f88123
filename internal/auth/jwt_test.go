package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestSignAndParse(t *testing.T) {
	tok, err := SignToken(secret, 42, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := SignToken(secret, 1, -time.Minute)
	require.NoError(t, err)
	other, err := SignToken([]byte("other"), 1, time.Hour)
	require.NoError(t, err)
	anon, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString(secret)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired":   expired,
		"wrong key": other,
		"no user":   anon,
		"alg none":  none,
		"garbage":   "not.a.token",
		"empty":     "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(secret, tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = SignToken(nil, 1, time.Hour)
	assert.Error(t, err)
}

func TestPasswords(t *testing.T) {
	h, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", h)
	assert.True(t, CheckPassword(h, "s3cret!"))
	assert.False(t, CheckPassword(h, "wrong"))
}
