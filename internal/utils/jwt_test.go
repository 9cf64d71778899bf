package utils

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/model"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("k", 42, model.RoleHotelAdmin, 5)
	require.NoError(t, err)

	p, err := ParseAccessToken("k", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, model.Principal{UserID: 42, Role: model.RoleHotelAdmin}, p)

	_, err = ParseAccessToken("other", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenRejects(t *testing.T) {
	expired, err := NewAccessToken("k", 1, model.RoleClient, -1)
	require.NoError(t, err)
	_, err = ParseAccessToken("k", expired.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unknownRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "role": "owner"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = ParseAccessToken("k", unknownRole)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "client"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = ParseAccessToken("k", noSub)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseAccessToken("k", "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokens(t *testing.T) {
	a, err := NewRefreshToken(7)
	require.NoError(t, err)
	b, err := NewRefreshToken(7)
	require.NoError(t, err)

	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.Equal(t, HashRefreshRaw(a.Raw), HashRefreshRaw(a.Raw))
	assert.Len(t, HashRefreshRaw(a.Raw), 64)
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("pw", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(h, "pw"))
	assert.False(t, VerifyPassword(h, "nope"))
}

func TestResetTokenHashing(t *testing.T) {
	raw, err := NewResetToken()
	require.NoError(t, err)
	assert.Len(t, raw, 64)

	other, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, other)

	assert.Len(t, HashToken(raw), 64)
	assert.Equal(t, HashToken(raw), HashRefreshRaw(raw))
	assert.NotEqual(t, raw, HashToken(raw))
}

func TestPasswordLengthOK(t *testing.T) {
	assert.False(t, PasswordLengthOK("12345"))
	assert.True(t, PasswordLengthOK("123456"))
	assert.True(t, PasswordLengthOK(strings.Repeat("a", 68)))
	assert.False(t, PasswordLengthOK(strings.Repeat("a", 69)))
	// 30 runes but 90 bytes exceeds what bcrypt hashes
	assert.False(t, PasswordLengthOK(strings.Repeat("€", 30)))
}

func TestHashPasswordFallsBackToDefaultCost(t *testing.T) {
	hash, err := HashPassword("secret", 0)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "secret"))
	assert.False(t, VerifyPassword(hash, "Secret"))
}
