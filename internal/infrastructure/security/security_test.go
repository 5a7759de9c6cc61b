package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	token, expires, err := GenerateAdminToken("user-1", "a@b.c", "secret", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := ParseAdminToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
}

func TestParseAdminTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := GenerateAdminToken("user-1", "a@b.c", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseAdminToken(token, "other")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAdminTokenRejectsExpired(t *testing.T) {
	token, _, err := GenerateAdminToken("user-1", "a@b.c", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseAdminToken(token, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateAdminTokenRequiresSecret(t *testing.T) {
	_, _, err := GenerateAdminToken("user-1", "a@b.c", "", time.Hour)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	ok, err := CheckPassword(hash, "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("not-a-hash", "x")
	assert.Error(t, err)
}

func TestGenerators(t *testing.T) {
	a, b := GenerateULID(), GenerateULID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)

	tok, err := GenerateSecureToken(24)
	require.NoError(t, err)
	assert.Len(t, tok, 32)

	key, err := GenerateSecureKey(64)
	require.NoError(t, err)
	assert.Len(t, key, 64)

	_, err = GenerateSecureKey(7)
	assert.Error(t, err)
}
