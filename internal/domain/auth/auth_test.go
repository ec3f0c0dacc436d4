package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/user"
)

func testUser() *user.User {
	return &user.User{
		ID:   "u1",
		Role: user.RoleClient,
		Tier: user.TierWholesale,
	}
}

func TestIssueAndVerify(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"))

	signed, err := tokens.Issue(testUser())
	require.NoError(t, err)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, user.RoleClient, claims.Role)
	assert.Equal(t, user.TierWholesale, claims.Tier)
}

func TestVerify_WrongSecret(t *testing.T) {
	signed, err := NewTokens([]byte("secret-a")).Issue(testUser())
	require.NoError(t, err)

	_, err = NewTokens([]byte("secret-b")).Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	_, err := NewTokens([]byte("test-secret")).Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"))

	issued := time.Now()
	tokens.now = func() time.Time { return issued }
	signed, err := tokens.Issue(testUser())
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(SessionTTL + time.Minute) }
	_, err = tokens.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_StillValidBeforeExpiry(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"))

	issued := time.Now()
	tokens.now = func() time.Time { return issued }
	signed, err := tokens.Issue(testUser())
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(SessionTTL - time.Minute) }
	_, err = tokens.Verify(signed)
	require.NoError(t, err)
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, CheckPassword(hash, "correct horse battery"))
	assert.False(t, CheckPassword(hash, "wrong password"))
}

func TestHashPassword_TooShort(t *testing.T) {
	_, err := HashPassword("short")
	require.ErrorIs(t, err, ErrPasswordTooShort)
}
