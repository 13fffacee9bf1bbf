package auth

import (
	"testing"
	"time"

	"store-ratings/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("Secret@123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret@123", hash)

	assert.True(t, VerifyPassword("Secret@123", hash))
	assert.False(t, VerifyPassword("secret@123", hash))
	assert.False(t, VerifyPassword("Secret@123", "not-a-bcrypt-hash"))
}

func TestTokensIssueAndVerify(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	user := &models.User{ID: "3f1c1d2e-0000-4000-8000-000000000001", Email: "owner@shop.com", Role: models.RoleStoreOwner}

	tok, err := tokens.Issue(user)
	require.NoError(t, err)

	claims, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, models.RoleStoreOwner, claims.Role)
}

func TestTokensExpired(t *testing.T) {
	tokens := NewTokens("test-secret", time.Minute)
	issuedAt := time.Now().Add(-time.Hour)
	tokens.now = func() time.Time { return issuedAt }

	tok, err := tokens.Issue(&models.User{ID: "u1", Email: "a@b.com", Role: models.RoleUser})
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Verify(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokensInvalid(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	other := NewTokens("other-secret", time.Hour)

	tok, err := other.Issue(&models.User{ID: "u1", Email: "a@b.com", Role: models.RoleUser})
	require.NoError(t, err)

	_, err = tokens.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensRejectUnknownRole(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	tok, err := tokens.Issue(&models.User{ID: "u1", Email: "a@b.com", Role: models.UserRole("root")})
	require.NoError(t, err)

	_, err = tokens.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
