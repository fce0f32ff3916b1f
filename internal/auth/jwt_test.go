package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avela/taskboard-backend/internal/auth"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")
	userID := uuid.New()

	token, err := tm.GenerateToken(userID, "dev@example.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "dev@example.com", claims.Email)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")

	token, err := tm.GenerateToken(uuid.New(), "", -time.Minute)
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	minted := auth.NewTokenManager("secret-a")
	verifier := auth.NewTokenManager("secret-b")

	token, err := minted.GenerateToken(uuid.New(), "", time.Hour)
	require.NoError(t, err)

	claims, err := verifier.ValidateToken(token)
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")

	claims, err := tm.ValidateToken("not.a.token")
	assert.Nil(t, claims)
	assert.Error(t, err)
}
