// File: internal/auth/service_test.go
package auth

import (
	"testing"
	"time"

	"woodcraft_backend/internal/config"
	"woodcraft_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type tokenUserStub struct {
	id       uuid.UUID
	email    string
	role     string
	fullName string
	verified bool
}

func (u *tokenUserStub) GetID() uuid.UUID         { return u.id }
func (u *tokenUserStub) GetEmail() *string        { return &u.email }
func (u *tokenUserStub) GetRole() string          { return u.role }
func (u *tokenUserStub) GetFullName() *string     { return &u.fullName }
func (u *tokenUserStub) GetIsEmailVerified() bool { return u.verified }

func newTestTokenService(t *testing.T) *JWTService {
	t.Helper()
	cfg := &config.Config{
		JWTAccessSecret:       "test-access-secret",
		JWTRefreshSecret:      "test-refresh-secret",
		JWTAccessTokenExpiry:  4 * 24 * time.Hour,
		JWTRefreshTokenExpiry: 7 * 24 * time.Hour,
	}
	return NewJWTService(cfg, zap.NewNop())
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t)
	u := &tokenUserStub{
		id:       uuid.New(),
		email:    "carpenter@example.com",
		role:     "user",
		fullName: "Ada Carpenter",
		verified: true,
	}

	tokenStr, expiresAt, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)
	assert.WithinDuration(t, time.Now().Add(4*24*time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, u.id, claims.UserID)
	assert.Equal(t, shared.TokenTypeAccess, claims.TokenType)
	assert.Equal(t, u.email, claims.Email)
	assert.Equal(t, u.role, claims.Role)
	assert.Equal(t, u.fullName, claims.FullName)
	assert.True(t, claims.IsEmailVerified)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t)
	u := &tokenUserStub{id: uuid.New(), email: "carpenter@example.com", role: "user"}

	tokenStr, expiresAt, err := svc.GenerateRefreshToken(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)

	claims, err := svc.ParseRefreshToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, u.id, claims.UserID)
	assert.Equal(t, shared.TokenTypeRefresh, claims.TokenType)
}

func TestValidateTokenRejectsRefreshToken(t *testing.T) {
	svc := newTestTokenService(t)
	u := &tokenUserStub{id: uuid.New(), role: "user"}

	refreshStr, _, err := svc.GenerateRefreshToken(u)
	require.NoError(t, err)

	// Signed with a different secret, so it fails before the type check even runs.
	_, err = svc.ValidateToken(refreshStr)
	assert.Error(t, err)
}

func TestParseRefreshTokenRejectsAccessToken(t *testing.T) {
	svc := newTestTokenService(t)
	u := &tokenUserStub{id: uuid.New(), role: "user"}

	accessStr, _, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)

	_, err = svc.ParseRefreshToken(accessStr)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestTokenService(t)

	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
