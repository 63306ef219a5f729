// File: internal/shared/core.go
package shared

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token classes. The token_type claim distinguishes them so a refresh token
// can never be accepted where an access token is required.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// User represents a user outside the persistence layer. Password material
// never appears here.
type User struct {
	ID              uuid.UUID  `json:"id"`
	Email           *string    `json:"email,omitempty"`
	FullName        *string    `json:"full_name,omitempty"`
	Role            string     `json:"role"`
	AuthProvider    string     `json:"auth_provider"`
	IsEmailVerified bool       `json:"is_email_verified"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
}

// CreateUserRequest represents a request to create a new user.
type CreateUserRequest struct {
	Email    string
	Password string
	FullName string
}

// TokenResponse represents the response containing JWT tokens.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
}

// OAuthUserProfile holds normalized profile data from OAuth providers.
type OAuthUserProfile struct {
	Provider      string
	ProviderID    string
	Email         string
	FullName      string
	EmailVerified bool
}

// UserDataForToken abstracts the user data needed for token generation.
type UserDataForToken interface {
	GetID() uuid.UUID
	GetEmail() *string
	GetRole() string
	GetFullName() *string
	GetIsEmailVerified() bool
}

// TokenService defines the interface for JWT operations.
type TokenService interface {
	GenerateAccessToken(userData UserDataForToken) (string, time.Time, error)
	GenerateRefreshToken(userData UserDataForToken) (string, time.Time, error)
	// ValidateToken verifies an access token's signature, expiry and class.
	ValidateToken(tokenString string) (*Claims, error)
	// ParseRefreshToken does the same for refresh tokens.
	ParseRefreshToken(refreshTokenString string) (*Claims, error)
}

// Claims represents the JWT claims structure.
type Claims struct {
	UserID          uuid.UUID `json:"user_id"`
	TokenType       string    `json:"token_type"`
	Email           string    `json:"email,omitempty"`
	Role            string    `json:"role,omitempty"`
	FullName        string    `json:"full_name,omitempty"`
	IsEmailVerified bool      `json:"is_email_verified,omitempty"`
	jwt.RegisteredClaims
}

// Service defines the user-facing auth business logic implemented by the user
// package and consumed by the auth handlers.
type Service interface {
	Register(ctx context.Context, req CreateUserRequest) (*User, *TokenResponse, error)
	Login(ctx context.Context, email, password string) (*User, *TokenResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	FindOrCreateOrLinkOAuthUser(ctx context.Context, profile OAuthUserProfile) (usr *User, wasCreated bool, err error)
	IssueTokens(ctx context.Context, userID uuid.UUID) (*TokenResponse, error)
}
