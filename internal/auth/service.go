// File: internal/auth/service.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"woodcraft_backend/internal/config"
	"woodcraft_backend/internal/shared"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWTService signs and validates access and refresh tokens. The two classes
// use distinct secrets and carry a token_type claim, so neither can be
// replayed in place of the other.
type JWTService struct {
	cfg    *config.Config
	logger *zap.Logger
}

var _ shared.TokenService = (*JWTService)(nil)

// NewJWTService creates a new JWT service.
func NewJWTService(cfg *config.Config, logger *zap.Logger) *JWTService {
	return &JWTService{cfg: cfg, logger: logger.Named("JWTService")}
}

func (s *JWTService) GenerateAccessToken(userData shared.UserDataForToken) (string, time.Time, error) {
	expirationTime := time.Now().Add(s.cfg.JWTAccessTokenExpiry)

	userEmailStr := ""
	if userData.GetEmail() != nil {
		userEmailStr = *userData.GetEmail()
	}
	fullNameStr := ""
	if userData.GetFullName() != nil {
		fullNameStr = *userData.GetFullName()
	}

	claims := &shared.Claims{
		UserID:          userData.GetID(),
		TokenType:       shared.TokenTypeAccess,
		Email:           userEmailStr,
		Role:            userData.GetRole(),
		FullName:        fullNameStr,
		IsEmailVerified: userData.GetIsEmailVerified(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "woodcraft_backend",
			Subject:   userData.GetID().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWTAccessSecret))
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("could not sign access token: %w", err)
	}
	return tokenString, expirationTime, nil
}

func (s *JWTService) GenerateRefreshToken(userData shared.UserDataForToken) (string, time.Time, error) {
	expirationTime := time.Now().Add(s.cfg.JWTRefreshTokenExpiry)

	claims := &shared.Claims{
		UserID:    userData.GetID(),
		TokenType: shared.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "woodcraft_backend",
			Subject:   userData.GetID().String(),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWTRefreshSecret))
	if err != nil {
		s.logger.Error("Failed to sign refresh token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("could not sign refresh token: %w", err)
	}
	return tokenString, expirationTime, nil
}

// ValidateToken verifies an access token. Refresh tokens are rejected here
// even though they would otherwise parse, because the middleware must never
// authenticate a request on a refresh token.
func (s *JWTService) ValidateToken(tokenString string) (*shared.Claims, error) {
	claims, err := s.parse(tokenString, s.cfg.JWTAccessSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != shared.TokenTypeAccess {
		s.logger.Warn("Token presented as access token has wrong type",
			zap.String("token_type", claims.TokenType))
		return nil, errors.New("token is not an access token")
	}
	return claims, nil
}

// ParseRefreshToken verifies a refresh token.
func (s *JWTService) ParseRefreshToken(refreshTokenString string) (*shared.Claims, error) {
	claims, err := s.parse(refreshTokenString, s.cfg.JWTRefreshSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != shared.TokenTypeRefresh {
		s.logger.Warn("Token presented as refresh token has wrong type",
			zap.String("token_type", claims.TokenType))
		return nil, errors.New("token is not a refresh token")
	}
	return claims, nil
}

func (s *JWTService) parse(tokenString, secret string) (*shared.Claims, error) {
	claims := &shared.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
