// File: internal/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"woodcraft_backend/internal/common"
	"woodcraft_backend/internal/config"
	"woodcraft_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServiceImplementation implements the shared.Service interface.
type ServiceImplementation struct {
	repo         Repository
	tokenService shared.TokenService
	cfg          *config.Config
	logger       *zap.Logger
}

var _ shared.Service = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(
	repo Repository,
	tokenService shared.TokenService,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:         repo,
		tokenService: tokenService,
		cfg:          cfg,
		logger:       logger,
	}
}

// Register creates a new user with a bcrypt-hashed password and issues tokens.
func (s *ServiceImplementation) Register(ctx context.Context, req shared.CreateUserRequest) (*shared.User, *shared.TokenResponse, error) {
	// Check if user already exists by email.
	_, err := s.repo.FindByEmail(ctx, req.Email)
	if err == nil {
		// User found, this email is already registered. The existing row is
		// not touched.
		return nil, nil, common.ErrUserAlreadyExists
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check existing user by email: %w", err)
	}

	hashedPassword, err := common.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	dbUser := CreateRequestToDB(&req, hashedPassword)

	if err := s.repo.Create(ctx, dbUser); err != nil {
		s.logger.Error("Failed to create user in repository", zap.Error(err), zap.String("email", req.Email))
		if apiErr, ok := common.IsAPIError(err); ok {
			return nil, nil, apiErr
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokenResponse, err := s.generateTokenPair(dbUser)
	if err != nil {
		s.logger.Error("Failed to generate tokens after registration", zap.Error(err), zap.String("userID", dbUser.ID.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not generate tokens.")
	}

	sharedUser := DBToShared(dbUser)
	s.logger.Info("User registered successfully", zap.String("userID", sharedUser.ID.String()))
	return sharedUser, tokenResponse, nil
}

// Login verifies email/password credentials and issues tokens. Unknown email,
// missing password hash (OAuth-only account) and hash mismatch are
// indistinguishable to the caller.
func (s *ServiceImplementation) Login(ctx context.Context, email, password string) (*shared.User, *shared.TokenResponse, error) {
	dbUser, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info("User not found during login", zap.String("email", email))
			return nil, nil, common.ErrInvalidCredentials
		}
		s.logger.Error("Error finding user by email during login", zap.Error(err), zap.String("email", email))
		return nil, nil, common.ErrInternalServer.WithDetails("Login failed due to an internal error.")
	}

	if dbUser.PasswordHash == nil || *dbUser.PasswordHash == "" {
		s.logger.Warn("Password login attempted for account with no password hash",
			zap.String("userID", dbUser.ID.String()), zap.String("provider", dbUser.AuthProvider))
		return nil, nil, common.ErrInvalidCredentials
	}

	if !common.CheckPasswordHash(password, *dbUser.PasswordHash) {
		s.logger.Warn("Invalid password attempt", zap.String("userID", dbUser.ID.String()))
		return nil, nil, common.ErrInvalidCredentials
	}

	now := time.Now()
	dbUser.LastLoginAt = &now
	if err := s.repo.Update(ctx, dbUser); err != nil {
		// Not critical for auth, proceed with login.
		s.logger.Error("Failed to update last login time", zap.Error(err), zap.String("userID", dbUser.ID.String()))
	}

	tokenResponse, err := s.generateTokenPair(dbUser)
	if err != nil {
		s.logger.Error("Failed to generate tokens on login", zap.Error(err), zap.String("userID", dbUser.ID.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not generate tokens.")
	}

	sharedUser := DBToShared(dbUser)
	s.logger.Info("User logged in successfully", zap.String("userID", sharedUser.ID.String()))
	return sharedUser, tokenResponse, nil
}

func (s *ServiceImplementation) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return DBToShared(dbUser), nil
}

func (s *ServiceImplementation) GetUserByEmail(ctx context.Context, email string) (*shared.User, error) {
	dbUser, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return DBToShared(dbUser), nil
}

// IssueTokens generates a fresh token pair for an existing user. Used by the
// refresh flow.
func (s *ServiceImplementation) IssueTokens(ctx context.Context, userID uuid.UUID) (*shared.TokenResponse, error) {
	dbUser, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.generateTokenPair(dbUser)
}

// FindOrCreateOrLinkOAuthUser resolves an OAuth profile to a local user.
// Lookup order: provider+provider-id, then verified email (back-filling the
// provider linkage), then a fresh pre-verified account. Calling it twice with
// the same profile email never creates a second row.
func (s *ServiceImplementation) FindOrCreateOrLinkOAuthUser(ctx context.Context, profile shared.OAuthUserProfile) (*shared.User, bool, error) {
	s.logger.Info("Processing OAuth user profile",
		zap.String("provider", profile.Provider),
		zap.String("providerID", profile.ProviderID),
		zap.String("email", profile.Email),
	)

	dbUser, err := s.repo.FindByProvider(ctx, profile.Provider, profile.ProviderID)
	if err == nil && dbUser != nil {
		now := time.Now()
		dbUser.LastLoginAt = &now
		if profile.FullName != "" {
			fullName := profile.FullName
			dbUser.FullName = &fullName
		}
		if profile.EmailVerified {
			dbUser.IsEmailVerified = true
		}
		if err := s.repo.Update(ctx, dbUser); err != nil {
			s.logger.Error("Failed to update existing OAuth user profile", zap.Error(err), zap.String("userID", dbUser.ID.String()))
			return nil, false, common.ErrInternalServer.WithDetails("Could not update user profile.")
		}
		return DBToShared(dbUser), false, nil
	}
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		s.logger.Error("Error finding user by provider ID", zap.Error(err),
			zap.String("provider", profile.Provider), zap.String("providerID", profile.ProviderID))
		return nil, false, err
	}

	// Not found by provider ID; try to link by email.
	if profile.Email != "" {
		emailLower := strings.ToLower(strings.TrimSpace(profile.Email))
		dbUserByEmail, emailErr := s.repo.FindByEmail(ctx, emailLower)

		if emailErr == nil && dbUserByEmail != nil {
			if dbUserByEmail.AuthProvider != "email" && dbUserByEmail.AuthProvider != profile.Provider {
				s.logger.Warn("User found by email but already linked to a different OAuth provider",
					zap.String("userID", dbUserByEmail.ID.String()),
					zap.String("existingProvider", dbUserByEmail.AuthProvider),
					zap.String("newProvider", profile.Provider))
				return nil, false, common.ErrConflict.WithDetails(
					fmt.Sprintf("This email is already associated with an account using %s.", dbUserByEmail.AuthProvider))
			}

			// Back-fill the provider linkage on the existing account.
			s.logger.Info("Linking OAuth identity to existing user",
				zap.String("userID", dbUserByEmail.ID.String()), zap.String("provider", profile.Provider))
			providerID := profile.ProviderID
			dbUserByEmail.AuthProvider = profile.Provider
			dbUserByEmail.ProviderID = &providerID
			if profile.EmailVerified {
				dbUserByEmail.IsEmailVerified = true
			}
			now := time.Now()
			dbUserByEmail.LastLoginAt = &now

			if err := s.repo.Update(ctx, dbUserByEmail); err != nil {
				s.logger.Error("Failed to link OAuth account to existing user", zap.Error(err), zap.String("userID", dbUserByEmail.ID.String()))
				return nil, false, common.ErrInternalServer.WithDetails("Could not link OAuth account.")
			}
			return DBToShared(dbUserByEmail), false, nil
		}
		if emailErr != nil && !errors.Is(emailErr, common.ErrNotFound) {
			s.logger.Error("Error finding user by email for OAuth linking", zap.Error(emailErr), zap.String("email", profile.Email))
			return nil, false, emailErr
		}
	}

	// Create a new pre-verified account with no local password.
	s.logger.Info("Creating new user from OAuth profile",
		zap.String("provider", profile.Provider), zap.String("email", profile.Email))

	dbNewUser := ProfileToDB(&profile)
	if err := s.repo.Create(ctx, dbNewUser); err != nil {
		s.logger.Error("Failed to create new OAuth user in repository", zap.Error(err), zap.String("email", profile.Email))
		if apiErr, ok := common.IsAPIError(err); ok {
			return nil, false, apiErr
		}
		return nil, false, common.ErrInternalServer.WithDetails("Could not create new user account.")
	}

	s.logger.Info("New OAuth user created successfully", zap.String("userID", dbNewUser.ID.String()))
	return DBToShared(dbNewUser), true, nil
}

func (s *ServiceImplementation) generateTokenPair(dbUser *User) (*shared.TokenResponse, error) {
	accessToken, accessExpiresAt, err := s.tokenService.GenerateAccessToken(dbUser)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, _, err := s.tokenService.GenerateRefreshToken(dbUser)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &shared.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    accessExpiresAt,
	}, nil
}
