// File: internal/user/adapter.go
package user

import (
	"strings"
	"time"

	"woodcraft_backend/internal/common"
	"woodcraft_backend/internal/shared"

	"github.com/google/uuid"
)

// DBToShared converts a GORM User model to a shared.User.
func DBToShared(u *User) *shared.User {
	if u == nil {
		return nil
	}
	return &shared.User{
		ID:              u.ID,
		Email:           u.Email,
		FullName:        u.FullName,
		Role:            u.Role,
		AuthProvider:    u.AuthProvider,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
		LastLoginAt:     u.LastLoginAt,
	}
}

// CreateRequestToDB builds a GORM User from a signup request and a password
// hash. The role is always "user"; elevation happens out of band.
func CreateRequestToDB(req *shared.CreateUserRequest, passwordHash string) *User {
	now := time.Now()
	email := strings.ToLower(strings.TrimSpace(req.Email))
	fullName := strings.TrimSpace(req.FullName)
	u := &User{
		BaseModel: common.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:        &email,
		PasswordHash: &passwordHash,
		AuthProvider: "email",
		Role:         common.RoleUser,
	}
	if fullName != "" {
		u.FullName = &fullName
	}
	return u
}

// ProfileToDB builds a new GORM User from an OAuth profile. OAuth-created
// accounts carry no password and are pre-verified.
func ProfileToDB(profile *shared.OAuthUserProfile) *User {
	now := time.Now()
	providerID := profile.ProviderID
	u := &User{
		BaseModel: common.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		AuthProvider:    profile.Provider,
		ProviderID:      &providerID,
		IsEmailVerified: profile.EmailVerified,
		Role:            common.RoleUser,
		LastLoginAt:     &now,
	}
	if profile.Email != "" {
		email := strings.ToLower(strings.TrimSpace(profile.Email))
		u.Email = &email
	}
	if profile.FullName != "" {
		fullName := profile.FullName
		u.FullName = &fullName
	}
	return u
}
