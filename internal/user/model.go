// File: internal/user/model.go
package user

import (
	"time"

	"woodcraft_backend/internal/common"

	"github.com/google/uuid"
)

// User represents the user model in the database.
type User struct {
	common.BaseModel         // Embeds ID, CreatedAt, UpdatedAt
	Email            *string `gorm:"type:varchar(255);uniqueIndex"` // Pointer to allow NULL
	PasswordHash     *string `gorm:"type:varchar(255)"`             // NULL for OAuth-only accounts
	FullName         *string `gorm:"type:varchar(150)"`
	AuthProvider     string  `gorm:"type:varchar(50);not null;default:'email'"`
	ProviderID       *string `gorm:"type:varchar(255);index:idx_auth_provider_provider_id,unique"`
	IsEmailVerified  bool    `gorm:"not null;default:false"`
	Role             string  `gorm:"type:varchar(50);not null;default:'user'"`
	LastLoginAt      *time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Sanitize removes sensitive information like the password hash.
func (u *User) Sanitize() {
	u.PasswordHash = nil
}

func (u *User) GetID() uuid.UUID {
	return u.ID
}

func (u *User) GetEmail() *string {
	return u.Email
}

func (u *User) GetRole() string {
	return u.Role
}

func (u *User) GetFullName() *string {
	return u.FullName
}

func (u *User) GetIsEmailVerified() bool {
	return u.IsEmailVerified
}
