// File: internal/user/service_db_test.go
package user

import (
	"context"
	"testing"

	"woodcraft_backend/internal/common"
	"woodcraft_backend/internal/config"
	"woodcraft_backend/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newUserTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}))
	t.Cleanup(func() {
		db.Exec("DELETE FROM users")
	})
	return db
}

func countUsers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&User{}).Count(&count).Error)
	return count
}

func TestFindOrCreateOrLinkOAuthUser_Idempotent(t *testing.T) {
	db := newUserTestDB(t)
	repo := NewGORMRepository(db)
	svc := NewService(repo, stubTokenService{}, &config.Config{}, zap.NewNop())
	ctx := context.Background()

	profile := shared.OAuthUserProfile{
		Provider:      "google",
		ProviderID:    "google-sub-123",
		Email:         "Carpenter@Example.com",
		FullName:      "Cabinet Carpenter",
		EmailVerified: true,
	}

	usr, wasCreated, err := svc.FindOrCreateOrLinkOAuthUser(ctx, profile)
	require.NoError(t, err)
	assert.True(t, wasCreated)
	require.NotNil(t, usr.Email)
	assert.Equal(t, "carpenter@example.com", *usr.Email)
	assert.True(t, usr.IsEmailVerified)
	assert.Equal(t, int64(1), countUsers(t, db))

	// A second callback with the same profile resolves to the same row.
	again, wasCreated, err := svc.FindOrCreateOrLinkOAuthUser(ctx, profile)
	require.NoError(t, err)
	assert.False(t, wasCreated)
	assert.Equal(t, usr.ID, again.ID)
	assert.Equal(t, int64(1), countUsers(t, db))
}

func TestFindOrCreateOrLinkOAuthUser_LinksExistingEmailAccount(t *testing.T) {
	db := newUserTestDB(t)
	repo := NewGORMRepository(db)
	svc := NewService(repo, stubTokenService{}, &config.Config{}, zap.NewNop())
	ctx := context.Background()

	// Seed an account created through password signup.
	_, _, err := svc.Register(ctx, shared.CreateUserRequest{
		Email:    "joiner@example.com",
		Password: "hand-cut-dovetails",
		FullName: "Journeyman Joiner",
	})
	require.NoError(t, err)

	usr, wasCreated, err := svc.FindOrCreateOrLinkOAuthUser(ctx, shared.OAuthUserProfile{
		Provider:      "google",
		ProviderID:    "google-sub-456",
		Email:         "joiner@example.com",
		FullName:      "Journeyman Joiner",
		EmailVerified: true,
	})
	require.NoError(t, err)
	assert.False(t, wasCreated)
	assert.Equal(t, "google", usr.AuthProvider)
	assert.True(t, usr.IsEmailVerified)
	assert.Equal(t, int64(1), countUsers(t, db))

	// The back-filled linkage makes future provider lookups hit directly.
	linked, err := repo.FindByProvider(ctx, "google", "google-sub-456")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, linked.ID)

	// The local password still works after linking.
	_, _, err = svc.Login(ctx, "joiner@example.com", "hand-cut-dovetails")
	assert.NoError(t, err)
}

func TestFindOrCreateOrLinkOAuthUser_RejectsCrossProviderEmail(t *testing.T) {
	db := newUserTestDB(t)
	repo := NewGORMRepository(db)
	svc := NewService(repo, stubTokenService{}, &config.Config{}, zap.NewNop())
	ctx := context.Background()

	_, wasCreated, err := svc.FindOrCreateOrLinkOAuthUser(ctx, shared.OAuthUserProfile{
		Provider:      "facebook",
		ProviderID:    "fb-789",
		Email:         "maker@example.com",
		EmailVerified: true,
	})
	require.NoError(t, err)
	require.True(t, wasCreated)

	// The same email arriving from a different provider is a conflict, not a
	// silent re-link.
	_, _, err = svc.FindOrCreateOrLinkOAuthUser(ctx, shared.OAuthUserProfile{
		Provider:      "google",
		ProviderID:    "google-sub-999",
		Email:         "maker@example.com",
		EmailVerified: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, int64(1), countUsers(t, db))
}
