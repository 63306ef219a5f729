// File: internal/user/service_test.go
package user

import (
	"context"
	"testing"
	"time"

	"woodcraft_backend/internal/common"
	"woodcraft_backend/internal/config"
	"woodcraft_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of the user.Repository interface.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByProvider(ctx context.Context, authProvider, providerID string) (*User, error) {
	args := m.Called(ctx, authProvider, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

// stubTokenService returns canned token strings. Claim contents are covered by
// the token service's own tests.
type stubTokenService struct{}

func (stubTokenService) GenerateAccessToken(shared.UserDataForToken) (string, time.Time, error) {
	return "stub-access-token", time.Now().Add(time.Hour), nil
}

func (stubTokenService) GenerateRefreshToken(shared.UserDataForToken) (string, time.Time, error) {
	return "stub-refresh-token", time.Now().Add(2 * time.Hour), nil
}

func (stubTokenService) ValidateToken(string) (*shared.Claims, error) {
	panic("not used in these tests")
}

func (stubTokenService) ParseRefreshToken(string) (*shared.Claims, error) {
	panic("not used in these tests")
}

func newTestUserService(repo Repository) *ServiceImplementation {
	return NewService(repo, stubTokenService{}, &config.Config{}, zap.NewNop())
}

func existingDBUser(email, password string) *User {
	hash, err := common.HashPassword(password)
	if err != nil {
		panic(err)
	}
	now := time.Now()
	fullName := "Existing User"
	return &User{
		BaseModel:    common.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Email:        &email,
		PasswordHash: &hash,
		FullName:     &fullName,
		AuthProvider: "email",
		Role:         common.RoleUser,
	}
}

func TestRegister_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newTestUserService(mockRepo)
	ctx := context.Background()

	mockRepo.On("FindByEmail", ctx, "new@example.com").Return(nil, common.ErrNotFound)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(nil)

	usr, tokens, err := svc.Register(ctx, shared.CreateUserRequest{
		Email:    "New@Example.com",
		Password: "strong-password",
		FullName: "New User",
	})

	require.NoError(t, err)
	require.NotNil(t, usr)
	require.NotNil(t, tokens)
	assert.Equal(t, "new@example.com", *usr.Email)
	assert.Equal(t, common.RoleUser, usr.Role)
	assert.Equal(t, "email", usr.AuthProvider)
	assert.False(t, usr.IsEmailVerified)
	assert.Equal(t, "stub-access-token", tokens.AccessToken)
	assert.Equal(t, "stub-refresh-token", tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)

	// The stored row carries a bcrypt hash, never the plaintext password.
	created := mockRepo.Calls[1].Arguments.Get(1).(*User)
	require.NotNil(t, created.PasswordHash)
	assert.NotEqual(t, "strong-password", *created.PasswordHash)
	assert.True(t, common.CheckPasswordHash("strong-password", *created.PasswordHash))
	mockRepo.AssertExpectations(t)
}

func TestRegister_DuplicateEmailLeavesExistingRowUntouched(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newTestUserService(mockRepo)
	ctx := context.Background()

	existing := existingDBUser("taken@example.com", "whatever")
	mockRepo.On("FindByEmail", ctx, "taken@example.com").Return(existing, nil)

	usr, tokens, err := svc.Register(ctx, shared.CreateUserRequest{
		Email:    "taken@example.com",
		Password: "another-password",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUserAlreadyExists)
	assert.Nil(t, usr)
	assert.Nil(t, tokens)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newTestUserService(mockRepo)
	ctx := context.Background()

	existing := existingDBUser("kitchen@example.com", "correct-horse")
	mockRepo.On("FindByEmail", ctx, "kitchen@example.com").Return(existing, nil)
	mockRepo.On("Update", ctx, mock.AnythingOfType("*user.User")).Return(nil)

	usr, tokens, err := svc.Login(ctx, "kitchen@example.com", "correct-horse")

	require.NoError(t, err)
	require.NotNil(t, usr)
	require.NotNil(t, tokens)
	assert.Equal(t, existing.ID, usr.ID)
	assert.NotNil(t, usr.LastLoginAt)
	mockRepo.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		setup    func(m *MockUserRepository)
	}{
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "irrelevant",
			setup: func(m *MockUserRepository) {
				m.On("FindByEmail", ctx, "nobody@example.com").Return(nil, common.ErrNotFound)
			},
		},
		{
			name:     "oauth-only account has no password hash",
			email:    "social@example.com",
			password: "irrelevant",
			setup: func(m *MockUserRepository) {
				usr := existingDBUser("social@example.com", "unused")
				usr.PasswordHash = nil
				usr.AuthProvider = "google"
				m.On("FindByEmail", ctx, "social@example.com").Return(usr, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "kitchen@example.com",
			password: "not-the-password",
			setup: func(m *MockUserRepository) {
				m.On("FindByEmail", ctx, "kitchen@example.com").
					Return(existingDBUser("kitchen@example.com", "correct-horse"), nil)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tc.setup(mockRepo)
			svc := newTestUserService(mockRepo)

			usr, tokens, err := svc.Login(ctx, tc.email, tc.password)

			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidCredentials)
			assert.Nil(t, usr)
			assert.Nil(t, tokens)
			mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestIssueTokens_UnknownUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newTestUserService(mockRepo)
	ctx := context.Background()

	id := uuid.New()
	mockRepo.On("FindByID", ctx, id).Return(nil, common.ErrNotFound)

	tokens, err := svc.IssueTokens(ctx, id)

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Nil(t, tokens)
}
