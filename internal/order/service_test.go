// File: internal/order/service_test.go
package order

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"woodcraft_backend/internal/common"
	"woodcraft_backend/internal/config"
	"woodcraft_backend/internal/filestorage"
	"woodcraft_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockOrderRepository is a mock type for order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, query ListOrdersQuery) ([]Order, *common.Pagination, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]Order), args.Get(1).(*common.Pagination), args.Error(2)
}

func (m *MockOrderRepository) ListArticlePaths(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// stubUserService satisfies shared.Service for tests that only need GetUserByID.
type stubUserService struct {
	user *shared.User
	err  error
}

func (s *stubUserService) Register(context.Context, shared.CreateUserRequest) (*shared.User, *shared.TokenResponse, error) {
	panic("not used")
}

func (s *stubUserService) Login(context.Context, string, string) (*shared.User, *shared.TokenResponse, error) {
	panic("not used")
}

func (s *stubUserService) GetUserByID(context.Context, uuid.UUID) (*shared.User, error) {
	return s.user, s.err
}

func (s *stubUserService) GetUserByEmail(context.Context, string) (*shared.User, error) {
	panic("not used")
}

func (s *stubUserService) FindOrCreateOrLinkOAuthUser(context.Context, shared.OAuthUserProfile) (*shared.User, bool, error) {
	panic("not used")
}

func (s *stubUserService) IssueTokens(context.Context, uuid.UUID) (*shared.TokenResponse, error) {
	panic("not used")
}

type noopMailSender struct{}

func (noopMailSender) Send(string, string, string) error { return nil }
func (noopMailSender) Ping(ctx context.Context) error    { return nil }

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	fs, err := filestorage.NewService(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	email := "customer@example.com"
	cfg := &config.Config{OrderMaxUploadFiles: 10}
	return NewService(repo, fs, noopMailSender{}, &stubUserService{user: &shared.User{Email: &email}}, cfg, zap.NewNop())
}

func newTestFileHeader(t *testing.T, filename, contentType string) *multipart.FileHeader {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="articles"; filename="%s"`, filename))
	partHeader.Set("Content-Type", contentType)

	part, err := writer.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader("content"))
	require.NoError(t, err)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	require.NotEmpty(t, form.File["articles"])
	return form.File["articles"][0]
}

func TestCreateOrder_RejectsTooManyFilesBeforeInsert(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := newTestService(t, mockRepo)

	var files []*multipart.FileHeader
	for i := 0; i < 11; i++ {
		files = append(files, newTestFileHeader(t, fmt.Sprintf("f%d.jpg", i), "image/jpeg"))
	}

	_, err := svc.CreateOrder(context.Background(), uuid.New(), CreateOrderRequest{}, files)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrMaxImages.Code, apiErr.Code)

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrder_RejectsBadMIMEBeforeInsert(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := newTestService(t, mockRepo)

	files := []*multipart.FileHeader{newTestFileHeader(t, "doc.pdf", "application/pdf")}

	_, err := svc.CreateOrder(context.Background(), uuid.New(), CreateOrderRequest{}, files)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrUnsupportedMediaType.Code, apiErr.Code)

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrder_Success(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := newTestService(t, mockRepo)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

	wood := "oak"
	req := CreateOrderRequest{
		WoodType:     &wood,
		Installments: `[{"due_date":"2026-10-01T00:00:00Z","amount":500}]`,
	}
	files := []*multipart.FileHeader{newTestFileHeader(t, "kitchen.jpg", "image/jpeg")}

	userID := uuid.New()
	order, err := svc.CreateOrder(context.Background(), userID, req, files)
	require.NoError(t, err)

	assert.Equal(t, userID, order.UserID)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, &wood, order.WoodType)
	require.Len(t, order.Articles, 1)
	require.Len(t, order.Installments, 1)
	assert.Equal(t, 500.0, order.Installments[0].Amount)
	mockRepo.AssertExpectations(t)
}

func TestCreateOrder_RejectsMalformedInstallments(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := newTestService(t, mockRepo)

	req := CreateOrderRequest{Installments: `{"not":"an array"}`}
	_, err := svc.CreateOrder(context.Background(), uuid.New(), req, nil)
	require.Error(t, err)

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetOrder_HidesForeignOrders(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := newTestService(t, mockRepo)

	ownerID := uuid.New()
	orderID := uuid.New()
	stored := &Order{UserID: ownerID}
	stored.ID = orderID
	mockRepo.On("FindByID", mock.Anything, orderID).Return(stored, nil)

	// A different non-admin user sees a 404, not a 403.
	_, err := svc.GetOrder(context.Background(), orderID, uuid.New(), common.RoleUser)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrOrderNotFound.Code, apiErr.Code)

	// The owner can read it.
	got, err := svc.GetOrder(context.Background(), orderID, ownerID, common.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, orderID, got.ID)

	// So can an admin.
	got, err = svc.GetOrder(context.Background(), orderID, uuid.New(), common.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, orderID, got.ID)
}

func TestUpdateOrder_CapAppliesToResultingList(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := newTestService(t, mockRepo)

	ownerID := uuid.New()
	orderID := uuid.New()
	stored := &Order{UserID: ownerID, Status: StatusPending}
	stored.ID = orderID
	for i := 0; i < 9; i++ {
		stored.Articles = append(stored.Articles, fmt.Sprintf("orders/existing-%d.jpg", i))
	}
	mockRepo.On("FindByID", mock.Anything, orderID).Return(stored, nil)

	// 9 existing + 2 new would exceed the cap of 10.
	files := []*multipart.FileHeader{
		newTestFileHeader(t, "a.jpg", "image/jpeg"),
		newTestFileHeader(t, "b.jpg", "image/jpeg"),
	}
	_, err := svc.UpdateOrder(context.Background(), orderID, ownerID, common.RoleUser, UpdateOrderRequest{}, files)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrMaxImages.Code, apiErr.Code)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateOrder_PartialUpdate(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := newTestService(t, mockRepo)

	ownerID := uuid.New()
	orderID := uuid.New()
	city := "Casablanca"
	stored := &Order{UserID: ownerID, Status: StatusPending, City: &city}
	stored.ID = orderID
	mockRepo.On("FindByID", mock.Anything, orderID).Return(stored, nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

	status := StatusOffered
	offer := 12500.0
	updated, err := svc.UpdateOrder(context.Background(), orderID, uuid.New(), common.RoleAdmin,
		UpdateOrderRequest{Status: &status, Offer: &offer}, nil)
	require.NoError(t, err)

	assert.Equal(t, StatusOffered, updated.Status)
	assert.Equal(t, &offer, updated.Offer)
	// Untouched fields survive.
	assert.Equal(t, &city, updated.City)
	mockRepo.AssertExpectations(t)
}

func TestUpdateOrder_RejectsUnknownStatus(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := newTestService(t, mockRepo)

	ownerID := uuid.New()
	orderID := uuid.New()
	stored := &Order{UserID: ownerID, Status: StatusPending}
	stored.ID = orderID
	mockRepo.On("FindByID", mock.Anything, orderID).Return(stored, nil)

	bad := "shipped"
	_, err := svc.UpdateOrder(context.Background(), orderID, ownerID, common.RoleUser,
		UpdateOrderRequest{Status: &bad}, nil)
	require.Error(t, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteOrder_OwnerOnly(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := newTestService(t, mockRepo)

	ownerID := uuid.New()
	orderID := uuid.New()
	stored := &Order{UserID: ownerID, Articles: []string{"orders/a.jpg"}}
	stored.ID = orderID
	mockRepo.On("FindByID", mock.Anything, orderID).Return(stored, nil)
	mockRepo.On("Delete", mock.Anything, orderID).Return(nil)

	err := svc.DeleteOrder(context.Background(), orderID, uuid.New(), common.RoleUser)
	require.Error(t, err)

	err = svc.DeleteOrder(context.Background(), orderID, ownerID, common.RoleUser)
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestInstallmentScheduleRoundTrip(t *testing.T) {
	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	schedule := InstallmentSchedule{
		{DueDate: due, Amount: 500},
		{DueDate: due.AddDate(0, 1, 0), Amount: 750.50},
	}

	value, err := schedule.Value()
	require.NoError(t, err)

	var decoded InstallmentSchedule
	require.NoError(t, decoded.Scan(value))

	require.Len(t, decoded, 2)
	assert.True(t, decoded[0].DueDate.Equal(due))
	assert.Equal(t, 500.0, decoded[0].Amount)
	assert.Equal(t, 750.50, decoded[1].Amount)

	// Ordering is preserved.
	assert.True(t, decoded[0].DueDate.Before(decoded[1].DueDate))
}

func TestInstallmentScheduleScanNil(t *testing.T) {
	var decoded InstallmentSchedule
	require.NoError(t, decoded.Scan(nil))
	assert.Nil(t, decoded)
}
