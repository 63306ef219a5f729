// File: internal/order/service.go
package order

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"

	"woodcraft_backend/internal/common"
	"woodcraft_backend/internal/config"
	"woodcraft_backend/internal/filestorage"
	"woodcraft_backend/internal/mail"
	"woodcraft_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const uploadSubDir = "orders"

// Service handles order business logic.
type Service struct {
	repo        Repository
	fileStorage *filestorage.Service
	mailSender  mail.Sender
	userService shared.Service
	cfg         *config.Config
	logger      *zap.Logger
}

// NewService creates a new order service.
func NewService(
	repo Repository,
	fileStorage *filestorage.Service,
	mailSender mail.Sender,
	userService shared.Service,
	cfg *config.Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:        repo,
		fileStorage: fileStorage,
		mailSender:  mailSender,
		userService: userService,
		cfg:         cfg,
		logger:      logger.Named("OrderService"),
	}
}

// CreateOrder validates the upload batch, stores the files, inserts the order
// row and sends a best-effort confirmation email. A rejected batch never
// reaches the database.
func (s *Service) CreateOrder(ctx context.Context, userID uuid.UUID, req CreateOrderRequest, files []*multipart.FileHeader) (*Order, error) {
	installments, err := parseInstallments(req.Installments)
	if err != nil {
		return nil, err
	}

	articles, err := s.fileStorage.SaveAll(files, uploadSubDir, s.cfg.OrderMaxUploadFiles)
	if err != nil {
		return nil, err
	}

	order := &Order{
		UserID:       userID,
		PostID:       req.PostID,
		WoodType:     req.WoodType,
		City:         req.City,
		Address:      req.Address,
		Width:        req.Width,
		Height:       req.Height,
		Depth:        req.Depth,
		Articles:     articles,
		Status:       StatusPending,
		Installments: installments,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		s.fileStorage.DeleteFilesAsync(articles)
		s.logger.Error("Failed to create order", zap.Error(err), zap.String("userID", userID.String()))
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("orderID", order.ID.String()),
		zap.String("userID", userID.String()),
		zap.Int("articles", len(articles)))

	s.sendConfirmationEmail(ctx, order)
	return order, nil
}

// GetOrder returns the order if the requester owns it or is an admin.
// Foreign orders look identical to missing ones.
func (s *Service) GetOrder(ctx context.Context, id, requesterID uuid.UUID, requesterRole string) (*Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(order, requesterID, requesterRole) {
		return nil, common.ErrOrderNotFound
	}
	return order, nil
}

// UpdateOrder applies a partial update. New article files are appended, and
// the cap applies to the resulting list, not just the new batch.
func (s *Service) UpdateOrder(ctx context.Context, id, requesterID uuid.UUID, requesterRole string, req UpdateOrderRequest, newFiles []*multipart.FileHeader) (*Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(order, requesterID, requesterRole) {
		return nil, common.ErrOrderNotFound
	}

	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return nil, common.ErrBadRequest.WithDetails(fmt.Sprintf("Unknown order status %q.", *req.Status))
		}
		order.Status = *req.Status
	}
	if req.WoodType != nil {
		order.WoodType = req.WoodType
	}
	if req.City != nil {
		order.City = req.City
	}
	if req.Address != nil {
		order.Address = req.Address
	}
	if req.Width != nil {
		order.Width = req.Width
	}
	if req.Height != nil {
		order.Height = req.Height
	}
	if req.Depth != nil {
		order.Depth = req.Depth
	}
	if req.Offer != nil {
		order.Offer = req.Offer
	}
	if req.IsValidated != nil {
		order.IsValidated = *req.IsValidated
	}
	if req.Installments != nil {
		installments, err := parseInstallments(*req.Installments)
		if err != nil {
			return nil, err
		}
		order.Installments = installments
	}

	var savedPaths []string
	if len(newFiles) > 0 {
		remaining := s.cfg.OrderMaxUploadFiles - len(order.Articles)
		if remaining < 0 {
			remaining = 0
		}
		savedPaths, err = s.fileStorage.SaveAll(newFiles, uploadSubDir, remaining)
		if err != nil {
			return nil, err
		}
		order.Articles = append(order.Articles, savedPaths...)
	}

	if err := s.repo.Update(ctx, order); err != nil {
		s.fileStorage.DeleteFilesAsync(savedPaths)
		s.logger.Error("Failed to update order", zap.Error(err), zap.String("orderID", id.String()))
		return nil, err
	}

	s.logger.Info("Order updated", zap.String("orderID", id.String()))
	return order, nil
}

// DeleteOrder removes the row, then deletes its article files asynchronously.
func (s *Service) DeleteOrder(ctx context.Context, id, requesterID uuid.UUID, requesterRole string) error {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !canAccess(order, requesterID, requesterRole) {
		return common.ErrOrderNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.fileStorage.DeleteFilesAsync(order.Articles)
	s.logger.Info("Order deleted", zap.String("orderID", id.String()))
	return nil
}

// ListOrders returns a paginated, optionally status-filtered order list.
// Role enforcement happens in the route layer.
func (s *Service) ListOrders(ctx context.Context, query ListOrdersQuery) ([]Order, *common.Pagination, error) {
	if query.Status != "" && !ValidStatus(query.Status) {
		return nil, nil, common.ErrBadRequest.WithDetails(fmt.Sprintf("Unknown order status %q.", query.Status))
	}
	return s.repo.FindAll(ctx, query)
}

func (s *Service) sendConfirmationEmail(ctx context.Context, order *Order) {
	u, err := s.userService.GetUserByID(ctx, order.UserID)
	if err != nil || u.Email == nil {
		s.logger.Warn("Skipping order confirmation email, no recipient",
			zap.String("orderID", order.ID.String()), zap.Error(err))
		return
	}

	to := *u.Email
	orderID := order.ID.String()
	go func() {
		body := fmt.Sprintf("We received your kitchen order (reference %s) and will get back to you with an offer shortly.", orderID)
		if err := s.mailSender.Send(to, "Your order has been received", body); err != nil {
			s.logger.Warn("Order confirmation email failed",
				zap.String("orderID", orderID), zap.Error(err))
		}
	}()
}

func canAccess(order *Order, requesterID uuid.UUID, requesterRole string) bool {
	return order.UserID == requesterID || requesterRole == common.RoleAdmin
}

func parseInstallments(raw string) (InstallmentSchedule, error) {
	if raw == "" {
		return nil, nil
	}
	var schedule InstallmentSchedule
	if err := json.Unmarshal([]byte(raw), &schedule); err != nil {
		return nil, common.ErrBadRequest.WithDetails("Field \"installments\" must be a JSON array of {due_date, amount}.")
	}
	for _, inst := range schedule {
		if inst.Amount < 0 {
			return nil, common.ErrBadRequest.WithDetails("Installment amounts cannot be negative.")
		}
	}
	return schedule, nil
}
