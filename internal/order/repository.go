// File: internal/order/repository.go
package order

import (
	"context"
	"errors"
	"fmt"

	"woodcraft_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for order data operations.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	Update(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context, query ListOrdersQuery) ([]Order, *common.Pagination, error)
	ListArticlePaths(ctx context.Context) ([]string, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM order repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, order *Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) Update(ctx context.Context, order *Order) error {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Order{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrOrderNotFound
	}
	return nil
}

func (r *gormRepository) FindAll(ctx context.Context, query ListOrdersQuery) ([]Order, *common.Pagination, error) {
	var orders []Order
	var totalItems int64

	dbQuery := r.db.WithContext(ctx).Model(&Order{})
	if query.Status != "" {
		dbQuery = dbQuery.Where("status = ?", query.Status)
	}

	if err := dbQuery.Count(&totalItems).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count orders: %w", err)
	}

	pagination := common.NewPagination(totalItems, query.Page, query.PageSize)
	err := dbQuery.
		Order("created_at DESC").
		Offset(query.Offset()).
		Limit(query.Limit()).
		Find(&orders).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, pagination, nil
}

// ListArticlePaths returns every stored article path referenced by any order.
func (r *gormRepository) ListArticlePaths(ctx context.Context) ([]string, error) {
	var orders []Order
	if err := r.db.WithContext(ctx).Select("articles").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list order article paths: %w", err)
	}
	var paths []string
	for _, o := range orders {
		paths = append(paths, o.Articles...)
	}
	return paths, nil
}
