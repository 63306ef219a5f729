// File: internal/post/repository.go
package post

import (
	"context"
	"errors"
	"fmt"

	"woodcraft_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for post data operations.
type Repository interface {
	Create(ctx context.Context, post *Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*Post, error)
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context, query ListPostsQuery) ([]Post, *common.Pagination, error)
	ListImagePaths(ctx context.Context) ([]string, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM post repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, post *Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	var post Post
	err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *gormRepository) Update(ctx context.Context, post *Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Post{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrPostNotFound
	}
	return nil
}

func (r *gormRepository) FindAll(ctx context.Context, query ListPostsQuery) ([]Post, *common.Pagination, error) {
	var posts []Post
	var totalItems int64

	dbQuery := r.db.WithContext(ctx).Model(&Post{})
	if err := dbQuery.Count(&totalItems).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count posts: %w", err)
	}

	pagination := common.NewPagination(totalItems, query.Page, query.PageSize)
	err := dbQuery.
		Order("created_at DESC").
		Offset(query.Offset()).
		Limit(query.Limit()).
		Find(&posts).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, pagination, nil
}

// ListImagePaths returns every stored image path referenced by any post.
func (r *gormRepository) ListImagePaths(ctx context.Context) ([]string, error) {
	var posts []Post
	if err := r.db.WithContext(ctx).Select("images").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list post image paths: %w", err)
	}
	var paths []string
	for _, p := range posts {
		paths = append(paths, p.Images...)
	}
	return paths, nil
}
