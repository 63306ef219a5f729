// File: internal/post/service.go
package post

import (
	"context"
	"mime/multipart"

	"woodcraft_backend/internal/common"
	"woodcraft_backend/internal/config"
	"woodcraft_backend/internal/filestorage"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

const uploadSubDir = "posts"

// Service handles post business logic.
type Service struct {
	repo        Repository
	fileStorage *filestorage.Service
	cfg         *config.Config
	logger      *zap.Logger
}

// NewService creates a new post service.
func NewService(repo Repository, fileStorage *filestorage.Service, cfg *config.Config, logger *zap.Logger) *Service {
	return &Service{
		repo:        repo,
		fileStorage: fileStorage,
		cfg:         cfg,
		logger:      logger.Named("PostService"),
	}
}

// CreatePost stores the uploaded images and inserts the post. The slug is
// derived from the title.
func (s *Service) CreatePost(ctx context.Context, adminID uuid.UUID, req CreatePostRequest, files []*multipart.FileHeader) (*Post, error) {
	images, err := s.fileStorage.SaveAll(files, uploadSubDir, s.cfg.PostMaxUploadFiles)
	if err != nil {
		return nil, err
	}

	post := &Post{
		AdminID:     adminID,
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Description: req.Description,
		WoodType:    req.WoodType,
		Location:    req.Location,
		Images:      images,
		Items:       req.Items,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.fileStorage.DeleteFilesAsync(images)
		s.logger.Error("Failed to create post", zap.Error(err), zap.String("adminID", adminID.String()))
		return nil, err
	}

	s.logger.Info("Post created",
		zap.String("postID", post.ID.String()),
		zap.String("slug", post.Slug),
		zap.Int("images", len(images)))
	return post, nil
}

// GetPost retrieves a post by id.
func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (*Post, error) {
	return s.repo.FindByID(ctx, id)
}

// ListPosts returns a paginated post list.
func (s *Service) ListPosts(ctx context.Context, query ListPostsQuery) ([]Post, *common.Pagination, error) {
	return s.repo.FindAll(ctx, query)
}

// UpdatePost applies a partial update. When new images are uploaded they
// replace the stored list, and files referenced only by the old list are
// deleted asynchronously.
func (s *Service) UpdatePost(ctx context.Context, id uuid.UUID, req UpdatePostRequest, newFiles []*multipart.FileHeader) (*Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = *req.Title
		post.Slug = slug.Make(*req.Title)
	}
	if req.Description != nil {
		post.Description = *req.Description
	}
	if req.WoodType != nil {
		post.WoodType = *req.WoodType
	}
	if req.Location != nil {
		post.Location = *req.Location
	}
	if req.Items != nil {
		post.Items = *req.Items
	}

	var oldImages []string
	var newImages []string
	if len(newFiles) > 0 {
		newImages, err = s.fileStorage.SaveAll(newFiles, uploadSubDir, s.cfg.PostMaxUploadFiles)
		if err != nil {
			return nil, err
		}
		oldImages = post.Images
		post.Images = newImages
	}

	if err := s.repo.Update(ctx, post); err != nil {
		s.fileStorage.DeleteFilesAsync(newImages)
		s.logger.Error("Failed to update post", zap.Error(err), zap.String("postID", id.String()))
		return nil, err
	}

	// The old files are only orphaned once the new list is persisted.
	s.fileStorage.DeleteFilesAsync(staleImages(oldImages, post.Images))

	s.logger.Info("Post updated", zap.String("postID", id.String()))
	return post, nil
}

// DeletePost removes the row, then deletes its image files asynchronously.
func (s *Service) DeletePost(ctx context.Context, id uuid.UUID) error {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.fileStorage.DeleteFilesAsync(post.Images)
	s.logger.Info("Post deleted", zap.String("postID", id.String()))
	return nil
}

// staleImages returns the paths in old that no longer appear in current.
func staleImages(old, current []string) []string {
	if len(old) == 0 {
		return nil
	}
	kept := make(map[string]struct{}, len(current))
	for _, p := range current {
		kept[p] = struct{}{}
	}
	var stale []string
	for _, p := range old {
		if _, ok := kept[p]; !ok {
			stale = append(stale, p)
		}
	}
	return stale
}
