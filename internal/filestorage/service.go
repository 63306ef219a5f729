package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"woodcraft_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// allowedContentTypes is the upload allow-list. Anything else is rejected
// before a single byte lands on disk.
var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/jpg":  {},
	"video/mp4":  {},
}

// Service stores and deletes uploaded files under a single base directory.
type Service struct {
	storagePath string
	logger      *zap.Logger
}

// NewService creates a new file storage service rooted at storagePath.
func NewService(storagePath string, logger *zap.Logger) (*Service, error) {
	if storagePath == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}
	if err := os.MkdirAll(storagePath, os.ModePerm); err != nil {
		logger.Error("Failed to create storage path directory", zap.String("path", storagePath), zap.Error(err))
		return nil, fmt.Errorf("failed to create storage path %s: %w", storagePath, err)
	}
	logger.Info("File storage initialized", zap.String("storagePath", storagePath))
	return &Service{storagePath: storagePath, logger: logger.Named("FileStorage")}, nil
}

// StoragePath returns the base directory files are stored under.
func (s *Service) StoragePath() string {
	return s.storagePath
}

// IsAllowedContentType reports whether the part's declared Content-Type is on
// the upload allow-list.
func IsAllowedContentType(fileHeader *multipart.FileHeader) bool {
	contentType := fileHeader.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	_, ok := allowedContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
	return ok
}

// SaveUploadedFile streams one multipart part into subDir under the storage
// path. The stored name is time-prefixed and random, so concurrent uploads of
// the same filename never collide. Returns the path relative to the storage
// root, e.g. "orders/1735689600000-uuid.jpg".
func (s *Service) SaveUploadedFile(fileHeader *multipart.FileHeader, subDir string) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("fileHeader cannot be nil")
	}
	if !IsAllowedContentType(fileHeader) {
		return "", common.ErrUnsupportedMediaType.WithDetails(
			fmt.Sprintf("File %q has unsupported type %q.", fileHeader.Filename, fileHeader.Header.Get("Content-Type")))
	}

	src, err := fileHeader.Open()
	if err != nil {
		s.logger.Error("Failed to open uploaded file", zap.Error(err))
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	cleanSubDir := filepath.Clean(subDir)
	if strings.HasPrefix(cleanSubDir, "..") {
		s.logger.Error("Invalid subDir, attempts to navigate up", zap.String("subDir", subDir))
		return "", fmt.Errorf("invalid subDir path")
	}

	destinationDir := filepath.Join(s.storagePath, cleanSubDir)
	if err := os.MkdirAll(destinationDir, os.ModePerm); err != nil {
		s.logger.Error("Failed to create sub-directory for file storage", zap.String("path", destinationDir), zap.Error(err))
		return "", fmt.Errorf("failed to create directory %s: %w", destinationDir, err)
	}

	extension := filepath.Ext(filepath.Base(fileHeader.Filename))
	uniqueFilename := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.New().String(), extension)
	destinationPath := filepath.Join(destinationDir, uniqueFilename)

	dst, err := os.Create(destinationPath)
	if err != nil {
		s.logger.Error("Failed to create destination file", zap.String("path", destinationPath), zap.Error(err))
		return "", fmt.Errorf("failed to create file %s: %w", destinationPath, err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		s.logger.Error("Failed to copy uploaded file to destination", zap.String("path", destinationPath), zap.Error(err))
		os.Remove(destinationPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	s.logger.Info("File saved", zap.String("path", destinationPath))
	return filepath.ToSlash(filepath.Join(cleanSubDir, uniqueFilename)), nil
}

// SaveAll validates every part against max and the content-type allow-list
// before saving any of them, then streams the parts one by one. If a save
// fails mid-stream, the parts already written for this request are removed
// best-effort.
func (s *Service) SaveAll(fileHeaders []*multipart.FileHeader, subDir string, max int) ([]string, error) {
	if len(fileHeaders) > max {
		return nil, common.ErrMaxImages.WithDetails(
			fmt.Sprintf("At most %d files are allowed, got %d.", max, len(fileHeaders)))
	}
	for _, fh := range fileHeaders {
		if !IsAllowedContentType(fh) {
			return nil, common.ErrUnsupportedMediaType.WithDetails(
				fmt.Sprintf("File %q has unsupported type %q.", fh.Filename, fh.Header.Get("Content-Type")))
		}
	}

	saved := make([]string, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		path, err := s.SaveUploadedFile(fh, subDir)
		if err != nil {
			for _, p := range saved {
				if delErr := s.DeleteFile(p); delErr != nil {
					s.logger.Warn("Failed to clean up file after aborted upload",
						zap.String("path", p), zap.Error(delErr))
				}
			}
			return nil, err
		}
		saved = append(saved, path)
	}
	return saved, nil
}

// DeleteFile deletes a file given its path relative to the storage root.
// Deleting a file that is already gone is not an error.
func (s *Service) DeleteFile(relativePath string) error {
	if relativePath == "" {
		return fmt.Errorf("relative path cannot be empty")
	}

	cleanRelativePath := filepath.Clean(relativePath)
	if strings.Contains(cleanRelativePath, "..") {
		s.logger.Warn("Attempt to delete file with path traversal", zap.String("relativePath", relativePath))
		return fmt.Errorf("invalid file path for deletion")
	}

	fullPath := filepath.Join(s.storagePath, cleanRelativePath)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		s.logger.Warn("Attempt to delete non-existent file", zap.String("path", fullPath))
		return nil
	}

	if err := os.Remove(fullPath); err != nil {
		s.logger.Error("Failed to delete file", zap.String("path", fullPath), zap.Error(err))
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}

	s.logger.Info("File deleted", zap.String("path", fullPath))
	return nil
}

// DeleteFilesAsync deletes files in a background goroutine. Each failure is
// logged once and never retried.
func (s *Service) DeleteFilesAsync(relativePaths []string) {
	if len(relativePaths) == 0 {
		return
	}
	paths := make([]string, len(relativePaths))
	copy(paths, relativePaths)
	go func() {
		for _, p := range paths {
			if err := s.DeleteFile(p); err != nil {
				s.logger.Warn("Async file deletion failed", zap.String("path", p), zap.Error(err))
			}
		}
	}()
}
