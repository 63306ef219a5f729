// File: internal/jobs/upload_sweep.go
package jobs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"woodcraft_backend/internal/config"
	"woodcraft_backend/internal/filestorage"
	"woodcraft_backend/internal/order"
	"woodcraft_backend/internal/post"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// UploadSweepJob periodically removes files from the upload directory that no
// order or post references anymore. Only files older than a configured
// minimum age are touched, so in-flight uploads are never swept.
type UploadSweepJob struct {
	orderRepo     order.Repository
	postRepo      post.Repository
	fileStorage   *filestorage.Service
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewUploadSweepJob creates a new UploadSweepJob.
func NewUploadSweepJob(
	orderRepo order.Repository,
	postRepo post.Repository,
	fileStorage *filestorage.Service,
	logger *zap.Logger,
	cfg *config.Config,
) *UploadSweepJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &UploadSweepJob{
		orderRepo:     orderRepo,
		postRepo:      postRepo,
		fileStorage:   fileStorage,
		logger:        logger.Named("UploadSweepJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *UploadSweepJob) SetupAndStart() error {
	jobSpec := j.cfg.UploadSweepJobSchedule
	if jobSpec == "" {
		j.logger.Warn("Upload sweep job schedule not defined (UPLOAD_SWEEP_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule upload sweep job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Upload sweep job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *UploadSweepJob) runJob() {
	j.logger.Info("Starting upload sweep run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	removed, err := j.Sweep(ctx)
	if err != nil {
		j.logger.Error("Upload sweep run failed", zap.Error(err))
		return
	}
	j.logger.Info("Upload sweep run completed", zap.Int("files_removed", removed))
}

// Sweep walks the upload directory and deletes unreferenced files older than
// the configured minimum age. Per-file failures are logged and skipped; the
// sweep itself only fails when the reference lists cannot be loaded.
func (j *UploadSweepJob) Sweep(ctx context.Context) (int, error) {
	referenced, err := j.referencedPaths(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-j.cfg.UploadSweepMinAge)
	root := j.fileStorage.StoragePath()
	removed := 0

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			j.logger.Warn("Upload sweep cannot access path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if _, ok := referenced[rel]; ok {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.ModTime().After(cutoff) {
			return nil
		}

		if err := os.Remove(path); err != nil {
			j.logger.Warn("Upload sweep failed to remove file", zap.String("path", path), zap.Error(err))
			return nil
		}
		j.logger.Info("Upload sweep removed orphaned file", zap.String("path", rel))
		removed++
		return nil
	})
	if walkErr != nil {
		return removed, fmt.Errorf("upload sweep walk failed: %w", walkErr)
	}
	return removed, nil
}

func (j *UploadSweepJob) referencedPaths(ctx context.Context) (map[string]struct{}, error) {
	orderPaths, err := j.orderRepo.ListArticlePaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load order article paths: %w", err)
	}
	postPaths, err := j.postRepo.ListImagePaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load post image paths: %w", err)
	}

	referenced := make(map[string]struct{}, len(orderPaths)+len(postPaths))
	for _, p := range orderPaths {
		referenced[filepath.ToSlash(p)] = struct{}{}
	}
	for _, p := range postPaths {
		referenced[filepath.ToSlash(p)] = struct{}{}
	}
	return referenced, nil
}

// Stop gracefully stops the cron scheduler.
func (j *UploadSweepJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping upload sweep scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Upload sweep scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Upload sweep scheduler stop timed out.")
		}
	}
}
