// File: cmd/server/providers.go
package main

import (
	"log"

	"woodcraft_backend/internal/config"
	"woodcraft_backend/internal/docs"
	"woodcraft_backend/internal/filestorage"
	"woodcraft_backend/internal/platform/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// provideFileStorage builds the upload storage service rooted at the
// configured directory.
func provideFileStorage(cfg *config.Config, logger *zap.Logger) (*filestorage.Service, error) {
	return filestorage.NewService(cfg.UploadStoragePath, logger)
}

func provideDocsHandler(cfg *config.Config, logger *zap.Logger) *docs.Handler {
	return docs.NewHandler(cfg.DocsPath, logger)
}

func provideCleanup(logger *zap.Logger, db *gorm.DB) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}
