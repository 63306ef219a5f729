// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"woodcraft_backend/internal/auth"
	"woodcraft_backend/internal/common"
	"woodcraft_backend/internal/config"
	"woodcraft_backend/internal/docs"
	"woodcraft_backend/internal/health"
	"woodcraft_backend/internal/jobs"
	"woodcraft_backend/internal/middleware"
	"woodcraft_backend/internal/order"
	"woodcraft_backend/internal/post"
	"woodcraft_backend/internal/shared"
	"woodcraft_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Handlers
	authHandler   *auth.Handler
	orderHandler  *order.Handler
	postHandler   *post.Handler
	docsHandler   *docs.Handler
	healthHandler *health.Handler

	// Jobs
	uploadSweepJob *jobs.UploadSweepJob

	// Middleware instances
	authMW      gin.HandlerFunc
	adminRoleMW gin.HandlerFunc
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	authHandler *auth.Handler,
	orderHandler *order.Handler,
	postHandler *post.Handler,
	docsHandler *docs.Handler,
	healthHandler *health.Handler,
	uploadSweepJob *jobs.UploadSweepJob,
	tokenService shared.TokenService,
	db *gorm.DB,
) (*Server, error) {
	if err := db.AutoMigrate(&user.User{}, &order.Order{}, &post.Post{}); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	// CORS Middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// Create middleware instances
	authMW := middleware.AuthMiddleware(tokenService, logger.Named("AuthMiddleware"))
	adminRoleMW := middleware.RoleAuthMiddleware(common.RoleAdmin)

	// --- Setup Routes ---
	healthHandler.RegisterRoutes(router)
	docsHandler.RegisterRoutes(router)

	// Uploaded order articles and post images are served directly from disk.
	router.Static(strings.TrimSuffix(cfg.UploadPublicBaseURL, "/"), cfg.UploadStoragePath)

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1, authMW)
	orderHandler.RegisterRoutes(v1, authMW, adminRoleMW)
	postHandler.RegisterRoutes(v1, authMW, adminRoleMW)

	// Anything else falls through to the single-page frontend. Unknown API
	// paths still get the JSON error envelope.
	router.NoRoute(spaFallback(cfg.PublicDir))

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:     httpServer,
		router:         router,
		cfg:            cfg,
		logger:         logger,
		authHandler:    authHandler,
		orderHandler:   orderHandler,
		postHandler:    postHandler,
		docsHandler:    docsHandler,
		healthHandler:  healthHandler,
		uploadSweepJob: uploadSweepJob,
		authMW:         authMW,
		adminRoleMW:    adminRoleMW,
	}, nil
}

// spaFallback serves the built frontend for any route the API does not claim.
// A request for an asset that exists on disk gets that asset; everything else
// gets index.html so client-side routing can take over.
func spaFallback(publicDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			_ = c.Error(common.ErrNotFound.WithDetails("The requested resource was not found."))
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			_ = c.Error(common.ErrNotFound.WithDetails("The requested resource was not found."))
			return
		}

		requested := filepath.Join(publicDir, filepath.Clean("/"+c.Request.URL.Path))
		if info, err := os.Stat(requested); err == nil && !info.IsDir() {
			c.File(requested)
			return
		}
		c.File(filepath.Join(publicDir, "index.html"))
	}
}

func (s *Server) Start() error {
	if s.uploadSweepJob != nil {
		if err := s.uploadSweepJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start upload sweep job", zap.Error(err))
		}
	} else {
		s.logger.Info("Upload sweep job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.uploadSweepJob != nil {
		s.uploadSweepJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
