// Package health exposes the liveness/readiness endpoint.
package health

import (
	"context"
	"net/http"
	"time"

	"woodcraft_backend/internal/mail"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const checkTimeout = 2 * time.Second

const (
	statusUp   = "UP"
	statusDown = "DOWN"
)

// Handler reports the health of the process and its dependencies.
type Handler struct {
	db         *gorm.DB
	mailSender mail.Sender
	logger     *zap.Logger
}

// NewHandler creates a new health handler.
func NewHandler(db *gorm.DB, mailSender mail.Sender, logger *zap.Logger) *Handler {
	return &Handler{db: db, mailSender: mailSender, logger: logger}
}

// RegisterRoutes sets up the health route.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.health)
}

// health checks the database and the mail server. A dead database makes the
// whole endpoint report 503; an unreachable mail server only marks the mail
// check DOWN, since the site can keep taking orders without it.
func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	dbStatus := statusUp
	if err := h.pingDatabase(ctx); err != nil {
		h.logger.Error("Health check: database unreachable", zap.Error(err))
		dbStatus = statusDown
	}

	mailStatus := statusUp
	if err := h.mailSender.Ping(ctx); err != nil {
		h.logger.Warn("Health check: mail server unreachable", zap.Error(err))
		mailStatus = statusDown
	}

	overall := statusUp
	httpStatus := http.StatusOK
	if dbStatus == statusDown {
		overall = statusDown
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status": overall,
		"checks": gin.H{
			"database": dbStatus,
			"mail":     mailStatus,
		},
	})
}

func (h *Handler) pingDatabase(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
