// Package health exposes the liveness endpoint for the review server.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codecollab/reviewd/internal/database/database"
)

// pingTimeout bounds the database ping so a wedged pool cannot hang the
// health endpoint past what load balancers tolerate.
const pingTimeout = 5 * time.Second

// Handler answers health check requests.
type Handler struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a health handler backed by the review database.
func New(db *gorm.DB, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
	}
}

// Response is the health check payload.
type Response struct {
	Status string `json:"status"`
}

// Check handles GET /health. The server is healthy only when the review
// database answers a ping; transition handling is useless without it.
func (h *Handler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	if err := database.HealthCheck(ctx, h.db); err != nil {
		h.logger.Warnw("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, Response{
			Status: "unhealthy",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Status: "ok",
	})
}
