package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inventa/backend/internal/infrastructure/logger"
	"github.com/inventa/backend/internal/infrastructure/persistence"
	"github.com/inventa/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// DatabaseChecker reports database liveness and pool usage
type DatabaseChecker interface {
	Ping(ctx context.Context) error
	Pool() persistence.PoolStats
}

const pingTimeout = 2 * time.Second

// HealthHandler serves the liveness check
type HealthHandler struct {
	BaseHandler
	db        DatabaseChecker
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db DatabaseChecker) *HealthHandler {
	return &HealthHandler{db: db, startTime: time.Now()}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string                 `json:"status"`
	Database  string                 `json:"database"`
	Pool      *persistence.PoolStats `json:"pool,omitempty"`
	GoVersion string                 `json:"go_version"`
	Uptime    string                 `json:"uptime"`
}

// Check pings the database. An unreachable database answers 503.
func (h *HealthHandler) Check(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Database:  "ok",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		logger.L(c.Request.Context()).Warn("Database ping failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Database = "unreachable"
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}
	pool := h.db.Pool()
	resp.Pool = &pool

	h.Success(c, resp)
}
