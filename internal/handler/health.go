package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kitforge/backend/internal/model"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health godoc
// @Summary Liveness and database reachability
// @Tags health
// @Produce json
// @Success 200 {object} model.Envelope{data=model.HealthResponse}
// @Failure 503 {object} model.Envelope{data=model.HealthResponse}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, model.Envelope{
			Success:   false,
			Message:   "database unreachable",
			Data:      model.HealthResponse{Status: "degraded", Database: "down"},
			Timestamp: timestamp(),
		})
		return
	}
	respond(c, http.StatusOK, "", model.HealthResponse{Status: "ok", Database: "up"})
}

// 루트 엔드포인트
func Root(c *gin.Context) {
	respond(c, http.StatusOK, "kitforge API server is running", nil)
}
