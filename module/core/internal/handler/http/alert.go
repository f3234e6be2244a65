package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
	"github.com/imec-int/monument-plwd-sub000/module/core/service"
)

type alertRunner interface {
	Tick(ctx context.Context) (service.RunSummary, error)
}

type AlertHandler struct {
	runner alertRunner
	logger *zap.Logger
}

func NewAlertHandler(runner alertRunner, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{runner: runner, logger: logger}
}

func (h *AlertHandler) Register(r *gin.RouterGroup) {
	r.POST("/alerts/run", h.Run)
}

// Run performs one scheduler pass synchronously.
func (h *AlertHandler) Run(c *gin.Context) {
	summary, err := h.runner.Tick(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "alert run already in progress"})
			return
		}
		h.logger.Error("Manual alert run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "alert run failed"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
