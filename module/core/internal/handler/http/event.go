package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

type eventService interface {
	DeleteEvent(ctx context.Context, eventID string) error
}

type ledgerService interface {
	ListForEvent(ctx context.Context, eventID string) ([]domain.NotificationRecord, error)
}

type EventHandler struct {
	eventSvc  eventService
	ledgerSvc ledgerService
	logger    *zap.Logger
}

func NewEventHandler(eventSvc eventService, ledgerSvc ledgerService, logger *zap.Logger) *EventHandler {
	return &EventHandler{eventSvc: eventSvc, ledgerSvc: ledgerSvc, logger: logger}
}

func (h *EventHandler) Register(r *gin.RouterGroup) {
	r.GET("/events/:event_id/notifications", h.ListNotifications)
	r.DELETE("/events/:event_id", h.DeleteEvent)
}

func (h *EventHandler) ListNotifications(c *gin.Context) {
	eventID := c.Param("event_id")

	records, err := h.ledgerSvc.ListForEvent(c.Request.Context(), eventID)
	if err != nil {
		h.logger.Error("Failed to list notifications", zap.String("event_id", eventID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch notifications"})
		return
	}
	if records == nil {
		records = []domain.NotificationRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// DeleteEvent removes the event together with its ledger rows.
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	eventID := c.Param("event_id")

	if err := h.eventSvc.DeleteEvent(c.Request.Context(), eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		h.logger.Error("Failed to delete event", zap.String("event_id", eventID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete event"})
		return
	}

	c.Status(http.StatusNoContent)
}
