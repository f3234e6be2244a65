package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
	"github.com/imec-int/monument-plwd-sub000/module/core/internal/repository/database"
)

// EventService resolves which calendar events are currently ongoing.
type EventService struct {
	repo   database.EventRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewEventService(repo database.EventRepository, logger *zap.Logger) *EventService {
	return &EventService{repo: repo, logger: logger, now: time.Now}
}

// GetOngoingEvents returns events whose window contains the current instant
// and that carry a destination.
func (s *EventService) GetOngoingEvents(ctx context.Context) ([]domain.CalendarEvent, error) {
	now := s.now()
	events, err := s.repo.GetOngoingEvents(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get ongoing events: %w", err)
	}

	ongoing := events[:0]
	for _, ev := range events {
		if !ev.IsOngoing(now) {
			s.logger.Debug("Dropping event outside its window or without destination",
				zap.String("event_id", ev.ID),
			)
			continue
		}
		ongoing = append(ongoing, ev)
	}
	return ongoing, nil
}

// DeleteEvent removes an event; its ledger rows go with it.
func (s *EventService) DeleteEvent(ctx context.Context, eventID string) error {
	if eventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if err := s.repo.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	s.logger.Info("Deleted event and its notifications", zap.String("event_id", eventID))
	return nil
}
