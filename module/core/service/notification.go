package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
	"github.com/imec-int/monument-plwd-sub000/module/core/internal/repository/database"
)

// NotificationService is the notification ledger: one record per
// (event, contact, channel) that has been notified.
type NotificationService struct {
	repo   database.NotificationRepository
	logger *zap.Logger
}

func NewNotificationService(repo database.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

func (s *NotificationService) HasNotificationForEvent(ctx context.Context, key domain.NotificationKey) (bool, error) {
	exists, err := s.repo.HasNotificationForEvent(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to check notification: %w", err)
	}
	return exists, nil
}

// Insert records a sent notification. ErrAlreadyNotified is returned when a
// record for the same key is already present.
func (s *NotificationService) Insert(ctx context.Context, key domain.NotificationKey) (*domain.NotificationRecord, error) {
	if !key.Channel.Valid() {
		return nil, fmt.Errorf("invalid channel %q", key.Channel)
	}
	rec, err := s.repo.Insert(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyNotified) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}
	return rec, nil
}

func (s *NotificationService) DeleteAllForEvent(ctx context.Context, eventID string) error {
	if err := s.repo.DeleteAllForEvent(ctx, eventID); err != nil {
		s.logger.Error("Failed to delete notifications",
			zap.String("event_id", eventID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to delete notifications: %w", err)
	}
	return nil
}

func (s *NotificationService) ListForEvent(ctx context.Context, eventID string) ([]domain.NotificationRecord, error) {
	return s.repo.ListForEvent(ctx, eventID)
}
