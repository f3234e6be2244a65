package database

import (
	"context"
	"time"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

type LocationRepository interface {
	Insert(ctx context.Context, pings ...*domain.LocationPing) error
	GetLatestLocations(ctx context.Context, query *domain.LocationQuery) ([]domain.LocationPing, error)
	IsWithinDistance(ctx context.Context, a, b domain.Coordinate, maxMeters float64) (bool, error)
}

type EventRepository interface {
	GetOngoingEvents(ctx context.Context, now time.Time) ([]domain.CalendarEvent, error)
	Delete(ctx context.Context, eventID string) error
}

type PLWDRepository interface {
	GetByID(ctx context.Context, plwdID string) (*domain.PLWD, error)
}

type NotificationRepository interface {
	HasNotificationForEvent(ctx context.Context, key domain.NotificationKey) (bool, error)
	Insert(ctx context.Context, key domain.NotificationKey) (*domain.NotificationRecord, error)
	DeleteAllForEvent(ctx context.Context, eventID string) error
	ListForEvent(ctx context.Context, eventID string) ([]domain.NotificationRecord, error)
}
