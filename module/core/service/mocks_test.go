package service

import (
	"context"
	"time"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

type mockLocationRepo struct {
	insertFn           func(ctx context.Context, pings ...*domain.LocationPing) error
	getLatestFn        func(ctx context.Context, query *domain.LocationQuery) ([]domain.LocationPing, error)
	isWithinDistanceFn func(ctx context.Context, a, b domain.Coordinate, maxMeters float64) (bool, error)
}

func (m *mockLocationRepo) Insert(ctx context.Context, pings ...*domain.LocationPing) error {
	return m.insertFn(ctx, pings...)
}

func (m *mockLocationRepo) GetLatestLocations(ctx context.Context, query *domain.LocationQuery) ([]domain.LocationPing, error) {
	return m.getLatestFn(ctx, query)
}

func (m *mockLocationRepo) IsWithinDistance(ctx context.Context, a, b domain.Coordinate, maxMeters float64) (bool, error) {
	return m.isWithinDistanceFn(ctx, a, b, maxMeters)
}

type mockPLWDRepo struct {
	getByIDFn func(ctx context.Context, plwdID string) (*domain.PLWD, error)
}

func (m *mockPLWDRepo) GetByID(ctx context.Context, plwdID string) (*domain.PLWD, error) {
	return m.getByIDFn(ctx, plwdID)
}

type mockEventRepo struct {
	getOngoingFn func(ctx context.Context, now time.Time) ([]domain.CalendarEvent, error)
	deleteFn     func(ctx context.Context, eventID string) error
}

func (m *mockEventRepo) GetOngoingEvents(ctx context.Context, now time.Time) ([]domain.CalendarEvent, error) {
	return m.getOngoingFn(ctx, now)
}

func (m *mockEventRepo) Delete(ctx context.Context, eventID string) error {
	return m.deleteFn(ctx, eventID)
}

// memNotificationRepo is an in-memory ledger keyed like the unique index.
type memNotificationRepo struct {
	records map[string]domain.NotificationRecord
	failFn  func(key domain.NotificationKey) error
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{records: map[string]domain.NotificationRecord{}}
}

func ledgerKey(key domain.NotificationKey) string {
	return key.EventID + "|" + key.ContactID + "|" + string(key.Channel)
}

func (m *memNotificationRepo) HasNotificationForEvent(_ context.Context, key domain.NotificationKey) (bool, error) {
	_, ok := m.records[ledgerKey(key)]
	return ok, nil
}

func (m *memNotificationRepo) Insert(_ context.Context, key domain.NotificationKey) (*domain.NotificationRecord, error) {
	if m.failFn != nil {
		if err := m.failFn(key); err != nil {
			return nil, err
		}
	}
	k := ledgerKey(key)
	if _, ok := m.records[k]; ok {
		return nil, domain.ErrAlreadyNotified
	}
	rec := domain.NotificationRecord{
		ID:        k,
		EventID:   key.EventID,
		PLWDID:    key.PLWDID,
		ContactID: key.ContactID,
		Channel:   key.Channel,
		CreatedAt: time.Now(),
	}
	m.records[k] = rec
	return &rec, nil
}

func (m *memNotificationRepo) DeleteAllForEvent(_ context.Context, eventID string) error {
	for k, rec := range m.records {
		if rec.EventID == eventID {
			delete(m.records, k)
		}
	}
	return nil
}

func (m *memNotificationRepo) ListForEvent(_ context.Context, eventID string) ([]domain.NotificationRecord, error) {
	var out []domain.NotificationRecord
	for _, rec := range m.records {
		if rec.EventID == eventID {
			out = append(out, rec)
		}
	}
	return out, nil
}
