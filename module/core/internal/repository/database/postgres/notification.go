package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
	"github.com/imec-int/monument-plwd-sub000/module/core/internal/repository/database"
)

var _ database.NotificationRepository = (*NotificationRepo)(nil)

type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) HasNotificationForEvent(ctx context.Context, key domain.NotificationKey) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM notification WHERE event_id = $1 AND contact_id = $2 AND plwd_id = $3 AND channel = $4)`,
		key.EventID, key.ContactID, key.PLWDID, string(key.Channel),
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Insert records a notification. A row that already exists for the same
// (event, contact, channel) is left untouched and ErrAlreadyNotified is
// returned.
func (r *NotificationRepo) Insert(ctx context.Context, key domain.NotificationKey) (*domain.NotificationRecord, error) {
	rec := &domain.NotificationRecord{
		ID:        uuid.NewString(),
		EventID:   key.EventID,
		PLWDID:    key.PLWDID,
		ContactID: key.ContactID,
		Channel:   key.Channel,
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO notification (id, event_id, plwd_id, contact_id, channel) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, contact_id, channel) DO NOTHING
		RETURNING created_at`,
		rec.ID, rec.EventID, rec.PLWDID, rec.ContactID, string(rec.Channel),
	).Scan(&rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAlreadyNotified
		}
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return rec, nil
}

func (r *NotificationRepo) DeleteAllForEvent(ctx context.Context, eventID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notification WHERE event_id = $1`, eventID)
	return err
}

func (r *NotificationRepo) ListForEvent(ctx context.Context, eventID string) ([]domain.NotificationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_id, plwd_id, contact_id, channel, created_at FROM notification WHERE event_id = $1 ORDER BY created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.NotificationRecord
	for rows.Next() {
		var (
			rec     domain.NotificationRecord
			channel string
		)
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.PLWDID, &rec.ContactID, &channel, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Channel = domain.Channel(channel)
		results = append(results, rec)
	}
	return results, rows.Err()
}
