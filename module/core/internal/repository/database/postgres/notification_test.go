package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

var testKey = domain.NotificationKey{
	EventID:   "ev-1",
	ContactID: "contact-1",
	PLWDID:    "plwd-1",
	Channel:   domain.ChannelEmail,
}

func TestHasNotificationForEvent(t *testing.T) {
	for _, exists := range []bool{true, false} {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("ev-1", "contact-1", "plwd-1", "email").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))

		got, err := NewNotificationRepo(db).HasNotificationForEvent(context.Background(), testKey)
		require.NoError(t, err)
		assert.Equal(t, exists, got)
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	}
}

func TestNotificationInsert_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2024, 5, 6, 10, 16, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO notification (.+) ON CONFLICT \(event_id, contact_id, channel\) DO NOTHING`).
		WithArgs(sqlmock.AnyArg(), "ev-1", "plwd-1", "contact-1", "email").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	rec, err := NewNotificationRepo(db).Insert(context.Background(), testKey)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, domain.ChannelEmail, rec.Channel)
	assert.Equal(t, created, rec.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationInsert_Conflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO notification`).
		WithArgs(sqlmock.AnyArg(), "ev-1", "plwd-1", "contact-1", "email").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}))

	_, err = NewNotificationRepo(db).Insert(context.Background(), testKey)
	assert.ErrorIs(t, err, domain.ErrAlreadyNotified)
}

func TestNotificationDeleteAllForEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM notification WHERE event_id = (.+)`).
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, NewNotificationRepo(db).DeleteAllForEvent(context.Background(), "ev-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationListForEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Unix(1715003456, 0)
	mock.ExpectQuery(`SELECT id, event_id, plwd_id, contact_id, channel, created_at FROM notification`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "plwd_id", "contact_id", "channel", "created_at"}).
			AddRow("n-1", "ev-1", "plwd-1", "contact-1", "email", ts).
			AddRow("n-2", "ev-1", "plwd-1", "contact-1", "whatsapp", ts))

	recs, err := NewNotificationRepo(db).ListForEvent(context.Background(), "ev-1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, domain.ChannelWhatsApp, recs[1].Channel)
}
