package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

func TestPLWDGetByID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, first_name, last_name, COALESCE\(phone, ''\), COALESCE\(watch_id, ''\) FROM plwd WHERE id = (.+)`).
		WithArgs("plwd-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "phone", "watch_id"}).
			AddRow("plwd-1", "Maria", "Claes", "+32470000009", "W1234"))

	p, err := NewPLWDRepo(db).GetByID(context.Background(), "plwd-1")
	require.NoError(t, err)
	assert.Equal(t, "Maria Claes", p.FullName())
	assert.Equal(t, "W1234", p.WatchID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPLWDGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM plwd WHERE id`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "phone", "watch_id"}))

	_, err = NewPLWDRepo(db).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
