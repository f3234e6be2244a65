package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
	"github.com/imec-int/monument-plwd-sub000/module/core/internal/repository/database"
)

var _ database.PLWDRepository = (*PLWDRepo)(nil)

type PLWDRepo struct {
	db *sql.DB
}

func NewPLWDRepo(db *sql.DB) *PLWDRepo {
	return &PLWDRepo{db: db}
}

func (r *PLWDRepo) GetByID(ctx context.Context, plwdID string) (*domain.PLWD, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, COALESCE(phone, ''), COALESCE(watch_id, '') FROM plwd WHERE id = $1`,
		plwdID,
	)

	var p domain.PLWD
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Phone, &p.WatchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
