package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
	"github.com/imec-int/monument-plwd-sub000/module/core/internal/repository/database"
)

var _ database.LocationRepository = (*LocationRepo)(nil)

const latestLocationsLimit = 50

type LocationRepo struct {
	db *sql.DB
}

func NewLocationRepo(db *sql.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

func (r *LocationRepo) Insert(ctx context.Context, pings ...*domain.LocationPing) error {
	if len(pings) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO location (watch_id, latitude, longitude, timestamp) VALUES ($1, $2, $3, $4)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range pings {
		if _, err := stmt.ExecContext(ctx, p.WatchID, p.Location.Lat, p.Location.Lng, p.Timestamp); err != nil {
			return fmt.Errorf("insert location for watch %s: %w", p.WatchID, err)
		}
	}
	return tx.Commit()
}

// GetLatestLocations returns pings for a watch, newest first. A nil Since
// returns the most recent pings regardless of age.
func (r *LocationRepo) GetLatestLocations(ctx context.Context, query *domain.LocationQuery) ([]domain.LocationPing, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if query.Since != nil {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, watch_id, latitude, longitude, timestamp, created_at FROM location WHERE watch_id = $1 AND timestamp >= $2 ORDER BY timestamp DESC LIMIT $3`,
			query.WatchID, *query.Since, latestLocationsLimit,
		)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, watch_id, latitude, longitude, timestamp, created_at FROM location WHERE watch_id = $1 ORDER BY timestamp DESC LIMIT $2`,
			query.WatchID, latestLocationsLimit,
		)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.LocationPing
	for rows.Next() {
		var p domain.LocationPing
		if err := rows.Scan(&p.ID, &p.WatchID, &p.Location.Lat, &p.Location.Lng, &p.Timestamp, &p.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// IsWithinDistance asks PostGIS for the geodesic distance test on the
// geography type.
func (r *LocationRepo) IsWithinDistance(ctx context.Context, a, b domain.Coordinate, maxMeters float64) (bool, error) {
	if !a.Valid() || !b.Valid() {
		return false, domain.ErrInvalidCoordinate
	}

	var within bool
	err := r.db.QueryRowContext(ctx,
		`SELECT ST_DWithin(ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography, ST_SetSRID(ST_MakePoint($4, $3), 4326)::geography, $5)`,
		a.Lat, a.Lng, b.Lat, b.Lng, maxMeters,
	).Scan(&within)
	if err != nil {
		return false, fmt.Errorf("st_dwithin: %w", err)
	}
	return within, nil
}
