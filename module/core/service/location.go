package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
	"github.com/imec-int/monument-plwd-sub000/module/core/internal/repository/database"
)

type LocationService struct {
	repo  database.LocationRepository
	plwds database.PLWDRepository
}

func NewLocationService(repo database.LocationRepository, plwds database.PLWDRepository) *LocationService {
	return &LocationService{repo: repo, plwds: plwds}
}

func (s *LocationService) SaveLocations(ctx context.Context, pings ...*domain.LocationPing) error {
	return s.repo.Insert(ctx, pings...)
}

// GetLatestLocations returns the watch's pings newest first, bounded below by
// since when it is non-nil.
func (s *LocationService) GetLatestLocations(ctx context.Context, watchID string, since *time.Time) ([]domain.LocationPing, error) {
	return s.repo.GetLatestLocations(ctx, &domain.LocationQuery{WatchID: watchID, Since: since})
}

// GetLatestForPLWD returns the newest ping of the PLWD's watch.
func (s *LocationService) GetLatestForPLWD(ctx context.Context, plwdID string) (*domain.LocationPing, error) {
	plwd, err := s.plwds.GetByID(ctx, plwdID)
	if err != nil {
		return nil, err
	}
	if plwd.WatchID == "" {
		return nil, fmt.Errorf("plwd %s has no watch: %w", plwdID, domain.ErrNotFound)
	}

	pings, err := s.GetLatestLocations(ctx, plwd.WatchID, nil)
	if err != nil {
		return nil, err
	}
	if len(pings) == 0 {
		return nil, fmt.Errorf("no location for watch %s: %w", plwd.WatchID, domain.ErrNotFound)
	}
	return &pings[0], nil
}

func (s *LocationService) IsWithinDistance(ctx context.Context, a, b domain.Coordinate, maxMeters float64) (bool, error) {
	return s.repo.IsWithinDistance(ctx, a, b, maxMeters)
}

func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
