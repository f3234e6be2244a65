package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
	"github.com/imec-int/monument-plwd-sub000/module/core/geo"
	"github.com/imec-int/monument-plwd-sub000/module/core/internal/repository/publisher"
)

type WanderingAlertConfig struct {
	GeofenceRadiusMeters float64
	TriggerDelay         time.Duration
	MaxLookback          time.Duration
}

type ongoingEventSource interface {
	GetOngoingEvents(ctx context.Context) ([]domain.CalendarEvent, error)
}

type plwdSource interface {
	GetByID(ctx context.Context, plwdID string) (*domain.PLWD, error)
}

type locationSource interface {
	GetLatestLocations(ctx context.Context, watchID string, since *time.Time) ([]domain.LocationPing, error)
}

// DistanceEvaluator is satisfied by geo.Evaluator and the PostGIS-backed
// LocationService.
type DistanceEvaluator interface {
	IsWithinDistance(ctx context.Context, a, b domain.Coordinate, maxMeters float64) (bool, error)
}

type alertDispatcher interface {
	NotifyForEvent(ctx context.Context, p domain.NotifyParams) error
}

type runLocker interface {
	TryAcquire(ctx context.Context) (release func(), acquired bool, err error)
}

// RunSummary counts what one pass did with the ongoing events.
type RunSummary struct {
	Ongoing    int `json:"ongoing"`
	Pending    int `json:"pending"`
	Skipped    int `json:"skipped"`
	InRange    int `json:"in_range"`
	OutOfRange int `json:"out_of_range"`
}

type outcome int

const (
	outcomePending outcome = iota
	outcomeSkipped
	outcomeInRange
	outcomeOutOfRange
)

// WanderingAlertService checks every ongoing event whose grace delay has
// passed and notifies the recipients when the PLWD's newest location is
// farther than the geofence radius from the destination.
type WanderingAlertService struct {
	events     ongoingEventSource
	plwds      plwdSource
	locations  locationSource
	distance   DistanceEvaluator
	dispatcher alertDispatcher
	publisher  publisher.AlertPublisher
	locker     runLocker
	cfg        WanderingAlertConfig
	logger     *zap.Logger
	now        func() time.Time
}

func NewWanderingAlertService(
	events ongoingEventSource,
	plwds plwdSource,
	locations locationSource,
	distance DistanceEvaluator,
	dispatcher alertDispatcher,
	cfg WanderingAlertConfig,
	logger *zap.Logger,
) *WanderingAlertService {
	return &WanderingAlertService{
		events:     events,
		plwds:      plwds,
		locations:  locations,
		distance:   distance,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// WithPublisher broadcasts every out-of-range detection.
func (s *WanderingAlertService) WithPublisher(p publisher.AlertPublisher) *WanderingAlertService {
	s.publisher = p
	return s
}

// WithRunLock makes Tick skip when another pass holds the lock.
func (s *WanderingAlertService) WithRunLock(l runLocker) *WanderingAlertService {
	s.locker = l
	return s
}

// Tick runs one pass under the run lock, if any. ErrRunInProgress is
// returned when the lock is held elsewhere.
func (s *WanderingAlertService) Tick(ctx context.Context) (RunSummary, error) {
	if s.locker != nil {
		release, acquired, err := s.locker.TryAcquire(ctx)
		if err != nil {
			return RunSummary{}, fmt.Errorf("failed to acquire run lock: %w", err)
		}
		if !acquired {
			return RunSummary{}, domain.ErrRunInProgress
		}
		defer release()
	}
	return s.Run(ctx)
}

// Run performs one scheduler pass. Only a failure to list ongoing events is
// returned; per-event problems are logged and the pass moves on.
func (s *WanderingAlertService) Run(ctx context.Context) (RunSummary, error) {
	var summary RunSummary

	events, err := s.events.GetOngoingEvents(ctx)
	if err != nil {
		s.logger.Error("Failed to get ongoing events", zap.Error(err))
		return summary, err
	}
	summary.Ongoing = len(events)
	if len(events) == 0 {
		s.logger.Debug("No ongoing events")
		return summary, nil
	}

	now := s.now()
	for i := range events {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		switch s.evaluate(ctx, &events[i], now) {
		case outcomePending:
			summary.Pending++
		case outcomeSkipped:
			summary.Skipped++
		case outcomeInRange:
			summary.InRange++
		case outcomeOutOfRange:
			summary.OutOfRange++
		}
	}

	s.logger.Info("Wandering alert pass finished",
		zap.Int("ongoing", summary.Ongoing),
		zap.Int("pending", summary.Pending),
		zap.Int("skipped", summary.Skipped),
		zap.Int("in_range", summary.InRange),
		zap.Int("out_of_range", summary.OutOfRange),
	)
	return summary, nil
}

func (s *WanderingAlertService) evaluate(ctx context.Context, ev *domain.CalendarEvent, now time.Time) outcome {
	log := s.logger.With(zap.String("event_id", ev.ID), zap.String("plwd_id", ev.PLWDID))

	if !ev.GraceDelayExceeded(now, s.cfg.TriggerDelay) {
		log.Debug("Event still inside grace delay")
		return outcomePending
	}

	plwd, err := s.plwds.GetByID(ctx, ev.PLWDID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn("PLWD not found for event")
		} else {
			log.Error("Failed to get PLWD", zap.Error(err))
		}
		return outcomeSkipped
	}
	if plwd.WatchID == "" {
		log.Warn("PLWD has no watch")
		return outcomeSkipped
	}

	since := ev.StartTime.Add(-s.cfg.MaxLookback)
	pings, err := s.locations.GetLatestLocations(ctx, plwd.WatchID, &since)
	if err != nil {
		log.Error("Failed to get latest locations", zap.String("watch_id", plwd.WatchID), zap.Error(err))
		return outcomeSkipped
	}
	if len(pings) == 0 {
		log.Debug("No recent location for watch", zap.String("watch_id", plwd.WatchID))
		return outcomeSkipped
	}
	latest := newestPing(pings)

	if !ev.HasDestination() || !ev.Address.Location.Valid() || !latest.Location.Valid() {
		log.Error("Invalid geometry, cannot evaluate distance",
			zap.Any("destination", ev.Address),
			zap.Any("location", latest.Location),
		)
		return outcomeSkipped
	}
	destination := *ev.Address.Location

	within, err := s.distance.IsWithinDistance(ctx, latest.Location, destination, s.cfg.GeofenceRadiusMeters)
	if err != nil {
		log.Error("Failed to evaluate distance", zap.Error(err))
		return outcomeSkipped
	}
	if within {
		log.Debug("PLWD within geofence of destination")
		return outcomeInRange
	}

	meters := geo.Distance(latest.Location, destination)
	log.Info("PLWD out of range of destination",
		zap.Float64("distance_meters", meters),
		zap.Float64("radius_meters", s.cfg.GeofenceRadiusMeters),
	)

	if s.publisher != nil {
		alert := &domain.WanderingAlert{
			EventID:        ev.ID,
			PLWDID:         plwd.ID,
			WatchID:        plwd.WatchID,
			Destination:    destination,
			Location:       latest.Location,
			DistanceMeters: meters,
			DetectedAt:     now,
		}
		if err := s.publisher.PublishAlert(ctx, alert); err != nil {
			log.Warn("Failed to publish wandering alert", zap.Error(err))
		}
	}

	params := domain.NotifyParams{
		Event:      ev,
		PLWD:       plwd,
		Location:   latest.Location,
		Recipients: ev.Recipients(),
	}
	if err := s.dispatcher.NotifyForEvent(ctx, params); err != nil {
		log.Error("Failed to notify for event", zap.Error(err))
	}
	return outcomeOutOfRange
}

func newestPing(pings []domain.LocationPing) domain.LocationPing {
	latest := pings[0]
	for _, p := range pings[1:] {
		if p.Timestamp.After(latest.Timestamp) {
			latest = p
		}
	}
	return latest
}
