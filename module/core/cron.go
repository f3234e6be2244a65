package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

// NewAlertCron schedules wandering-alert passes. A tick that fires while the
// previous pass is still running is skipped.
func (m *Module) NewAlertCron(ctx context.Context, schedule string, logger *zap.Logger) (*cron.Cron, error) {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	))

	if _, err := c.AddFunc(schedule, func() { m.RunAlertTick(ctx, logger) }); err != nil {
		return nil, fmt.Errorf("invalid alert schedule %q: %w", schedule, err)
	}
	return c, nil
}

// RunAlertTick runs one locked pass and logs its outcome.
func (m *Module) RunAlertTick(ctx context.Context, logger *zap.Logger) {
	summary, err := m.AlertSvc.Tick(ctx)
	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		logger.Info("Skipping alert pass, another one is running")
	case err != nil:
		logger.Error("Alert pass failed", zap.Error(err))
	default:
		logger.Debug("Alert pass done",
			zap.Int("ongoing", summary.Ongoing),
			zap.Int("out_of_range", summary.OutOfRange),
		)
	}
}
