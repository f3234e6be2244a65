package notifier

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

type Delegate interface {
	Channel() domain.Channel
	NotifyForEvent(ctx context.Context, p domain.NotifyParams) error
}

// CompositeDispatcher runs every enabled delegate in order. A failing
// delegate does not keep the next one from running.
type CompositeDispatcher struct {
	delegates []Delegate
	logger    *zap.Logger
}

func NewCompositeDispatcher(logger *zap.Logger, delegates ...Delegate) *CompositeDispatcher {
	return &CompositeDispatcher{delegates: delegates, logger: logger}
}

func (c *CompositeDispatcher) Channels() []domain.Channel {
	out := make([]domain.Channel, len(c.delegates))
	for i, d := range c.delegates {
		out[i] = d.Channel()
	}
	return out
}

// NotifyForEvent returns the joined delegate errors after all delegates ran.
func (c *CompositeDispatcher) NotifyForEvent(ctx context.Context, p domain.NotifyParams) error {
	var errs []error
	for _, d := range c.delegates {
		if err := c.notify(ctx, d, p); err != nil {
			c.logger.Error("Channel delegate failed",
				zap.String("channel", string(d.Channel())),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", d.Channel(), err))
		}
	}
	return errors.Join(errs...)
}

func (c *CompositeDispatcher) notify(ctx context.Context, d Delegate, p domain.NotifyParams) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("delegate panic: %v", r)
		}
	}()
	return d.NotifyForEvent(ctx, p)
}
