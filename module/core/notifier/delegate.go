// Package notifier delivers wandering alerts to every interested party over
// the enabled channels, at most once per (event, contact, channel).
package notifier

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

// Ledger is the notification record store consulted around each send.
type Ledger interface {
	HasNotificationForEvent(ctx context.Context, key domain.NotificationKey) (bool, error)
	Insert(ctx context.Context, key domain.NotificationKey) (*domain.NotificationRecord, error)
}

// Transport hands a composed message to one delivery medium.
type Transport interface {
	Channel() domain.Channel
	Deliver(ctx context.Context, to domain.Recipient, msg Message) error
}

var errSkipped = errors.New("recipient skipped")

// ChannelDelegate notifies every recipient over a single channel.
type ChannelDelegate struct {
	transport Transport
	ledger    Ledger
	composer  *Composer
	logger    *zap.Logger
}

func NewChannelDelegate(transport Transport, ledger Ledger, composer *Composer, logger *zap.Logger) *ChannelDelegate {
	return &ChannelDelegate{
		transport: transport,
		ledger:    ledger,
		composer:  composer,
		logger:    logger.With(zap.String("channel", string(transport.Channel()))),
	}
}

func (d *ChannelDelegate) Channel() domain.Channel {
	return d.transport.Channel()
}

// NotifyForEvent notifies each recipient independently. Per-recipient
// failures are logged and never stop the loop.
func (d *ChannelDelegate) NotifyForEvent(ctx context.Context, p domain.NotifyParams) error {
	if p.Event == nil || p.PLWD == nil {
		return fmt.Errorf("notify for event: event and plwd are required")
	}

	var sent, skipped, failed int
	for _, r := range p.Recipients {
		err := d.notifyRecipient(ctx, p, r)
		switch {
		case err == nil:
			sent++
		case errors.Is(err, errSkipped):
			skipped++
		default:
			failed++
			d.logger.Error("Failed to notify recipient",
				zap.String("event_id", p.Event.ID),
				zap.String("contact_id", r.ContactInfo().ID),
				zap.Error(err),
			)
		}
	}

	d.logger.Info("Channel notification pass finished",
		zap.String("event_id", p.Event.ID),
		zap.Int("sent", sent),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)
	return nil
}

func (d *ChannelDelegate) notifyRecipient(ctx context.Context, p domain.NotifyParams, r domain.Recipient) error {
	contact := r.ContactInfo()
	key := domain.NotificationKey{
		EventID:   p.Event.ID,
		ContactID: contact.ID,
		PLWDID:    p.PLWD.ID,
		Channel:   d.Channel(),
	}

	notified, err := d.ledger.HasNotificationForEvent(ctx, key)
	if err != nil {
		return fmt.Errorf("check ledger: %w", err)
	}
	if notified && !p.AllowResend {
		d.logger.Debug("Recipient already notified",
			zap.String("event_id", p.Event.ID),
			zap.String("contact_id", contact.ID),
		)
		return errSkipped
	}

	msg := d.composer.Compose(p, r)
	if err := d.transport.Deliver(ctx, r, msg); err != nil {
		if errors.Is(err, domain.ErrMissingAddress) {
			d.logger.Warn("Recipient has no address for channel",
				zap.String("event_id", p.Event.ID),
				zap.String("contact_id", contact.ID),
			)
			return errSkipped
		}
		return fmt.Errorf("deliver: %w", err)
	}

	d.logger.Info("Notification sent",
		zap.String("event_id", p.Event.ID),
		zap.String("plwd_id", p.PLWD.ID),
		zap.String("contact_id", contact.ID),
	)

	if _, err := d.ledger.Insert(ctx, key); err != nil {
		if errors.Is(err, domain.ErrAlreadyNotified) {
			return nil
		}
		d.logger.Error("Notification sent but not recorded",
			zap.String("event_id", p.Event.ID),
			zap.String("contact_id", contact.ID),
			zap.Error(err),
		)
	}
	return nil
}
