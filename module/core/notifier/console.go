package notifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

// ConsoleTransport writes alerts to the structured log.
type ConsoleTransport struct {
	logger *zap.Logger
}

func NewConsoleTransport(logger *zap.Logger) *ConsoleTransport {
	return &ConsoleTransport{logger: logger}
}

func (t *ConsoleTransport) Channel() domain.Channel { return domain.ChannelConsole }

func (t *ConsoleTransport) Deliver(_ context.Context, to domain.Recipient, msg Message) error {
	contact := to.ContactInfo()
	t.logger.Info("Wandering alert",
		zap.String("recipient", contact.FullName()),
		zap.String("contact_id", contact.ID),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

func NewConsoleDelegate(ledger Ledger, composer *Composer, logger *zap.Logger) *ChannelDelegate {
	return NewChannelDelegate(NewConsoleTransport(logger), ledger, composer, logger)
}
