package notifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
	"github.com/imec-int/monument-plwd-sub000/module/core/internal/gateway/sendgrid"
)

type MailSender interface {
	Send(ctx context.Context, mail sendgrid.Mail) error
}

type EmailTransport struct {
	sender MailSender
}

func NewEmailTransport(sender MailSender) *EmailTransport {
	return &EmailTransport{sender: sender}
}

func (t *EmailTransport) Channel() domain.Channel { return domain.ChannelEmail }

func (t *EmailTransport) Deliver(ctx context.Context, to domain.Recipient, msg Message) error {
	contact := to.ContactInfo()
	if contact.Email == "" {
		return domain.ErrMissingAddress
	}
	return t.sender.Send(ctx, sendgrid.Mail{
		To:      sendgrid.Address{Email: contact.Email, Name: contact.FullName()},
		Subject: msg.Subject,
		Text:    msg.Body,
	})
}

func NewEmailDelegate(sender MailSender, ledger Ledger, composer *Composer, logger *zap.Logger) *ChannelDelegate {
	return NewChannelDelegate(NewEmailTransport(sender), ledger, composer, logger)
}
