package notifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, to, body string) (string, error)
}

type TextMessageTransport struct {
	sender SMSSender
}

func NewTextMessageTransport(sender SMSSender) *TextMessageTransport {
	return &TextMessageTransport{sender: sender}
}

func (t *TextMessageTransport) Channel() domain.Channel { return domain.ChannelTextMessage }

func (t *TextMessageTransport) Deliver(ctx context.Context, to domain.Recipient, msg Message) error {
	phone := to.ContactInfo().Phone
	if phone == "" {
		return domain.ErrMissingAddress
	}
	_, err := t.sender.SendSMS(ctx, phone, msg.Body)
	return err
}

type WhatsAppTransport struct {
	sender WhatsAppSender
}

func NewWhatsAppTransport(sender WhatsAppSender) *WhatsAppTransport {
	return &WhatsAppTransport{sender: sender}
}

func (t *WhatsAppTransport) Channel() domain.Channel { return domain.ChannelWhatsApp }

func (t *WhatsAppTransport) Deliver(ctx context.Context, to domain.Recipient, msg Message) error {
	phone := to.ContactInfo().Phone
	if phone == "" {
		return domain.ErrMissingAddress
	}
	_, err := t.sender.SendWhatsApp(ctx, phone, msg.Body)
	return err
}

func NewTextMessageDelegate(sender SMSSender, ledger Ledger, composer *Composer, logger *zap.Logger) *ChannelDelegate {
	return NewChannelDelegate(NewTextMessageTransport(sender), ledger, composer, logger)
}

func NewWhatsAppDelegate(sender WhatsAppSender, ledger Ledger, composer *Composer, logger *zap.Logger) *ChannelDelegate {
	return NewChannelDelegate(NewWhatsAppTransport(sender), ledger, composer, logger)
}
