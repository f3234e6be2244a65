// Package sendgrid sends transactional email through the SendGrid v3 API.
package sendgrid

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

const DefaultBaseURL = "https://api.sendgrid.com"

type Config struct {
	BaseURL    string
	APIKey     string
	FromEmail  string
	FromName   string
	Timeout    time.Duration
	RetryCount int
}

type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Mail struct {
	To      Address
	Subject string
	Text    string
}

type personalization struct {
	To []Address `json:"to"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             Address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type errorResponse struct {
	Errors []struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"errors"`
}

type Client struct {
	http   *resty.Client
	from   Address
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:   client,
		from:   Address{Email: cfg.FromEmail, Name: cfg.FromName},
		logger: logger,
	}
}

// Send delivers a plain-text mail from the configured sender.
func (c *Client) Send(ctx context.Context, mail Mail) error {
	req := sendRequest{
		Personalizations: []personalization{{To: []Address{mail.To}}},
		From:             c.from,
		Subject:          mail.Subject,
		Content:          []content{{Type: "text/plain", Value: mail.Text}},
	}

	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetError(&apiErr).
		Post("/v3/mail/send")
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}

	if resp.IsError() {
		msg := resp.Status()
		if len(apiErr.Errors) > 0 {
			msg = apiErr.Errors[0].Message
		}
		c.logger.Warn("SendGrid rejected mail",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", msg),
		)
		return fmt.Errorf("%w: sendgrid %d: %s", domain.ErrGatewayRejected, resp.StatusCode(), msg)
	}

	return nil
}
