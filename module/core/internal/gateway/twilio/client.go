// Package twilio sends SMS and WhatsApp messages through the Twilio
// Programmable Messaging API.
package twilio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

const DefaultBaseURL = "https://api.twilio.com"

type Config struct {
	BaseURL      string
	AccountSID   string
	AuthToken    string
	From         string
	WhatsAppFrom string
	Timeout      time.Duration
	RetryCount   int
}

type messageResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type apiError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
}

type Client struct {
	http   *resty.Client
	cfg    Config
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
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json")

	return &Client{http: client, cfg: cfg, logger: logger}
}

// SendSMS sends body to the E.164 number to and returns the message SID.
func (c *Client) SendSMS(ctx context.Context, to, body string) (string, error) {
	return c.send(ctx, c.cfg.From, to, body)
}

// SendWhatsApp sends body over WhatsApp to the E.164 number to.
func (c *Client) SendWhatsApp(ctx context.Context, to, body string) (string, error) {
	return c.send(ctx, whatsAppAddress(c.cfg.WhatsAppFrom), whatsAppAddress(to), body)
}

func (c *Client) send(ctx context.Context, from, to, body string) (string, error) {
	var (
		result messageResponse
		apiErr apiError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("accountSid", c.cfg.AccountSID).
		SetFormData(map[string]string{
			"From": from,
			"To":   to,
			"Body": body,
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/2010-04-01/Accounts/{accountSid}/Messages.json")
	if err != nil {
		return "", fmt.Errorf("twilio request: %w", err)
	}

	if resp.IsError() {
		c.logger.Warn("Twilio rejected message",
			zap.Int("status_code", resp.StatusCode()),
			zap.Int("code", apiErr.Code),
			zap.String("message", apiErr.Message),
		)
		return "", fmt.Errorf("%w: twilio %d (code %d): %s", domain.ErrGatewayRejected, resp.StatusCode(), apiErr.Code, apiErr.Message)
	}

	return result.SID, nil
}

func whatsAppAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
