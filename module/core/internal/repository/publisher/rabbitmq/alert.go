package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
	"github.com/imec-int/monument-plwd-sub000/module/core/internal/repository/publisher"
)

var _ publisher.AlertPublisher = (*AlertPublisher)(nil)

const (
	ExchangeName = "carecircle.events"
	QueueName    = "wandering_alerts"
	eventType    = "wandering_alert"
)

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type AlertPublisher struct {
	ch channel
}

func NewAlertPublisher(conn *amqp.Connection) (*AlertPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &AlertPublisher{ch: ch}, nil
}

type alertMessage struct {
	Event          string        `json:"event"`
	EventID        string        `json:"event_id"`
	PLWDID         string        `json:"plwd_id"`
	WatchID        string        `json:"watch_id"`
	Destination    alertLocation `json:"destination"`
	Location       alertLocation `json:"location"`
	DistanceMeters float64       `json:"distance_meters"`
	Timestamp      int64         `json:"timestamp"`
}

type alertLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func toAlertMessage(alert *domain.WanderingAlert) alertMessage {
	return alertMessage{
		Event:   eventType,
		EventID: alert.EventID,
		PLWDID:  alert.PLWDID,
		WatchID: alert.WatchID,
		Destination: alertLocation{
			Latitude:  alert.Destination.Lat,
			Longitude: alert.Destination.Lng,
		},
		Location: alertLocation{
			Latitude:  alert.Location.Lat,
			Longitude: alert.Location.Lng,
		},
		DistanceMeters: alert.DistanceMeters,
		Timestamp:      alert.DetectedAt.Unix(),
	}
}

func (p *AlertPublisher) PublishAlert(ctx context.Context, alert *domain.WanderingAlert) error {
	body, err := json.Marshal(toAlertMessage(alert))
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	return p.ch.PublishWithContext(ctx, ExchangeName, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    alert.EventID + ":" + fmt.Sprint(alert.DetectedAt.Unix()),
		Body:         body,
	})
}
