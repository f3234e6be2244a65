package subscriber

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

const TopicPattern = "/carecircle/watch/+/location"

type locationService interface {
	SaveLocations(ctx context.Context, pings ...*domain.LocationPing) error
}

type locationMessage struct {
	WatchID   string  `json:"watch_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

func (m locationMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.WatchID, validation.Required),
		validation.Field(&m.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&m.Longitude, validation.Min(-180.0), validation.Max(180.0)),
		validation.Field(&m.Timestamp, validation.Required, validation.Min(int64(1))),
	)
}

// LocationSubscriber stores the pings watches publish over MQTT.
type LocationSubscriber struct {
	client      mqtt.Client
	locationSvc locationService
	logger      *zap.Logger
}

func NewLocationSubscriber(client mqtt.Client, locationSvc locationService, logger *zap.Logger) *LocationSubscriber {
	return &LocationSubscriber{
		client:      client,
		locationSvc: locationSvc,
		logger:      logger,
	}
}

func (s *LocationSubscriber) Start() error {
	token := s.client.Subscribe(TopicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) Stop() error {
	token := s.client.Unsubscribe(TopicPattern)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw locationMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		s.logger.Warn("Invalid location message", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}
	if raw.WatchID == "" {
		raw.WatchID = watchIDFromTopic(msg.Topic())
	}

	if err := raw.Validate(); err != nil {
		s.logger.Warn("Location message failed validation", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}

	ping := &domain.LocationPing{
		WatchID:   raw.WatchID,
		Location:  domain.Coordinate{Lat: raw.Latitude, Lng: raw.Longitude},
		Timestamp: time.Unix(raw.Timestamp, 0),
	}

	if err := s.locationSvc.SaveLocations(context.Background(), ping); err != nil {
		s.logger.Error("Failed to save location", zap.String("watch_id", ping.WatchID), zap.Error(err))
	}
}

// watchIDFromTopic extracts {id} from /carecircle/watch/{id}/location.
func watchIDFromTopic(topic string) string {
	parts := strings.Split(strings.Trim(topic, "/"), "/")
	if len(parts) != 4 || parts[0] != "carecircle" || parts[1] != "watch" || parts[3] != "location" {
		return ""
	}
	return parts[2]
}
