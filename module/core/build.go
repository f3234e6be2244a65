package core

import (
	"database/sql"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/imec-int/monument-plwd-sub000/config"
	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
	"github.com/imec-int/monument-plwd-sub000/module/core/geo"
	"github.com/imec-int/monument-plwd-sub000/module/core/internal/gateway/sendgrid"
	"github.com/imec-int/monument-plwd-sub000/module/core/internal/gateway/twilio"
	handler "github.com/imec-int/monument-plwd-sub000/module/core/internal/handler/http"
	"github.com/imec-int/monument-plwd-sub000/module/core/internal/handler/subscriber"
	"github.com/imec-int/monument-plwd-sub000/module/core/internal/lock/redis"
	"github.com/imec-int/monument-plwd-sub000/module/core/internal/repository/database/postgres"
	"github.com/imec-int/monument-plwd-sub000/module/core/internal/repository/publisher/rabbitmq"
	"github.com/imec-int/monument-plwd-sub000/module/core/notifier"
	"github.com/imec-int/monument-plwd-sub000/module/core/service"
)

// Deps are the live connections the module runs on. Only DB is required;
// a nil AMQP, MQTT or Redis disables alert broadcast, ingestion or the
// run lock respectively.
type Deps struct {
	DB    *sql.DB
	AMQP  *amqp.Connection
	MQTT  mqtt.Client
	Redis *goredis.Client
}

type Module struct {
	LocationSvc     *service.LocationService
	EventSvc        *service.EventService
	NotificationSvc *service.NotificationService
	AlertSvc        *service.WanderingAlertService

	dispatcher *notifier.CompositeDispatcher
	handlers   []interface{ Register(r *gin.RouterGroup) }
	subscriber *subscriber.LocationSubscriber
}

func Build(cfg *config.Config, deps Deps, logger *zap.Logger) (*Module, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("core module: database is required")
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	locationRepo := postgres.NewLocationRepo(deps.DB)
	plwdRepo := postgres.NewPLWDRepo(deps.DB)
	eventRepo := postgres.NewEventRepo(deps.DB)
	notificationRepo := postgres.NewNotificationRepo(deps.DB)

	locationSvc := service.NewLocationService(locationRepo, plwdRepo)
	eventSvc := service.NewEventService(eventRepo, logger)
	notificationSvc := service.NewNotificationService(notificationRepo, logger)

	dispatcher := buildDispatcher(cfg, notificationSvc, notifier.NewComposer(cfg.PortalBaseURL, loc), logger)

	var distance service.DistanceEvaluator = geo.Evaluator{}
	if cfg.DistanceBackend == config.DistancePostGIS {
		distance = locationSvc
	}

	alertSvc := service.NewWanderingAlertService(
		eventSvc,
		plwdRepo,
		locationSvc,
		distance,
		dispatcher,
		service.WanderingAlertConfig{
			GeofenceRadiusMeters: cfg.GeofenceRadiusMeters,
			TriggerDelay:         cfg.TriggerDelay(),
			MaxLookback:          cfg.MaxLookback(),
		},
		logger.Named("wandering-alert"),
	)

	if deps.AMQP != nil {
		pub, err := rabbitmq.NewAlertPublisher(deps.AMQP)
		if err != nil {
			return nil, fmt.Errorf("alert publisher: %w", err)
		}
		alertSvc.WithPublisher(pub)
	}
	if deps.Redis != nil {
		alertSvc.WithRunLock(redis.NewRunLock(deps.Redis, redis.DefaultKey, cfg.RunLockTTL, logger))
	}

	m := &Module{
		LocationSvc:     locationSvc,
		EventSvc:        eventSvc,
		NotificationSvc: notificationSvc,
		AlertSvc:        alertSvc,
		dispatcher:      dispatcher,
		handlers: []interface{ Register(r *gin.RouterGroup) }{
			handler.NewLocationHandler(locationSvc),
			handler.NewEventHandler(eventSvc, notificationSvc, logger),
			handler.NewAlertHandler(alertSvc, logger),
		},
	}
	if deps.MQTT != nil {
		m.subscriber = subscriber.NewLocationSubscriber(deps.MQTT, locationSvc, logger.Named("subscriber"))
	}
	return m, nil
}

func buildDispatcher(cfg *config.Config, ledger notifier.Ledger, composer *notifier.Composer, logger *zap.Logger) *notifier.CompositeDispatcher {
	var delegates []notifier.Delegate

	if cfg.Notify.Console {
		delegates = append(delegates, notifier.NewConsoleDelegate(ledger, composer, logger))
	}
	if cfg.Notify.Email {
		mail := sendgrid.NewClient(sendgrid.Config{
			BaseURL:    cfg.SendGrid.BaseURL,
			APIKey:     cfg.SendGrid.APIKey,
			FromEmail:  cfg.SendGrid.FromEmail,
			FromName:   cfg.SendGrid.FromName,
			Timeout:    cfg.SendGrid.Timeout,
			RetryCount: cfg.SendGrid.RetryCount,
		}, logger)
		delegates = append(delegates, notifier.NewEmailDelegate(mail, ledger, composer, logger))
	}
	if cfg.Notify.TextMessage || cfg.Notify.WhatsApp {
		sms := twilio.NewClient(twilio.Config{
			BaseURL:      cfg.Twilio.BaseURL,
			AccountSID:   cfg.Twilio.AccountSID,
			AuthToken:    cfg.Twilio.AuthToken,
			From:         cfg.Twilio.From,
			WhatsAppFrom: cfg.Twilio.WhatsAppFrom,
			Timeout:      cfg.Twilio.Timeout,
			RetryCount:   cfg.Twilio.RetryCount,
		}, logger)
		if cfg.Notify.TextMessage {
			delegates = append(delegates, notifier.NewTextMessageDelegate(sms, ledger, composer, logger))
		}
		if cfg.Notify.WhatsApp {
			delegates = append(delegates, notifier.NewWhatsAppDelegate(sms, ledger, composer, logger))
		}
	}

	return notifier.NewCompositeDispatcher(logger, delegates...)
}

func (m *Module) Channels() []domain.Channel {
	return m.dispatcher.Channels()
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	for _, h := range m.handlers {
		h.Register(r)
	}
}

func (m *Module) StartSubscribers() error {
	if m.subscriber == nil {
		return nil
	}
	return m.subscriber.Start()
}

func (m *Module) StopSubscribers() error {
	if m.subscriber == nil {
		return nil
	}
	return m.subscriber.Stop()
}
