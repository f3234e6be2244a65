package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/imec-int/monument-plwd-sub000/config"
	"github.com/imec-int/monument-plwd-sub000/module/core"
)

func main() {
	cfg := config.Load()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := config.NewPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to postgres", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	deps := core.Deps{DB: db}

	if cfg.RabbitMQURL != "" {
		amqpConn, err := config.NewRabbitMQ(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to rabbitmq", zap.Error(err))
		}
		defer func() { _ = amqpConn.Close() }()
		deps.AMQP = amqpConn
	}

	if cfg.RedisAddr != "" {
		redisClient, err := config.NewRedis(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		deps.Redis = redisClient
	}

	if cfg.MQTTBroker != "" {
		mqttClient, err := config.NewMQTT(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to mqtt", zap.Error(err))
		}
		defer mqttClient.Disconnect(250)
		deps.MQTT = mqttClient
	}

	coreModule, err := core.Build(cfg, deps, logger)
	if err != nil {
		logger.Fatal("Failed to build core module", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	alertCron, err := coreModule.NewAlertCron(ctx, cfg.AlertSchedule, logger)
	if err != nil {
		logger.Fatal("Failed to schedule alerts", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	config.NewHealthChecker(db, deps.Redis, deps.AMQP, deps.MQTT).Register(r)
	coreModule.RegisterRoutes(&r.RouterGroup)

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: r}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		alertCron.Start()
		logger.Info("Alert scheduler started",
			zap.String("schedule", cfg.AlertSchedule),
			zap.Any("channels", coreModule.Channels()),
		)
		<-gctx.Done()
		<-alertCron.Stop().Done()
		return nil
	})
	g.Go(func() error {
		if err := coreModule.StartSubscribers(); err != nil {
			return err
		}
		<-gctx.Done()
		return coreModule.StopSubscribers()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Info("Server stopped")
}
