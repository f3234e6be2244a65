package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/imec-int/monument-plwd-sub000/config"
	"github.com/imec-int/monument-plwd-sub000/module/core"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.Load()
	if path := cmd.String("config"); path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return err
		}
	}
	if schedule := cmd.String("schedule"); schedule != "" {
		cfg.AlertSchedule = schedule
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := config.NewPostgres(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	deps := core.Deps{DB: db}
	if cfg.RedisAddr != "" {
		redisClient, err := config.NewRedis(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
		deps.Redis = redisClient
	}
	if cfg.RabbitMQURL != "" && !cmd.Bool("no-broadcast") {
		amqpConn, err := config.NewRabbitMQ(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = amqpConn.Close() }()
		deps.AMQP = amqpConn
	}

	coreModule, err := core.Build(cfg, deps, logger)
	if err != nil {
		return fmt.Errorf("core module: %w", err)
	}

	if cmd.Bool("once") {
		summary, err := coreModule.AlertSvc.Tick(ctx)
		if err != nil {
			return fmt.Errorf("alert pass: %w", err)
		}
		logger.Info("Alert pass done", zap.Any("summary", summary))
		return nil
	}

	alertCron, err := coreModule.NewAlertCron(ctx, cfg.AlertSchedule, logger)
	if err != nil {
		return err
	}
	alertCron.Start()
	logger.Info("Alert scheduler started",
		zap.String("schedule", cfg.AlertSchedule),
		zap.Any("channels", coreModule.Channels()),
	)

	<-ctx.Done()
	<-alertCron.Stop().Done()
	logger.Info("Alert scheduler stopped")
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "scheduler",
		Usage:  "Periodically notify carecircles when a PLWD does not reach an ongoing appointment",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config overlay",
				Sources: cli.EnvVars("CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:  "schedule",
				Usage: "Cron expression overriding ALERT_SCHEDULE",
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Run a single pass and exit",
			},
			&cli.BoolFlag{
				Name:  "no-broadcast",
				Usage: "Do not publish wandering alerts to RabbitMQ",
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Printf("scheduler error: %v", err)
		os.Exit(1)
	}
}
