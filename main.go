package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"go.uber.org/multierr"

	"farmconnect/internal/app"
	"farmconnect/internal/config"
	"farmconnect/internal/database"
	"farmconnect/internal/services"
	"farmconnect/pkg/cache"
	"farmconnect/pkg/logger"
	"farmconnect/pkg/metrics"
	"farmconnect/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	_ = godotenv.Load() // .env is optional
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "farmconnect"}).Fatal(ctx, "invalid configuration", err)
	}
	log := logger.New(logger.Options{
		ServiceName: "farmconnect",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	// Money and kilograms render as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// --- Database ---
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal(ctx, "failed to connect to database", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(ctx, "failed to migrate database", err)
	}

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderMetrics(registry)

	deps := app.Deps{
		Config:    cfg,
		DB:        db,
		Logger:    log,
		Gatherer:  registry,
		Metrics:   orderMetrics,
		AccessLog: true,
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQ.URL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
			Queue:    cfg.RabbitMQ.Queue,
		}, log)
		if err != nil {
			log.Warn(ctx, "rabbitmq unavailable, order events disabled", err)
			mqClient = nil
		} else {
			deps.Publisher = mqClient
			auditor := services.NewOrderEventAuditor(log, orderMetrics)
			if err := mqClient.ConsumeOrderEvents(func(msg amqp.Delivery) error {
				err := auditor.Handle(ctx, msg.RoutingKey, msg.Body)
				if errors.Is(err, services.ErrMalformedEvent) {
					return rabbitmq.Permanent(err)
				}
				return err
			}); err != nil {
				log.Warn(ctx, "failed to start order event consumer", err)
			}
		}
	}

	// --- Redis (optional) ---
	var redisCache *cache.RedisCache
	if cfg.Redis.URL != "" {
		redisCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		redisCache, err = cache.NewRedis(redisCtx, cfg.Redis.URL)
		cancel()
		if err != nil {
			log.Warn(ctx, "redis unavailable, market data served uncached", err)
			redisCache = nil
		} else {
			deps.Cache = redisCache
		}
	}

	fiberApp := app.New(deps)

	// --- Start HTTP Server ---
	log.Infow(ctx, "starting server", map[string]any{"port": cfg.App.Port, "env": cfg.App.Env})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := fiberApp.Listen(cfg.App.Port); err != nil {
			log.Fatal(ctx, "server failed to start", err)
		}
	}()

	<-quit
	log.Info(ctx, "shutting down server")

	shutdownErr := fiberApp.ShutdownWithTimeout(10 * time.Second)
	if mqClient != nil {
		shutdownErr = multierr.Append(shutdownErr, mqClient.Close())
	}
	if redisCache != nil {
		shutdownErr = multierr.Append(shutdownErr, redisCache.Close())
	}
	if sqlDB, err := db.DB(); err == nil {
		shutdownErr = multierr.Append(shutdownErr, sqlDB.Close())
	}
	if shutdownErr != nil {
		log.Error(ctx, "errors during shutdown", shutdownErr)
	}
	log.Info(ctx, "server gracefully stopped")
}
