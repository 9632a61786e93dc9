package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bloodbank/internal/adapter/backend"
	"bloodbank/internal/dashboard"
	"bloodbank/internal/events"
	"bloodbank/internal/fulfillment"
	"bloodbank/internal/http/handlers"
	"bloodbank/internal/http/httpapi"
	"bloodbank/internal/infra"
	"bloodbank/internal/inventory"
	"bloodbank/internal/ledger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close store")
		}
	}()

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, infra.Component(logger, "events"))
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing fulfillment events")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close publisher")
		}
	}()

	aggregator := inventory.New(store, infra.Component(logger, "inventory"))
	app := &handlers.App{
		Repo:            store,
		Ledger:          ledger.New(store, nil, infra.Component(logger, "ledger")),
		Aggregator:      aggregator,
		Engine:          fulfillment.New(store, publisher, nil, infra.Component(logger, "fulfillment")),
		Reporter:        dashboard.New(store, aggregator, nil, infra.Component(logger, "dashboard")),
		DefaultBranchID: cfg.DefaultBranchID,
		Logger:          logger,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router, infra.Component(logger, "http"))
	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("http server failed")
		return
	}
	logger.Info().Msg("server stopped")
}
