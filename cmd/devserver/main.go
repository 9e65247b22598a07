// Command devserver runs the development marketplace backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/api"
	"github.com/marketplace/storefront/internal/api/handler"
	"github.com/marketplace/storefront/internal/core/ports"
	"github.com/marketplace/storefront/internal/core/service"
	"github.com/marketplace/storefront/internal/infrastructure/db/memory"
	"github.com/marketplace/storefront/internal/infrastructure/db/mongo"
	"github.com/marketplace/storefront/internal/infrastructure/db/redis"
	"github.com/marketplace/storefront/internal/pkg/config"
	"github.com/marketplace/storefront/pkg/logger"
)

func main() {
	ctx := context.Background()

	if err := config.LoadDotEnv(); err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("failed to read .env")
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "devserver",
	})

	checks := map[string]handler.Check{}
	var (
		accounts     ports.AccountRepository
		publications ports.PublicationRepository
	)
	switch cfg.Server.StoreDriver {
	case "mongo":
		store, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open MongoDB")
		}
		defer func() {
			if err := store.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to close MongoDB")
			}
		}()
		accounts, publications = store.Accounts, store.Publications
		checks["mongodb"] = store.Ping
		log.Info().Str("database", cfg.Mongo.Database).Msg("using MongoDB store")
	case "", "memory":
		accounts, publications = memory.NewAccountRepository(), memory.NewPublicationRepository()
		log.Info().Msg("using in-memory store")
	default:
		log.Fatal().Str("driver", cfg.Server.StoreDriver).Msg("unsupported STORE_DRIVER")
	}

	if cfg.Server.CheckRedis {
		rdb, err := redis.Connect(ctx, cfg.Redis.Connection())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e := api.NewRouter(api.Deps{
		Accounts:     service.NewAuthService(accounts, cfg.Server.JWTSecret, cfg.Server.TokenTTL, logger.For(log, "auth")),
		Publications: service.NewPublicationService(publications, logger.For(log, "publications")),
		JWTSecret:    cfg.Server.JWTSecret,
		Checks:       checks,
		Registry:     registry,
		Logger:       log,
	})

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received")
	shutdown(e.Shutdown, log)
}

func shutdown(stop func(context.Context) error, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := stop(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	log.Info().Msg("server stopped")
}
