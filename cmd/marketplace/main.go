// Command marketplace is the command-line marketplace client.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marketplace/storefront/internal/cli"
	"github.com/marketplace/storefront/internal/pkg/config"
	"github.com/marketplace/storefront/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "marketplace"})

	app, err := cli.New(ctx, cfg, log, os.Stdout, cli.Options{})
	if err != nil {
		log.Error().Err(err).Msg("failed to start")
		return 1
	}
	defer func() {
		if err := app.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to close session storage")
		}
	}()

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, cli.ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}
