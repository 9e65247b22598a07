// Package cli implements the marketplace command-line client: it wires the
// session, the HTTP pipeline and the query layer, then runs one subcommand.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/client/marketplace"
	"github.com/marketplace/storefront/internal/client/navigation"
	"github.com/marketplace/storefront/internal/client/query"
	"github.com/marketplace/storefront/internal/client/session"
	"github.com/marketplace/storefront/internal/client/transport"
	"github.com/marketplace/storefront/internal/core/ports"
	"github.com/marketplace/storefront/internal/infrastructure/storage"
	"github.com/marketplace/storefront/internal/metrics"
	"github.com/marketplace/storefront/internal/pkg/config"
	"github.com/marketplace/storefront/internal/validation"
)

// App is one CLI invocation with its collaborators.
type App struct {
	cfg       *config.Config
	log       zerolog.Logger
	out       io.Writer
	kv        ports.KeyValueStore
	session   *session.Facade
	nav       *navigation.Tracker
	guard     *navigation.Guard
	accounts  *marketplace.Accounts
	pubs      *query.Publications
	validator *validation.Validator
}

// Options overrides parts of the wiring. Tests use it to inject storage.
type Options struct {
	Store ports.KeyValueStore
}

func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, out io.Writer, opts Options) (*App, error) {
	kv := opts.Store
	if kv == nil {
		var err error
		kv, err = storage.New(ctx, storage.Config{
			Driver:   cfg.Client.SessionDriver,
			FilePath: cfg.Client.SessionFile,
			Redis:    cfg.Redis.Connection(),
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open session storage: %w", err)
		}
	}

	s, err := session.New(ctx, kv, log.With().Str("component", "session").Logger())
	if err != nil {
		_ = kv.Close(ctx)
		return nil, err
	}
	if err := s.Subscribe(func(_ context.Context, c session.Change) {
		metrics.ObserveSessionChange(string(c.From), string(c.To), string(c.Reason))
	}); err != nil {
		_ = kv.Close(ctx)
		return nil, fmt.Errorf("subscribe session metrics: %w", err)
	}

	nav := navigation.NewTracker(navigation.PathHome, log)
	codec := session.NewCodec()
	httpLog := log.With().Str("component", "http").Logger()
	pipeline := transport.SessionPipeline{
		Session:   s,
		Decoder:   codec,
		Navigator: nav,
		LoginPath: cfg.Client.LoginPath,
		Logger:    httpLog,
	}.Build(nil)
	client := transport.NewClient(transport.Options{
		BaseURL:   cfg.Client.APIURL,
		Timeout:   cfg.Client.HTTPTimeout,
		Transport: pipeline,
		Logger:    httpLog,
	})

	return &App{
		cfg:       cfg,
		log:       log,
		out:       out,
		kv:        kv,
		session:   s,
		nav:       nav,
		guard:     navigation.NewGuard(s, nav, cfg.Client.LoginPath),
		accounts:  marketplace.NewAccounts(marketplace.NewAuthClient(client), codec, s, nav, navigation.PathHome, log),
		pubs:      query.NewPublications(marketplace.NewPublicationsClient(client), query.NewCache(query.DefaultStaleTime), cfg.Client.PageSize, log),
		validator: validation.New(),
	}, nil
}

// Location is where the last command left the client.
func (a *App) Location() string {
	return a.nav.Location()
}

func (a *App) Close(ctx context.Context) error {
	return a.kv.Close(ctx)
}
