// Package session owns the client's credential bundle: the token store, its
// persistence mirror, the token codec and the Facade the rest of the client
// talks to.
//
// The session has two states. Anonymous moves to Authenticated on Login;
// Authenticated moves back to Anonymous on Logout or when the HTTP pipeline
// invalidates it (expired token, undecodable token, 401 from the API).
package session

import (
	"context"
	"fmt"

	evbus "github.com/asaskevich/EventBus"
	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/core/ports"
)

var _ ports.SessionInvalidator = (*Facade)(nil)

// Facade is the single read/write surface of the session. Build one per
// process with New and pass it to whatever needs it.
type Facade struct {
	store *TokenStore
	bus   evbus.Bus
	log   zerolog.Logger
}

// New rehydrates the session from kv and subscribes a Mirror so that every
// later change is written back to kv.
func New(ctx context.Context, kv ports.KeyValueStore, log zerolog.Logger) (*Facade, error) {
	bus := evbus.New()
	initial := Rehydrate(ctx, kv, log)

	f := &Facade{
		store: NewTokenStore(bus, initial, log),
		bus:   bus,
		log:   log,
	}
	if err := f.Subscribe(NewMirror(kv, log).Handle); err != nil {
		return nil, fmt.Errorf("session: subscribe mirror: %w", err)
	}

	log.Debug().Bool("authenticated", initial.Authenticated()).Msg("session rehydrated")
	return f, nil
}

func (f *Facade) Bundle() domain.CredentialBundle {
	return f.store.Get()
}

func (f *Facade) IsAuthenticated() bool {
	return f.store.Get().Authenticated()
}

func (f *Facade) CurrentUser() domain.User {
	return f.store.Get().User()
}

// State reports the current state of the session.
func (f *Facade) State() State {
	return stateOf(f.store.Get())
}

// Login replaces the session with b. A role outside the known set is kept
// as issued.
func (f *Facade) Login(ctx context.Context, b domain.CredentialBundle) error {
	if b.Token == "" {
		return domain.ErrEmptyToken
	}
	if b.Role != "" && !b.Role.Valid() {
		f.log.Warn().Str("role", string(b.Role)).Msg("unknown role in credentials")
	}
	f.store.Set(ctx, b, ports.ReasonLogin)
	f.log.Info().Str("username", b.Username).Int64("user_id", b.UserID).Msg("logged in")
	return nil
}

func (f *Facade) Logout(ctx context.Context) {
	f.store.Clear(ctx, ports.ReasonLogout)
	f.log.Info().Msg("logged out")
}

// Invalidate clears the session on behalf of the HTTP pipeline. It is safe to
// call on an anonymous session.
func (f *Facade) Invalidate(ctx context.Context, reason ports.ChangeReason) {
	f.store.Clear(ctx, reason)
}

// InvalidateToken clears the session only while it still holds token, so a
// failure seen for an old token never ends a newer session.
func (f *Facade) InvalidateToken(ctx context.Context, token string, reason ports.ChangeReason) bool {
	return f.store.ClearToken(ctx, token, reason)
}

// Subscribe registers fn for every session change.
func (f *Facade) Subscribe(fn func(context.Context, Change)) error {
	return f.bus.Subscribe(TopicChanged, fn)
}
