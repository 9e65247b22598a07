package session

import (
	"context"
	"errors"
	"sync"

	evbus "github.com/asaskevich/EventBus"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/core/ports"
)

// StorageKey is the client storage key holding the serialized bundle.
const StorageKey = "auth"

// TopicChanged is published on the session bus after every Set and Clear.
// Handlers have the signature func(context.Context, Change) and run
// synchronously, before Set or Clear returns. They must not publish on the
// same bus.
const TopicChanged = "session:changed"

// State is the position of the session in its two-state machine.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

func stateOf(b domain.CredentialBundle) State {
	if b.Authenticated() {
		return StateAuthenticated
	}
	return StateAnonymous
}

// Change describes one session mutation. Bundle is the bundle after the change.
type Change struct {
	From   State
	To     State
	Reason ports.ChangeReason
	Bundle domain.CredentialBundle
}

// TokenStore owns the in-memory credential bundle.
type TokenStore struct {
	bus evbus.Bus
	log zerolog.Logger

	// writeMu orders mutations together with their events so subscribers
	// observe changes in the order they were applied.
	writeMu sync.Mutex
	mu      sync.RWMutex
	bundle  domain.CredentialBundle
}

// NewTokenStore returns a store holding initial. Mutations are announced on bus.
func NewTokenStore(bus evbus.Bus, initial domain.CredentialBundle, log zerolog.Logger) *TokenStore {
	if !initial.Authenticated() {
		initial = domain.CredentialBundle{}
	}
	return &TokenStore{bus: bus, log: log, bundle: initial}
}

func (s *TokenStore) Get() domain.CredentialBundle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundle
}

// Set replaces the whole bundle.
func (s *TokenStore) Set(ctx context.Context, b domain.CredentialBundle, reason ports.ChangeReason) {
	s.apply(ctx, b, reason)
}

// Clear drops the bundle. Clearing an anonymous store leaves it anonymous.
func (s *TokenStore) Clear(ctx context.Context, reason ports.ChangeReason) {
	s.apply(ctx, domain.CredentialBundle{}, reason)
}

// ClearToken drops the bundle only while it still holds token, and reports
// whether it did. An empty token matches the anonymous store.
func (s *TokenStore) ClearToken(ctx context.Context, token string, reason ports.ChangeReason) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.Get().Token != token {
		return false
	}
	s.applyLocked(ctx, domain.CredentialBundle{}, reason)
	return true
}

func (s *TokenStore) apply(ctx context.Context, next domain.CredentialBundle, reason ports.ChangeReason) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.applyLocked(ctx, next, reason)
}

// applyLocked swaps the bundle and publishes the change. writeMu must be held.
func (s *TokenStore) applyLocked(ctx context.Context, next domain.CredentialBundle, reason ports.ChangeReason) {
	s.mu.Lock()
	prev := s.bundle
	s.bundle = next
	s.mu.Unlock()

	change := Change{From: stateOf(prev), To: stateOf(next), Reason: reason, Bundle: next}
	s.log.Debug().
		Str("from", string(change.From)).
		Str("to", string(change.To)).
		Str("reason", string(reason)).
		Msg("session changed")
	s.bus.Publish(TopicChanged, ctx, change)
}

// persistedBundle is the JSON shape kept under StorageKey.
type persistedBundle struct {
	Token    *string `json:"token"`
	Username *string `json:"username"`
	IDUser   *int64  `json:"idUser"`
	Rol      *string `json:"rol"`
}

func encodeBundle(b domain.CredentialBundle) ([]byte, error) {
	var p persistedBundle
	if b.Token != "" {
		p.Token = &b.Token
	}
	if b.Username != "" {
		p.Username = &b.Username
	}
	if b.UserID != 0 {
		p.IDUser = &b.UserID
	}
	if b.Role != "" {
		rol := string(b.Role)
		p.Rol = &rol
	}
	return sonic.Marshal(p)
}

func decodeBundle(raw []byte) (domain.CredentialBundle, error) {
	var p persistedBundle
	if err := sonic.Unmarshal(raw, &p); err != nil {
		return domain.CredentialBundle{}, err
	}
	if p.Token == nil || *p.Token == "" {
		return domain.CredentialBundle{}, nil
	}
	b := domain.CredentialBundle{Token: *p.Token}
	if p.Username != nil {
		b.Username = *p.Username
	}
	if p.IDUser != nil {
		b.UserID = *p.IDUser
	}
	if p.Rol != nil {
		b.Role = domain.Role(*p.Rol)
	}
	return b, nil
}

// Rehydrate reads the bundle persisted under StorageKey. A missing key,
// unreadable storage or malformed JSON all yield the anonymous bundle.
func Rehydrate(ctx context.Context, kv ports.KeyValueStore, log zerolog.Logger) domain.CredentialBundle {
	raw, err := kv.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, ports.ErrKeyNotFound) {
			log.Warn().Err(err).Msg("read persisted session, starting anonymous")
		}
		return domain.CredentialBundle{}
	}
	b, err := decodeBundle(raw)
	if err != nil {
		log.Warn().Err(err).Msg("malformed persisted session, starting anonymous")
		return domain.CredentialBundle{}
	}
	return b
}
