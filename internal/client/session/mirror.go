package session

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/core/ports"
)

// Mirror writes every session change through to client storage. Storage is
// never read back after startup; failures are logged and the in-memory
// session stays authoritative.
type Mirror struct {
	kv  ports.KeyValueStore
	log zerolog.Logger
}

func NewMirror(kv ports.KeyValueStore, log zerolog.Logger) *Mirror {
	return &Mirror{kv: kv, log: log}
}

// Handle is the TopicChanged subscriber. The write outlives a cancelled
// caller so storage never keeps a session memory has dropped.
func (m *Mirror) Handle(ctx context.Context, c Change) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithoutCancel(ctx)
	if !c.Bundle.Authenticated() {
		if err := m.kv.Delete(ctx, StorageKey); err != nil {
			m.log.Warn().Err(err).Str("reason", string(c.Reason)).Msg("remove persisted session failed, continuing in memory")
		}
		return
	}

	raw, err := encodeBundle(c.Bundle)
	if err != nil {
		m.log.Warn().Err(err).Msg("encode session failed, continuing in memory")
		return
	}
	if err := m.kv.Set(ctx, StorageKey, raw); err != nil {
		m.log.Warn().Err(err).Msg("persist session failed, continuing in memory")
	}
}
