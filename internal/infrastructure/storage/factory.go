package storage

import (
	"context"
	"fmt"

	"github.com/marketplace/storefront/internal/core/ports"
	"github.com/marketplace/storefront/internal/infrastructure/db/redis"
)

// Driver identifiers for client storage.
const (
	DriverFile   = "file"
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Config selects and configures a storage driver.
type Config struct {
	Driver   string
	FilePath string
	Redis    redis.Config
	Prefix   string
}

// New creates the KeyValueStore named by cfg.Driver. An empty driver means memory.
func New(ctx context.Context, cfg Config) (ports.KeyValueStore, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		return NewFile(cfg.FilePath)
	case DriverRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		return redis.NewKVStore(client, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", cfg.Driver)
	}
}
