package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/marketplace/storefront/internal/infrastructure/db/redis"
)

type Config struct {
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Client ClientConfig
	Server ServerConfig
	Redis  RedisConfig
	Mongo  MongoConfig
}

// ClientConfig drives the CLI and its session pipeline.
type ClientConfig struct {
	APIURL        string        `env:"API_URL,        default=http://localhost:8080/"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT,   default=10s"`
	LoginPath     string        `env:"LOGIN_PATH,     default=/auth"`
	SessionDriver string        `env:"SESSION_DRIVER, default=file"`
	SessionFile   string        `env:"SESSION_FILE,   default=.marketplace/session.json"`
	PageSize      int           `env:"PAGE_SIZE,      default=12"`
}

// ServerConfig drives the development backend.
type ServerConfig struct {
	Port        string        `env:"PORT,         default=8080"`
	JWTSecret   string        `env:"JWT_SECRET,   default=dev-secret"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,    default=24h"`
	StoreDriver string        `env:"STORE_DRIVER, default=memory"`
	// CheckRedis adds the Redis session backend to the readiness probe.
	CheckRedis bool `env:"CHECK_REDIS, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=marketplace"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,   default=localhost:6379"`
	Username string `env:"REDIS_USERNAME"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,     default=0"`
	Prefix   string `env:"REDIS_PREFIX, default=marketplace:"`
}

// Connection returns the settings for redis.Connect.
func (r RedisConfig) Connection() redis.Config {
	return redis.Config{Addr: r.Addr, Username: r.Username, Password: r.Password, DB: r.DB}
}

// Development reports whether the process runs in the development environment.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through the given lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if cfg.Client.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("config: HTTP_TIMEOUT must be positive, got %s", cfg.Client.HTTPTimeout)
	}
	if cfg.Client.PageSize <= 0 {
		return nil, fmt.Errorf("config: PAGE_SIZE must be positive, got %d", cfg.Client.PageSize)
	}
	return &cfg, nil
}

// MustLoad is Load for binaries that cannot start without configuration.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(err)
	}
	return cfg
}
