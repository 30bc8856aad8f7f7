package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,           default=8080"`
	Env      string `env:"ENV,            default=development"`
	LogLevel string `env:"LOG_LEVEL,      default=info"`
	// LogPretty switches to console output; keep false in production.
	LogPretty bool `env:"LOG_PRETTY,     default=false"`
	SeedDemo  bool `env:"SEED_DEMO_DATA, default=false"`

	JWT   JWTConfig
	Mongo MongoConfig
	Redis RedisConfig
	Push  PushConfig
}

type JWTConfig struct {
	Secret   string `env:"JWT_SECRET,   required"`
	Issuer   string `env:"JWT_ISSUER,   default=invoice-system"`
	Audience string `env:"JWT_AUDIENCE, default=invoice-system-clients"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=invoice_system"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// PushConfig tunes the asynchronous push queue. Fanout selects how pushes
// reach sockets: "redis" publishes to every instance, "local" delivers in-process.
type PushConfig struct {
	Workers      int           `env:"PUSH_WORKERS,       default=4"`
	QueueSize    int           `env:"PUSH_QUEUE_SIZE,    default=256"`
	MaxAttempts  int           `env:"PUSH_MAX_ATTEMPTS,  default=3"`
	RetryBackoff time.Duration `env:"PUSH_RETRY_BACKOFF, default=200ms"`
	Fanout       string        `env:"PUSH_FANOUT,        default=redis"`
}

const (
	FanoutRedis = "redis"
	FanoutLocal = "local"
)

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l. Tests pass an envconfig.MapLookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Push.Fanout {
	case FanoutRedis, FanoutLocal:
	default:
		return fmt.Errorf("PUSH_FANOUT must be %q or %q, got %q", FanoutRedis, FanoutLocal, c.Push.Fanout)
	}
	if c.Push.Workers <= 0 || c.Push.QueueSize <= 0 || c.Push.MaxAttempts <= 0 {
		return fmt.Errorf("PUSH_WORKERS, PUSH_QUEUE_SIZE and PUSH_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
