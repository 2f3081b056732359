package config

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the process-wide configuration, loaded once at startup and never
// mutated afterwards, so it is safe for concurrent reads.
type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret signs access tokens. The default exists only for local
	// development; Validate rejects it in production.
	JWTSecret string `env:"JWT_SECRET, default=dev-insecure-secret"`

	BcryptCost      int           `env:"BCRYPT_COST,       default=8"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=168h"`
	ResetTokenTTL   time.Duration `env:"RESET_TOKEN_TTL,   default=1h"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=reservation_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

var ErrInsecureSecret = errors.New("config: JWT_SECRET must be set in production")

// Load reads configuration from environment variables using go-envconfig and
// validates it. Missing required startup configuration aborts the process at
// the call site.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces the fail-fast startup invariants.
func (c *Config) Validate() error {
	if c.Env == "production" && (c.JWTSecret == "" || c.JWTSecret == "dev-insecure-secret") {
		return ErrInsecureSecret
	}
	return nil
}
