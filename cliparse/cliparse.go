package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port           int           `env:"PORT" envDefault:"3318"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	DatabaseType   string        `env:"DATABASE_TYPE" envDefault:"sqlite"`
	SessionSecret  string        `env:"SESSION_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	StoreType      string        `env:"STORE_TYPE" envDefault:"sql"`
	RedisURL       string        `env:"REDIS_URL"`
	StoreTimeout   time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
	MatchLinkage   string        `env:"MATCH_LINKAGE" envDefault:"id"`
	BcryptCost     int           `env:"BCRYPT_COST"`
}

// ParseFlags builds the config from a .env file, the environment and CLI
// flags, in increasing priority
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	// A missing .env file is fine; variables already set are never overridden
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("hearthstone-tracker", flag.ContinueOnError)

	// Environment values become the flag defaults so CLI flags override them
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.StoreType, "store", cfg.StoreType, "State store (sql, redis or memory)")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL for the redis state store")
	fs.DurationVar(&cfg.StoreTimeout, "store-timeout", cfg.StoreTimeout, "Timeout for state store calls")
	fs.StringVar(&cfg.MatchLinkage, "linkage", cfg.MatchLinkage, "Match to deck linkage (id or name)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSecret, "session-secret", cfg.SessionSecret, "Session token secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}

	cfg.DatabaseType = strings.ToLower(cfg.DatabaseType)
	switch cfg.DatabaseType {
	case "sqlite":
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = "tracker.db"
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
	default:
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	cfg.StoreType = strings.ToLower(cfg.StoreType)
	switch cfg.StoreType {
	case "sql", "memory":
	case "redis":
		if cfg.RedisURL == "" {
			return Config{}, errors.New("REDIS_URL required for the redis store")
		}
	default:
		return Config{}, fmt.Errorf("unsupported store type %q", cfg.StoreType)
	}

	// Secrets - MUST be provided
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}

	return cfg, nil
}
