// Package config loads the gambit binary configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/gambit/pkg/narrative"
	"github.com/caarlos0/env/v11"
)

// Catalog formats.
const (
	CatalogYAML = "yaml"
	CatalogLoam = "loam"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds everything the gambit binary reads from GAMBIT_* variables.
// Cobra flags may override individual fields after parsing.
type Config struct {
	CatalogPath   string `env:"CATALOG" envDefault:"examples/catalog.yaml"`
	CatalogFormat string `env:"CATALOG_FORMAT"`

	Store        string        `env:"STORE" envDefault:"memory"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	// UserIDSecret, when set, stores an HMAC of each user ID instead of the ID.
	UserIDSecret string        `env:"USER_ID_SECRET"`

	Redis    RedisConfig    `envPrefix:"REDIS_"`
	SQLite   SQLiteConfig   `envPrefix:"SQLITE_"`
	Postgres PostgresConfig `envPrefix:"POSTGRES_"`

	Narrative narrative.Config `envPrefix:"NARRATIVE_"`

	Port      string `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	Metrics   bool   `env:"METRICS" envDefault:"true"`
}

// RedisConfig configures the Redis progress store and distributed locker.
type RedisConfig struct {
	Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB"`
	TTL      time.Duration `env:"TTL"`
	Lock     bool          `env:"LOCK" envDefault:"true"`
}

// SQLiteConfig configures the SQLite progress store.
type SQLiteConfig struct {
	Path string `env:"PATH" envDefault:"gambit.db"`
}

// PostgresConfig configures the Postgres progress store.
type PostgresConfig struct {
	DSN string `env:"DSN"`
}

// Load parses the environment into a Config and fills the narrative
// provider from vendor API keys when none is selected.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "GAMBIT_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Narrative.Discover()
	return cfg, nil
}

// ResolveCatalogFormat returns the explicit format, or infers it from the path:
// files ending in .yaml or .yml are YAML, anything else is a loam directory.
func (c Config) ResolveCatalogFormat() string {
	if c.CatalogFormat != "" {
		return c.CatalogFormat
	}
	if strings.HasSuffix(c.CatalogPath, ".yaml") || strings.HasSuffix(c.CatalogPath, ".yml") {
		return CatalogYAML
	}
	return CatalogLoam
}

// Validate checks the combination of settings.
func (c Config) Validate() error {
	if c.CatalogPath == "" {
		return fmt.Errorf("catalog path is required")
	}
	switch c.ResolveCatalogFormat() {
	case CatalogYAML, CatalogLoam:
	default:
		return fmt.Errorf("unknown catalog format: %q", c.CatalogFormat)
	}
	switch c.Store {
	case StoreMemory, StoreRedis, StoreSQLite:
	case StorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("GAMBIT_POSTGRES_DSN is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store backend: %q", c.Store)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %q", c.LogFormat)
	}
	return c.Narrative.Validate()
}
