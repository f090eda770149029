package config

import (
	"testing"
	"time"

	"github.com/aretw0/gambit/pkg/narrative"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearVendorKeys(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
}

func TestLoad_Defaults(t *testing.T) {
	clearVendorKeys(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "examples/catalog.yaml", cfg.CatalogPath)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Metrics)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, narrative.ProviderNone, cfg.Narrative.Provider)
	assert.Equal(t, 2048, cfg.Narrative.MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.Narrative.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Prefixed(t *testing.T) {
	clearVendorKeys(t)
	t.Setenv("GAMBIT_STORE", "postgres")
	t.Setenv("GAMBIT_POSTGRES_DSN", "postgres://localhost/gambit")
	t.Setenv("GAMBIT_REDIS_TTL", "1h")
	t.Setenv("GAMBIT_NARRATIVE_PROVIDER", "openai")
	t.Setenv("GAMBIT_NARRATIVE_OPENAI_API_KEY", "sk-test")
	t.Setenv("GAMBIT_NARRATIVE_OPENAI_MODEL", "gpt-4o")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "postgres://localhost/gambit", cfg.Postgres.DSN)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, narrative.ProviderOpenAI, cfg.Narrative.Provider)
	assert.Equal(t, "sk-test", cfg.Narrative.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Narrative.OpenAI.Model)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DiscoversVendorKey(t *testing.T) {
	clearVendorKeys(t)
	t.Setenv("ANTHROPIC_API_KEY", "ak-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, narrative.ProviderAnthropic, cfg.Narrative.Provider)
	assert.Equal(t, "ak-test", cfg.Narrative.Anthropic.APIKey)
}

func TestResolveCatalogFormat(t *testing.T) {
	tests := []struct {
		path, format, want string
	}{
		{"examples/catalog.yaml", "", CatalogYAML},
		{"catalog.yml", "", CatalogYAML},
		{"examples/scenarios", "", CatalogLoam},
		{"catalog.yaml", CatalogLoam, CatalogLoam},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			cfg := Config{CatalogPath: tt.path, CatalogFormat: tt.format}
			assert.Equal(t, tt.want, cfg.ResolveCatalogFormat())
		})
	}
}

func TestValidate(t *testing.T) {
	base := Config{CatalogPath: "c.yaml", Store: StoreMemory, LogFormat: "text"}
	require.NoError(t, base.Validate())

	tests := map[string]func(*Config){
		"empty catalog":   func(c *Config) { c.CatalogPath = "" },
		"bad format":      func(c *Config) { c.CatalogFormat = "toml" },
		"bad store":       func(c *Config) { c.Store = "mongo" },
		"postgres no dsn": func(c *Config) { c.Store = StorePostgres },
		"bad log format":  func(c *Config) { c.LogFormat = "xml" },
		"bad provider":    func(c *Config) { c.Narrative.Provider = "cohere" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
