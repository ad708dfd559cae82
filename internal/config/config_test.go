package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropedev/MeuAssistente/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 500, cfg.LLM.MaxTokens)
	assert.Equal(t, 5, cfg.Retrieval.ProductK)
	assert.Equal(t, 3, cfg.Retrieval.PolicyK)
	assert.Equal(t, 1000, cfg.Retrieval.ChunkSize)
	assert.Equal(t, 200, cfg.Retrieval.ChunkOverlap)
	assert.Equal(t, filepath.Join("data", "produtos.json"), cfg.ProductsPath())
	assert.Equal(t, filepath.Join("data", "pedidos.json"), cfg.OrdersPath())
	assert.Equal(t, filepath.Join("data", "politicas.md"), cfg.PoliciesPath())
}

func TestLoad_MissingKeyIsConfigError(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load("")
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
}

func TestLoad_PlaceholderKeyRejected(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", PlaceholderAPIKey)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "placeholder")
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := `
server:
  port: 9000
llm:
  api_key: sk-from-file
  model: gpt-4o-mini
retrieval:
  product_k: 7
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("API_PORT", "5050")
	t.Setenv("REDIS_URL", "redis://cache:6379")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5050, cfg.Server.Port)
	assert.Equal(t, "sk-from-file", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 7, cfg.Retrieval.ProductK)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "cache:6379", cfg.Cache.Redis.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"bad catalog driver", func(c *Config) { c.Catalog.Driver = "mongo" }, true},
		{"sqlite without dsn", func(c *Config) { c.Catalog.Driver = "sqlite" }, true},
		{"sqlite with dsn", func(c *Config) { c.Catalog.Driver = "sqlite"; c.Catalog.DSN = "file.db" }, false},
		{"bad cache driver", func(c *Config) { c.Cache.Driver = "memcached" }, true},
		{"zero k", func(c *Config) { c.Retrieval.ProductK = 0 }, true},
		{"overlap too large", func(c *Config) { c.Retrieval.ChunkOverlap = 1000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LLM.APIKey = "sk-test"
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadOffline_SkipsCredentialCheck(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := LoadOffline("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Catalog.Driver)
	assert.Error(t, cfg.ValidateCredentials())
}
