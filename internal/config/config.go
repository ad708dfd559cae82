// Package config provides unified configuration loading for the assistant.
// Supports YAML files, .env files and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dropedev/MeuAssistente/internal/domain"
)

// PlaceholderAPIKey is the value shipped in the sample .env file. It is never a valid key.
const PlaceholderAPIKey = "your_openai_api_key_here"

// Config holds all configuration for the assistant.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Data          DataConfig          `yaml:"data"`
	Catalog       CatalogConfig       `yaml:"catalog"`
	LLM           LLMConfig           `yaml:"llm"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	Retrieval     RetrievalConfig     `yaml:"retrieval"`
	Cache         CacheConfig         `yaml:"cache"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// DataConfig locates the static data files.
type DataConfig struct {
	Dir          string `yaml:"dir"`
	ProductsFile string `yaml:"products_file"`
	OrdersFile   string `yaml:"orders_file"`
	PoliciesFile string `yaml:"policies_file"`
}

// CatalogConfig selects where products, orders and policies are read from.
type CatalogConfig struct {
	Driver string `yaml:"driver"` // json, sqlite or postgres
	DSN    string `yaml:"dsn"`
}

// LLMConfig holds generation service settings.
type LLMConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// EmbeddingConfig holds embedding model settings.
type EmbeddingConfig struct {
	Model     string        `yaml:"model"`
	Dimension int           `yaml:"dimension"`
	BatchSize int           `yaml:"batch_size"`
	Timeout   time.Duration `yaml:"timeout"`
	Mock      bool          `yaml:"mock"`
}

// RetrievalConfig holds retrieval settings.
type RetrievalConfig struct {
	ProductK     int `yaml:"product_k"`
	PolicyK      int `yaml:"policy_k"`
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// CacheConfig holds query embedding cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file and applies .env and environment overrides.
func Load(path string) (*Config, error) {
	cfg, err := LoadOffline(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, domain.ConfigError("validate config", err)
	}
	return cfg, nil
}

// LoadOffline is Load without the credential check, for commands that never
// call the generation or embedding services.
func LoadOffline(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.ConfigError("read config file", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, domain.ConfigError("parse config file", err)
		}
	}

	// A missing .env is fine; variables may come from the real environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, domain.ConfigError("load .env", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validateSettings(); err != nil {
		return nil, domain.ConfigError("validate config", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             5000,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     90 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Data: DataConfig{
			Dir:          "./data",
			ProductsFile: "produtos.json",
			OrdersFile:   "pedidos.json",
			PoliciesFile: "politicas.md",
		},
		Catalog: CatalogConfig{
			Driver: "json",
		},
		LLM: LLMConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-3.5-turbo",
			Temperature: 0.7,
			MaxTokens:   500,
			Timeout:     60 * time.Second,
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-3-small",
			Dimension: 1536,
			BatchSize: 64,
			Timeout:   30 * time.Second,
		},
		Retrieval: RetrievalConfig{
			ProductK:     5,
			PolicyK:      3,
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        30 * time.Minute,
			MaxEntries: 10000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "json",
			ServiceName: "assistente-api",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.ValidateCredentials(); err != nil {
		return err
	}
	return c.validateSettings()
}

// ValidateCredentials rejects a missing or placeholder API key.
func (c *Config) ValidateCredentials() error {
	key := strings.TrimSpace(c.LLM.APIKey)
	if key == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if key == PlaceholderAPIKey {
		return fmt.Errorf("OPENAI_API_KEY still holds the placeholder value")
	}
	return nil
}

func (c *Config) validateSettings() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Catalog.Driver {
	case "json":
		if c.Data.Dir == "" {
			return fmt.Errorf("data directory is required for the json catalog")
		}
	case "sqlite", "postgres":
		if c.Catalog.DSN == "" {
			return fmt.Errorf("catalog dsn is required for driver %s", c.Catalog.Driver)
		}
	default:
		return fmt.Errorf("invalid catalog driver: %s", c.Catalog.Driver)
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.Retrieval.ProductK < 1 || c.Retrieval.PolicyK < 1 {
		return fmt.Errorf("retrieval k values must be positive")
	}

	if c.Retrieval.ChunkSize < 1 || c.Retrieval.ChunkOverlap < 0 || c.Retrieval.ChunkOverlap >= c.Retrieval.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size)")
	}

	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ProductsPath returns the full path of the products file.
func (c *Config) ProductsPath() string {
	return filepath.Join(c.Data.Dir, c.Data.ProductsFile)
}

// OrdersPath returns the full path of the orders file.
func (c *Config) OrdersPath() string {
	return filepath.Join(c.Data.Dir, c.Data.OrdersFile)
}

// PoliciesPath returns the full path of the policy document.
func (c *Config) PoliciesPath() string {
	return filepath.Join(c.Data.Dir, c.Data.PoliciesFile)
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}

	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}

	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}

	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}

	if v := os.Getenv("API_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}

	if v := os.Getenv("CATALOG_DRIVER"); v != "" {
		cfg.Catalog.Driver = v
	}

	if v := os.Getenv("CATALOG_DSN"); v != "" {
		cfg.Catalog.DSN = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		// Parse redis://host:port format
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
