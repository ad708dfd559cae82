// Package app wires configuration into the running assistant components.
package app

import (
	"context"
	"io"

	"github.com/dropedev/MeuAssistente/internal/assistant"
	"github.com/dropedev/MeuAssistente/internal/cache"
	"github.com/dropedev/MeuAssistente/internal/catalog"
	"github.com/dropedev/MeuAssistente/internal/config"
	"github.com/dropedev/MeuAssistente/internal/conversation"
	"github.com/dropedev/MeuAssistente/internal/embedding"
	"github.com/dropedev/MeuAssistente/internal/llm"
	"github.com/dropedev/MeuAssistente/internal/observability"
	"github.com/dropedev/MeuAssistente/internal/retrieval"
)

// App holds the wired components.
type App struct {
	Config    *config.Config
	Logger    *observability.Logger
	Data      *catalog.Data
	Store     *catalog.Store
	Index     *retrieval.Index
	Stats     retrieval.BuildStats
	Log       *conversation.Log
	Assistant *assistant.Assistant

	closers []io.Closer
}

// Build loads the catalog, builds the semantic index and creates the assistant.
// progress may be nil.
func Build(ctx context.Context, cfg *config.Config, logger *observability.Logger, progress retrieval.ProgressFunc) (*App, error) {
	a := &App{Config: cfg, Logger: logger, Log: conversation.NewLog()}

	data, err := LoadCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Data = data

	idx, err := a.buildIndex(ctx, progress)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Index = idx
	a.Store = catalog.NewStore(data, idx)

	gen, err := llm.NewClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Assistant = assistant.New(a.Store, a.Log, gen, assistant.Options{
		ProductK: cfg.Retrieval.ProductK,
		PolicyK:  cfg.Retrieval.PolicyK,
	}, logger)

	return a, nil
}

// LoadCatalog reads the catalog from the JSON data directory or the configured SQL database.
func LoadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Data, error) {
	if cfg.Catalog.Driver == "json" {
		return catalog.LoadFromDir(cfg.Data.Dir, catalog.Files{
			Products: cfg.Data.ProductsFile,
			Orders:   cfg.Data.OrdersFile,
			Policies: cfg.Data.PoliciesFile,
		})
	}

	db, err := catalog.Open(ctx, cfg.Catalog.Driver, cfg.Catalog.DSN)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return catalog.LoadFromSQL(ctx, db)
}

// NewEmbedder returns the configured embedder wrapped with the query cache.
// The returned closer releases the cache.
func NewEmbedder(ctx context.Context, cfg *config.Config, logger *observability.Logger) (embedding.Embedder, io.Closer, error) {
	var inner embedding.Embedder
	if cfg.Embedding.Mock {
		inner = embedding.NewMockClient(cfg.Embedding.Dimension)
	} else {
		client, err := embedding.NewClient(embedding.Config{
			APIKey:    cfg.LLM.APIKey,
			BaseURL:   cfg.LLM.BaseURL,
			Model:     cfg.Embedding.Model,
			Dimension: cfg.Embedding.Dimension,
			Timeout:   cfg.Embedding.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		inner = client
	}

	var c cache.Client
	if cfg.Cache.Driver == "redis" {
		rc, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Cache.Redis.Addr).Msg("Redis unavailable, using in-memory cache")
			c = cache.NewMemoryClient(cfg.Cache.MaxEntries)
		} else {
			c = rc
		}
	} else {
		c = cache.NewMemoryClient(cfg.Cache.MaxEntries)
	}

	return retrieval.NewCachedEmbedder(inner, c, cfg.Cache.TTL, logger), c, nil
}

func (a *App) buildIndex(ctx context.Context, progress retrieval.ProgressFunc) (*retrieval.Index, error) {
	embedder, closer, err := NewEmbedder(ctx, a.Config, a.Logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closer)

	adapter := retrieval.NewMemoryAdapter()
	a.closers = append(a.closers, adapter)

	idx := retrieval.NewIndex(embedder, adapter, retrieval.IndexConfig{
		BatchSize:    a.Config.Embedding.BatchSize,
		ChunkSize:    a.Config.Retrieval.ChunkSize,
		ChunkOverlap: a.Config.Retrieval.ChunkOverlap,
	}, a.Logger)

	stats, err := idx.Build(ctx, a.Data.Products, a.Data.Policies, progress)
	if err != nil {
		return nil, err
	}
	a.Stats = stats

	return idx, nil
}

// Close releases the cache and vector store.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
