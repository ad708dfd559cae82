package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/dropedev/MeuAssistente/internal/cache"
	"github.com/dropedev/MeuAssistente/internal/embedding"
	"github.com/dropedev/MeuAssistente/internal/observability"
)

// CachedEmbedder caches single-text embeddings, which is what every query pays for.
// Batch calls made while building the index go straight to the inner embedder.
type CachedEmbedder struct {
	inner  embedding.Embedder
	cache  cache.Client
	ttl    time.Duration
	logger *observability.Logger
}

// NewCachedEmbedder wraps inner with a cache.
func NewCachedEmbedder(inner embedding.Embedder, c cache.Client, ttl time.Duration, logger *observability.Logger) *CachedEmbedder {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &CachedEmbedder{inner: inner, cache: c, ttl: ttl, logger: logger}
}

// Embed delegates to the inner embedder.
func (e *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return e.inner.Embed(ctx, texts)
}

// EmbedSingle serves from cache when possible. Cache failures only cost a lookup.
func (e *CachedEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	key := e.key(text)

	if raw, err := e.cache.Get(ctx, key); err == nil {
		var vec []float32
		if err := json.Unmarshal(raw, &vec); err == nil {
			return vec, nil
		}
		e.logger.Warn().Str("key", key).Msg("Discarding undecodable cached embedding")
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		e.logger.Warn().Err(err).Msg("Embedding cache read failed")
	}

	vec, err := e.inner.EmbedSingle(ctx, text)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(vec); err == nil {
		if err := e.cache.Set(ctx, key, raw, e.ttl); err != nil {
			e.logger.Warn().Err(err).Msg("Embedding cache write failed")
		}
	}
	return vec, nil
}

// Model returns the inner model name.
func (e *CachedEmbedder) Model() string {
	return e.inner.Model()
}

// Dimension returns the inner dimension.
func (e *CachedEmbedder) Dimension() int {
	return e.inner.Dimension()
}

func (e *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return cache.CacheKey("emb", e.inner.Model(), hex.EncodeToString(sum[:]))
}

var _ embedding.Embedder = (*CachedEmbedder)(nil)
