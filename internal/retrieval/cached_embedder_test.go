package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropedev/MeuAssistente/internal/cache"
	"github.com/dropedev/MeuAssistente/internal/embedding"
)

type countingEmbedder struct {
	*embedding.MockClient
	singles int
}

func (c *countingEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	c.singles++
	return c.MockClient.EmbedSingle(ctx, text)
}

type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("connection refused")
}
func (brokenCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("connection refused")
}
func (brokenCache) Delete(ctx context.Context, key string) error { return nil }
func (brokenCache) Close() error                                 { return nil }

func TestCachedEmbedder_HitsCache(t *testing.T) {
	inner := &countingEmbedder{MockClient: embedding.NewMockClient(32)}
	mem := cache.NewMemoryClient(100)
	defer mem.Close()

	e := NewCachedEmbedder(inner, mem, time.Minute, nil)
	ctx := context.Background()

	first, err := e.EmbedSingle(ctx, "notebook barato")
	require.NoError(t, err)
	second, err := e.EmbedSingle(ctx, "notebook barato")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.singles)
	assert.Equal(t, 1, mem.Len())

	_, err = e.EmbedSingle(ctx, "outra consulta")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.singles)
}

func TestCachedEmbedder_CacheFailuresAreIgnored(t *testing.T) {
	inner := &countingEmbedder{MockClient: embedding.NewMockClient(32)}
	e := NewCachedEmbedder(inner, brokenCache{}, time.Minute, nil)

	vec, err := e.EmbedSingle(context.Background(), "oi")
	require.NoError(t, err)
	assert.Len(t, vec, 32)
	assert.Equal(t, "mock-embedding-model", e.Model())
	assert.Equal(t, 32, e.Dimension())
}
