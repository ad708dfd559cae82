package retrieval

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAdapter_SearchOrdersByCosine(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryAdapter()

	near := uuid.New()
	mid := uuid.New()
	far := uuid.New()
	require.NoError(t, a.Insert(ctx, []VectorEntry{
		{ID: far, Kind: KindProduct, Vector: []float32{0, 1}},
		{ID: near, Kind: KindProduct, Vector: []float32{2, 0}},
		{ID: mid, Kind: KindProduct, Vector: []float32{1, 1}},
	}))

	got, err := a.Search(ctx, []float32{1, 0}, 2, VectorFilters{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, near, got[0].ID)
	assert.Equal(t, mid, got[1].ID)
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
	assert.InDelta(t, 0.0, got[0].Distance, 1e-6)
}

func TestMemoryAdapter_KindFilterAndCount(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryAdapter()

	require.NoError(t, a.Insert(ctx, []VectorEntry{
		{ID: uuid.New(), Kind: KindProduct, Vector: []float32{1, 0}},
		{ID: uuid.New(), Kind: KindPolicy, Vector: []float32{1, 0}},
		{ID: uuid.New(), Kind: KindPolicy, Vector: []float32{0, 1}},
	}))

	got, err := a.Search(ctx, []float32{1, 0}, 10, VectorFilters{Kind: KindPolicy})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	n, _ := a.Count(ctx, KindPolicy)
	assert.Equal(t, 2, n)
	n, _ = a.Count(ctx, "")
	assert.Equal(t, 3, n)
}

func TestMemoryAdapter_TiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryAdapter()

	first, second := uuid.New(), uuid.New()
	require.NoError(t, a.Insert(ctx, []VectorEntry{
		{ID: first, Vector: []float32{1, 1}},
		{ID: second, Vector: []float32{2, 2}},
	}))

	got, err := a.Search(ctx, []float32{1, 1}, 2, VectorFilters{})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first, second}, []uuid.UUID{got[0].ID, got[1].ID})
}

func TestMemoryAdapter_ReinsertReplaces(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryAdapter()
	id := uuid.New()

	require.NoError(t, a.Insert(ctx, []VectorEntry{{ID: id, Vector: []float32{1, 0}, Metadata: map[string]any{"v": 1}}}))
	require.NoError(t, a.Insert(ctx, []VectorEntry{{ID: id, Vector: []float32{0, 1}, Metadata: map[string]any{"v": 2}}}))

	n, _ := a.Count(ctx, "")
	assert.Equal(t, 1, n)

	got, err := a.Search(ctx, []float32{0, 1}, 1, VectorFilters{})
	require.NoError(t, err)
	assert.Equal(t, 2, got[0].Metadata["v"])
}

func TestMemoryAdapter_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryAdapter()

	require.NoError(t, a.Insert(ctx, []VectorEntry{{ID: uuid.New(), Vector: []float32{1, 0}}}))

	err := a.Insert(ctx, []VectorEntry{{ID: uuid.New(), Vector: []float32{1, 0, 0}}})
	assert.ErrorIs(t, err, ErrVectorDimensionMismatch)

	_, err = a.Search(ctx, []float32{1, 0, 0}, 1, VectorFilters{})
	assert.ErrorIs(t, err, ErrVectorDimensionMismatch)

	err = a.Insert(ctx, []VectorEntry{{ID: uuid.New()}})
	assert.Error(t, err)
}

func TestMemoryAdapter_EmptyAndZeroK(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryAdapter()

	got, err := a.Search(ctx, []float32{1}, 3, VectorFilters{})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, a.Insert(ctx, []VectorEntry{{ID: uuid.New(), Vector: []float32{1}}}))
	got, err = a.Search(ctx, []float32{1}, 0, VectorFilters{})
	require.NoError(t, err)
	assert.Empty(t, got)
}
