// Package retrieval builds and queries the semantic index over products and policies.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Document kinds stored in the index.
const (
	KindProduct = "product"
	KindPolicy  = "policy"
)

// VectorAdapter defines the interface for vector similarity search.
type VectorAdapter interface {
	// Search finds the k nearest neighbors to the query vector.
	Search(ctx context.Context, query []float32, k int, filters VectorFilters) ([]VectorResult, error)

	// Insert adds vectors to the index.
	Insert(ctx context.Context, vectors []VectorEntry) error

	// Count returns the number of vectors of the given kind, or all when kind is empty.
	Count(ctx context.Context, kind string) (int, error)

	// Close releases resources.
	Close() error
}

// VectorFilters defines filtering options for vector search.
type VectorFilters struct {
	Kind string
}

// VectorEntry represents a vector to be indexed.
type VectorEntry struct {
	ID       uuid.UUID
	Kind     string
	Vector   []float32
	Metadata map[string]any
}

// VectorResult represents a search result.
type VectorResult struct {
	ID       uuid.UUID
	Distance float32
	Score    float32 // 1 - distance for cosine
	Metadata map[string]any
}

// ErrVectorDimensionMismatch indicates a dimension mismatch.
var ErrVectorDimensionMismatch = errors.New("vector dimension mismatch")

// MemoryAdapter is an exhaustive in-memory cosine index. Ties keep insertion order.
type MemoryAdapter struct {
	mu        sync.RWMutex
	dimension int
	entries   []indexedVector
	ids       map[uuid.UUID]int
}

type indexedVector struct {
	entry  VectorEntry
	vector []float32
}

// NewMemoryAdapter creates an empty adapter. The dimension is fixed by the first insert.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{ids: make(map[uuid.UUID]int)}
}

// Search finds the k nearest neighbors using cosine similarity.
func (a *MemoryAdapter) Search(ctx context.Context, query []float32, k int, filters VectorFilters) ([]VectorResult, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if k <= 0 || len(a.entries) == 0 {
		return []VectorResult{}, nil
	}
	if len(query) != a.dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrVectorDimensionMismatch, a.dimension, len(query))
	}

	q := normalizeVector(query)

	type scored struct {
		pos      int
		distance float32
	}

	results := make([]scored, 0, len(a.entries))
	for i, iv := range a.entries {
		if filters.Kind != "" && iv.entry.Kind != filters.Kind {
			continue
		}
		results = append(results, scored{pos: i, distance: cosineDistance(q, iv.vector)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].distance < results[j].distance
	})

	if k > len(results) {
		k = len(results)
	}

	output := make([]VectorResult, k)
	for i := 0; i < k; i++ {
		iv := a.entries[results[i].pos]
		output[i] = VectorResult{
			ID:       iv.entry.ID,
			Distance: results[i].distance,
			Score:    1 - results[i].distance,
			Metadata: iv.entry.Metadata,
		}
	}

	return output, nil
}

// Insert adds vectors to the index. Re-inserting an id replaces it in place.
func (a *MemoryAdapter) Insert(ctx context.Context, vectors []VectorEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, v := range vectors {
		if len(v.Vector) == 0 {
			return fmt.Errorf("empty vector for id %s", v.ID)
		}
		if a.dimension == 0 {
			a.dimension = len(v.Vector)
		}
		if len(v.Vector) != a.dimension {
			return fmt.Errorf("%w: expected %d, got %d for id %s",
				ErrVectorDimensionMismatch, a.dimension, len(v.Vector), v.ID)
		}

		iv := indexedVector{entry: v, vector: normalizeVector(v.Vector)}
		if pos, ok := a.ids[v.ID]; ok {
			a.entries[pos] = iv
			continue
		}
		a.ids[v.ID] = len(a.entries)
		a.entries = append(a.entries, iv)
	}

	return nil
}

// Count returns the number of vectors of kind, or of all kinds when kind is empty.
func (a *MemoryAdapter) Count(ctx context.Context, kind string) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if kind == "" {
		return len(a.entries), nil
	}
	n := 0
	for _, iv := range a.entries {
		if iv.entry.Kind == kind {
			n++
		}
	}
	return n, nil
}

// Close releases resources.
func (a *MemoryAdapter) Close() error {
	return nil
}

// normalizeVector returns a unit-length copy of v.
func normalizeVector(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}

	norm := float32(1 / math.Sqrt(sum))
	for i, x := range v {
		out[i] = x * norm
	}
	return out
}

// cosineDistance expects normalized inputs.
func cosineDistance(a, b []float32) float32 {
	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}
	return 1 - dot
}

var _ VectorAdapter = (*MemoryAdapter)(nil)
