package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dropedev/MeuAssistente/internal/catalog"
	"github.com/dropedev/MeuAssistente/internal/embedding"
	"github.com/dropedev/MeuAssistente/internal/observability"
)

// Build stages reported to a ProgressFunc.
const (
	StageProducts = "produtos"
	StagePolicies = "políticas"
)

// ProgressFunc receives build progress for a stage. total is known up front.
type ProgressFunc func(stage string, done, total int)

// IndexConfig configures an Index.
type IndexConfig struct {
	BatchSize    int
	ChunkSize    int
	ChunkOverlap int
}

// Index is the semantic index over product documents and policy chunks.
// It is built once and read-only afterwards.
type Index struct {
	embedder  embedding.Embedder
	adapter   VectorAdapter
	chunker   *TextChunker
	batchSize int
	logger    *observability.Logger

	policyChunks atomic.Int64
}

// BuildStats summarizes a Build run.
type BuildStats struct {
	Products     int
	PolicyChunks int
	Duration     time.Duration
}

// NewIndex creates an index that embeds with embedder and stores vectors in adapter.
func NewIndex(embedder embedding.Embedder, adapter VectorAdapter, cfg IndexConfig, logger *observability.Logger) *Index {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Index{
		embedder:  embedder,
		adapter:   adapter,
		chunker:   NewTextChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		batchSize: cfg.BatchSize,
		logger:    logger,
	}
}

// Build embeds every product document and every policy chunk.
// progress may be nil.
func (idx *Index) Build(ctx context.Context, products []catalog.Product, policies string, progress ProgressFunc) (BuildStats, error) {
	start := time.Now()
	stats := BuildStats{}

	if len(products) > 0 {
		docs := make([]string, len(products))
		for i, p := range products {
			docs[i] = ProductDocument(p)
		}

		vectors, err := embedding.EmbedBatch(ctx, idx.embedder, docs, idx.batchSize, stageProgress(progress, StageProducts, len(docs)))
		if err != nil {
			return stats, fmt.Errorf("embed products: %w", err)
		}

		entries := make([]VectorEntry, len(products))
		for i, p := range products {
			entries[i] = VectorEntry{
				ID:     uuid.NewSHA1(uuid.NameSpaceURL, []byte("product:"+p.ID)),
				Kind:   KindProduct,
				Vector: vectors[i],
				Metadata: map[string]any{
					"product_id": p.ID,
					"category":   p.Categoria,
					"price":      p.Preco,
					"text":       docs[i],
				},
			}
		}
		if err := idx.adapter.Insert(ctx, entries); err != nil {
			return stats, fmt.Errorf("index products: %w", err)
		}
		stats.Products = len(entries)
	}

	chunks := idx.chunker.Split(policies)
	if len(chunks) > 0 {
		vectors, err := embedding.EmbedBatch(ctx, idx.embedder, chunks, idx.batchSize, stageProgress(progress, StagePolicies, len(chunks)))
		if err != nil {
			return stats, fmt.Errorf("embed policies: %w", err)
		}

		entries := make([]VectorEntry, len(chunks))
		for i, chunk := range chunks {
			entries[i] = VectorEntry{
				ID:     uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("policy:%d", i))),
				Kind:   KindPolicy,
				Vector: vectors[i],
				Metadata: map[string]any{
					"chunk": i,
					"text":  chunk,
				},
			}
		}
		if err := idx.adapter.Insert(ctx, entries); err != nil {
			return stats, fmt.Errorf("index policies: %w", err)
		}
		idx.policyChunks.Store(int64(len(entries)))
		stats.PolicyChunks = len(entries)
	}

	stats.Duration = time.Since(start)
	idx.logger.Info().
		Int("products", stats.Products).
		Int("policy_chunks", stats.PolicyChunks).
		Dur("duration", stats.Duration).
		Str("model", idx.embedder.Model()).
		Msg("Semantic index built")

	return stats, nil
}

// SearchProducts returns the k products nearest to query, best first.
func (idx *Index) SearchProducts(ctx context.Context, query string, k int) ([]catalog.ProductHit, error) {
	results, err := idx.search(ctx, query, k, KindProduct)
	if err != nil {
		return nil, err
	}

	hits := make([]catalog.ProductHit, 0, len(results))
	for _, r := range results {
		id, _ := r.Metadata["product_id"].(string)
		if id == "" {
			continue
		}
		hits = append(hits, catalog.ProductHit{ProductID: id, Score: r.Score})
	}
	return hits, nil
}

// SearchPolicies returns the text of the k policy chunks nearest to query.
func (idx *Index) SearchPolicies(ctx context.Context, query string, k int) ([]string, error) {
	results, err := idx.search(ctx, query, k, KindPolicy)
	if err != nil {
		return nil, err
	}

	chunks := make([]string, 0, len(results))
	for _, r := range results {
		if text, ok := r.Metadata["text"].(string); ok {
			chunks = append(chunks, text)
		}
	}
	return chunks, nil
}

// HasPolicies reports whether any policy chunk was indexed.
func (idx *Index) HasPolicies() bool {
	return idx.policyChunks.Load() > 0
}

func (idx *Index) search(ctx context.Context, query string, k int, kind string) ([]VectorResult, error) {
	vec, err := idx.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return idx.adapter.Search(ctx, vec, k, VectorFilters{Kind: kind})
}

// ProductDocument renders the text embedded for a product.
func ProductDocument(p catalog.Product) string {
	specs := p.Especificacoes
	if specs == nil {
		specs = map[string]any{}
	}
	specJSON, err := json.Marshal(specs)
	if err != nil {
		specJSON = []byte("{}")
	}

	available := "Sim"
	if !p.Disponivel {
		available = "Não"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Nome: %s\n", p.Nome)
	fmt.Fprintf(&b, "Categoria: %s\n", p.Categoria)
	fmt.Fprintf(&b, "Preço: R$ %.2f\n", p.Preco)
	fmt.Fprintf(&b, "Descrição: %s\n", p.Descricao)
	fmt.Fprintf(&b, "Especificações: %s\n", specJSON)
	fmt.Fprintf(&b, "Disponível: %s", available)
	return b.String()
}

func stageProgress(progress ProgressFunc, stage string, total int) func(int) {
	if progress == nil {
		return nil
	}
	progress(stage, 0, total)
	return func(done int) { progress(stage, done, total) }
}

var _ catalog.SemanticIndex = (*Index)(nil)
