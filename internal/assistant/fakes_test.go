package assistant

import (
	"context"
	"sync"

	"github.com/dropedev/MeuAssistente/internal/catalog"
)

// fakeGenerator records prompts and returns a canned reply or error.
type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	systems []string
}

func (g *fakeGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.systems = append(g.systems, system)
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func (g *fakeGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

// rankedIndex returns every product in a fixed order.
type rankedIndex struct {
	ranked   []string
	policies []string
	err      error
	searches int
}

func (r *rankedIndex) SearchProducts(ctx context.Context, query string, k int) ([]catalog.ProductHit, error) {
	r.searches++
	if r.err != nil {
		return nil, r.err
	}
	var hits []catalog.ProductHit
	for i, id := range r.ranked {
		if i >= k {
			break
		}
		hits = append(hits, catalog.ProductHit{ProductID: id})
	}
	return hits, nil
}

func (r *rankedIndex) SearchPolicies(ctx context.Context, query string, k int) ([]string, error) {
	r.searches++
	if r.err != nil {
		return nil, r.err
	}
	if k > len(r.policies) {
		k = len(r.policies)
	}
	return r.policies[:k], nil
}

func (r *rankedIndex) HasPolicies() bool { return len(r.policies) > 0 }

func testData() *catalog.Data {
	d, _ := catalog.ParseDate("2024-05-01")
	due, _ := catalog.ParseDate("2024-05-10")
	return &catalog.Data{
		Products: []catalog.Product{
			{ID: "PROD001", Nome: "Notebook Pro", Categoria: "eletrônicos", Preco: 4500, Descricao: "Potente", Disponivel: true, Especificacoes: map[string]any{"ram": "16GB"}},
			{ID: "PROD002", Nome: "Notebook Básico", Categoria: "eletrônicos", Preco: 2200, Descricao: "Simples", Disponivel: true},
			{ID: "PROD003", Nome: "Tênis de Corrida", Categoria: "esportes", Preco: 350, Descricao: "Leve", Disponivel: true},
			{ID: "PROD004", Nome: "Camisa Social", Categoria: "roupas", Preco: 120, Descricao: "Algodão", Disponivel: false},
		},
		Orders: []catalog.Order{
			{PedidoID: "12345", Status: "em trânsito", DataCompra: d, PrevisaoEntrega: due, Produtos: []catalog.OrderItem{{Nome: "Tênis de Corrida"}, {Nome: "Meia Esportiva"}}},
			{PedidoID: "12346", Status: "entregue", DataCompra: d, PrevisaoEntrega: due, Produtos: []catalog.OrderItem{{Nome: "Notebook Pro"}}},
		},
	}
}

func newTestAssistant(idx *rankedIndex, gen *fakeGenerator) (*Assistant, *catalog.Store) {
	store := catalog.NewStore(testData(), idx)
	return New(store, newLog(), gen, Options{}, nil), store
}
