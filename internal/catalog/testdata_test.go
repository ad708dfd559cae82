package catalog

import (
	"context"
	"errors"
)

func ptr[T any](v T) *T { return &v }

func sampleData() *Data {
	return &Data{
		Products: []Product{
			{ID: "PROD001", Nome: "Mouse Gamer", Categoria: "eletrônicos", Preco: 150, Disponivel: true, Especificacoes: map[string]any{"dpi": 16000.0}},
			{ID: "PROD002", Nome: "Mouse", Categoria: "eletrônicos", Preco: 50, Disponivel: true},
			{ID: "PROD003", Nome: "Notebook Pro", Categoria: "Eletrônicos", Preco: 4500, Disponivel: true},
			{ID: "PROD004", Nome: "Notebook Básico", Categoria: "eletrônicos", Preco: 2500, Disponivel: false},
			{ID: "PROD005", Nome: "Tênis de Corrida", Categoria: "esportes", Preco: 300, Disponivel: true},
			{ID: "PROD006", Nome: "Camisa Polo", Categoria: "roupas", Preco: 90, Disponivel: true},
		},
		Orders: []Order{
			{PedidoID: "12345", Status: "Em trânsito", Produtos: []OrderItem{{Nome: "Tênis de Corrida"}, {Nome: "Tênis Casual"}}},
			{PedidoID: "12346", Status: "Entregue", Produtos: []OrderItem{{Nome: "Notebook Pro"}}},
			{PedidoID: "12347", Status: "em trânsito", Produtos: []OrderItem{{Nome: "Camisa Polo"}}},
			{PedidoID: "12348", Status: "Cancelado", Produtos: []OrderItem{{Nome: "Produto Fora do Catálogo"}}},
		},
		Policies: "Trocas em até 30 dias.",
	}
}

// fakeIndex returns products in a fixed rank order and records the k it was asked for.
type fakeIndex struct {
	ranked      []string
	chunks      []string
	err         error
	lastK       int
	lastQuery   string
	hasPolicies bool
}

func (f *fakeIndex) SearchProducts(ctx context.Context, query string, k int) ([]ProductHit, error) {
	f.lastK = k
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	var hits []ProductHit
	for i, id := range f.ranked {
		if i >= k {
			break
		}
		hits = append(hits, ProductHit{ProductID: id, Score: 1 - float32(i)*0.1})
	}
	return hits, nil
}

func (f *fakeIndex) SearchPolicies(ctx context.Context, query string, k int) ([]string, error) {
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	if k > len(f.chunks) {
		k = len(f.chunks)
	}
	return f.chunks[:k], nil
}

func (f *fakeIndex) HasPolicies() bool { return f.hasPolicies }

var errIndexDown = errors.New("index down")
