package catalog

import (
	"context"
	"fmt"
	"strings"
)

const (
	// DefaultProductK is the number of products returned when k is not positive.
	DefaultProductK = 5
	// DefaultPolicyK is the number of policy chunks retrieved when k is not positive.
	DefaultPolicyK = 3

	// PoliciesUnavailable is returned by SearchPolicies when no policy index exists.
	PoliciesUnavailable = "Informações sobre políticas não disponíveis."
)

// ProductHit is one nearest-neighbor result from the semantic index.
type ProductHit struct {
	ProductID string
	Score     float32
}

// SemanticIndex is the similarity search the store delegates to.
type SemanticIndex interface {
	SearchProducts(ctx context.Context, query string, k int) ([]ProductHit, error)
	SearchPolicies(ctx context.Context, query string, k int) ([]string, error)
	HasPolicies() bool
}

// SearchFilters narrows SearchProducts results.
type SearchFilters struct {
	MaxPrice *float64 `json:"max_price"`
	Category *string  `json:"category"`
}

// Store serves read-only lookups over the loaded catalog. It is safe for
// concurrent use because nothing mutates it after construction.
type Store struct {
	products []Product
	orders   []Order
	byID     map[string]int
	orderIdx map[string]int
	index    SemanticIndex
}

// NewStore creates a store over data. index may be nil, in which case
// semantic searches return no results.
func NewStore(data *Data, index SemanticIndex) *Store {
	s := &Store{
		products: data.Products,
		orders:   data.Orders,
		byID:     make(map[string]int, len(data.Products)),
		orderIdx: make(map[string]int, len(data.Orders)),
		index:    index,
	}
	for i, p := range s.products {
		s.byID[p.ID] = i
	}
	for i, o := range s.orders {
		s.orderIdx[o.PedidoID] = i
	}
	return s
}

// Products returns all products in load order.
func (s *Store) Products() []Product {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// Orders returns all orders in load order.
func (s *Store) Orders() []Order {
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// FindProductByID returns the product with exactly this id.
func (s *Store) FindProductByID(id string) (Product, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

// FindProductByName prefers a case-insensitive exact name match and falls
// back to the first product, in load order, whose name contains name.
func (s *Store) FindProductByName(name string) (Product, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Product{}, false
	}

	for _, p := range s.products {
		if strings.EqualFold(p.Nome, name) {
			return p, true
		}
	}

	needle := strings.ToLower(name)
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Nome), needle) {
			return p, true
		}
	}
	return Product{}, false
}

// SearchProducts asks the index for 2k candidates and keeps, in rank order,
// the available ones that pass the filters, stopping at k.
func (s *Store) SearchProducts(ctx context.Context, query string, filters SearchFilters, k int) ([]Product, error) {
	if k <= 0 {
		k = DefaultProductK
	}

	hits, err := s.candidates(ctx, query, k*2)
	if err != nil {
		return nil, err
	}

	results := make([]Product, 0, k)
	for _, p := range hits {
		if len(results) >= k {
			break
		}
		if filters.MaxPrice != nil && p.Preco > *filters.MaxPrice {
			continue
		}
		if filters.Category != nil && !strings.EqualFold(p.Categoria, *filters.Category) {
			continue
		}
		if !p.Disponivel {
			continue
		}
		results = append(results, p)
	}
	return results, nil
}

// GetRecommendations returns available products among the k nearest to query.
func (s *Store) GetRecommendations(ctx context.Context, query string, k int) ([]Product, error) {
	if k <= 0 {
		k = DefaultProductK
	}

	hits, err := s.candidates(ctx, query, k)
	if err != nil {
		return nil, err
	}

	results := make([]Product, 0, len(hits))
	for _, p := range hits {
		if p.Disponivel {
			results = append(results, p)
		}
	}
	return results, nil
}

// FindOrder returns the order with exactly this id.
func (s *Store) FindOrder(id string) (Order, bool) {
	i, ok := s.orderIdx[id]
	if !ok {
		return Order{}, false
	}
	return s.orders[i], true
}

// SearchOrdersByStatus returns orders whose status contains status, ignoring case.
func (s *Store) SearchOrdersByStatus(status string) []Order {
	needle := strings.ToLower(status)
	var out []Order
	for _, o := range s.orders {
		if strings.Contains(strings.ToLower(o.Status), needle) {
			out = append(out, o)
		}
	}
	return out
}

// SearchOrdersByProduct returns orders listing a product whose name contains
// name, ignoring case. Each order appears at most once.
func (s *Store) SearchOrdersByProduct(name string) []Order {
	needle := strings.ToLower(strings.TrimSpace(name))
	var out []Order
	for _, o := range s.orders {
		for _, item := range o.Produtos {
			if strings.Contains(strings.ToLower(item.Nome), needle) {
				out = append(out, o)
				break
			}
		}
	}
	return out
}

// SearchPolicies joins the k policy chunks nearest to query with blank lines.
func (s *Store) SearchPolicies(ctx context.Context, query string, k int) (string, error) {
	if s.index == nil || !s.index.HasPolicies() {
		return PoliciesUnavailable, nil
	}
	if k <= 0 {
		k = DefaultPolicyK
	}

	chunks, err := s.index.SearchPolicies(ctx, query, k)
	if err != nil {
		return "", fmt.Errorf("search policies: %w", err)
	}
	return strings.Join(chunks, "\n\n"), nil
}

func (s *Store) candidates(ctx context.Context, query string, n int) ([]Product, error) {
	if s.index == nil {
		return nil, nil
	}

	hits, err := s.index.SearchProducts(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	products := make([]Product, 0, len(hits))
	for _, h := range hits {
		if p, ok := s.FindProductByID(h.ProductID); ok {
			products = append(products, p)
		}
	}
	return products, nil
}
