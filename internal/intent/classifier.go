// Package intent classifies customer queries and extracts the parameters the
// retrieval step needs (order ids, price ceilings, categories, product references).
package intent

import (
	"regexp"
	"strings"
)

// Intent is the task category a query is routed to.
type Intent string

const (
	OrderStatus    Intent = "order_status"
	ProductExact   Intent = "product_exact"
	Policy         Intent = "policy"
	Recommendation Intent = "recommendation"
	ProductSearch  Intent = "product_search"
	General        Intent = "general"
)

// All lists every intent in rule order.
var All = []Intent{OrderStatus, ProductExact, Policy, Recommendation, ProductSearch, General}

// Fallback is returned when no rule matches.
const Fallback = ProductSearch

var (
	numberPattern      = regexp.MustCompile(`\d+`)
	productCodePattern = regexp.MustCompile(`prod\d+`)
)

// rule pairs a predicate over the query with the intent it selects.
// lower is the lowercased query.
type rule struct {
	intent Intent
	match  func(lower string) bool
}

// rules are evaluated in order and the first match wins. The order matters:
// an order number plus "pedido" must beat the product keywords further down.
var rules = []rule{
	{OrderStatus, func(q string) bool {
		return numberPattern.MatchString(q) &&
			containsAny(q, "pedido", "compra", "status", "entrega", "rastreamento", "onde está")
	}},
	{ProductExact, func(q string) bool {
		return productCodePattern.MatchString(q) ||
			containsAny(q, "qual o preço de", "informações sobre", "detalhes do")
	}},
	{Policy, func(q string) bool {
		return containsAny(q, "trocar", "devolver", "política", "prazo", "garantia", "cancelar")
	}},
	{Recommendation, func(q string) bool {
		return containsAny(q, "recomendar", "sugerir", "indicar", "presente", "gift")
	}},
	{ProductSearch, func(q string) bool {
		return containsAny(q, "buscar", "procurar", "quero", "preciso",
			"notebook", "smartphone", "celular", "computador", "tablet", "produto")
	}},
	{General, func(q string) bool {
		return containsAny(q, "oi", "olá", "bom dia", "boa tarde", "boa noite", "ajuda")
	}},
}

// Classify returns the intent of query. It is a pure function of the lowercased text.
func Classify(query string) Intent {
	lower := strings.ToLower(query)
	for _, r := range rules {
		if r.match(lower) {
			return r.intent
		}
	}
	return Fallback
}

// Valid reports whether s names a known intent.
func Valid(s string) bool {
	for _, i := range All {
		if string(i) == s {
			return true
		}
	}
	return false
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
