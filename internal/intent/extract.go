package intent

import (
	"regexp"
	"strconv"
	"strings"
)

var orderIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)#(\d+)`),
	regexp.MustCompile(`(?i)pedido\s*(\d+)`),
	regexp.MustCompile(`(?i)número\s*(\d+)`),
	regexp.MustCompile(`(\d{4,})`),
}

// ExtractOrderID returns the first order number found, trying "#N",
// "pedido N", "número N" and then any run of four or more digits.
func ExtractOrderID(query string) (string, bool) {
	for _, p := range orderIDPatterns {
		if m := p.FindStringSubmatch(query); m != nil {
			return m[1], true
		}
	}
	return "", false
}

const brlAmount = `(\d+(?:\.\d{3})*(?:,\d{2})?)`

var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)até\s*R?\$?\s*` + brlAmount),
	regexp.MustCompile(`(?i)máximo\s*R?\$?\s*` + brlAmount),
	regexp.MustCompile(`(?i)no\s*máximo\s*R?\$?\s*` + brlAmount),
	regexp.MustCompile(`(?i)R?\$?\s*` + brlAmount + `\s*reais?`),
}

// ExtractPriceCeiling returns the maximum price in a query such as
// "até R$ 1.200,50", "no máximo 300" or "500 reais".
func ExtractPriceCeiling(query string) (float64, bool) {
	for _, p := range pricePatterns {
		m := p.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		if v, ok := ParseBRL(m[1]); ok {
			return v, true
		}
	}
	return 0, false
}

// ParseBRL parses a Brazilian formatted amount: '.' groups thousands, ',' marks decimals.
func ParseBRL(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type categoryKeywords struct {
	category string
	keywords []string
}

// categories are checked in order; the first with a matching keyword wins.
var categories = []categoryKeywords{
	{"eletrônicos", []string{"notebook", "smartphone", "celular", "computador", "tablet"}},
	{"roupas", []string{"camisa", "calça", "vestido", "roupa", "blusa"}},
	{"casa", []string{"móvel", "decoração", "cozinha", "quarto", "sala"}},
	{"esportes", []string{"tênis", "bicicleta", "academia", "corrida", "futebol"}},
}

// ExtractCategory maps query keywords to a catalog category.
func ExtractCategory(query string) (string, bool) {
	lower := strings.ToLower(query)
	for _, c := range categories {
		if containsAny(lower, c.keywords...) {
			return c.category, true
		}
	}
	return "", false
}

// ProductRef identifies the product an exact lookup asks about: either a
// code (upper-cased, e.g. "PROD001") or a name fragment.
type ProductRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

var (
	productCodeRef = regexp.MustCompile(`(?i)(prod\d+)`)
	productNameRef = regexp.MustCompile(`(?i)informações sobre (.+)|detalhes do (.+)|qual o preço de (.+)`)
)

// ExtractProductRef prefers a "prodNNN" code and falls back to the name in
// "informações sobre X", "detalhes do X" or "qual o preço de X".
func ExtractProductRef(query string) (ProductRef, bool) {
	if m := productCodeRef.FindStringSubmatch(query); m != nil {
		return ProductRef{ID: strings.ToUpper(m[1])}, true
	}

	if m := productNameRef.FindStringSubmatch(query); m != nil {
		for _, g := range m[1:] {
			if name := cleanName(g); name != "" {
				return ProductRef{Name: name}, true
			}
		}
	}
	return ProductRef{}, false
}

// ExtractOrderStatusFilter maps status words in an order query without an id
// to the status to search for.
func ExtractOrderStatusFilter(query string) (string, bool) {
	lower := strings.ToLower(query)
	switch {
	case containsAny(lower, "em trânsito", "a caminho"):
		return "em trânsito", true
	case strings.Contains(lower, "entregue"):
		return "entregue", true
	case strings.Contains(lower, "cancelado"):
		return "cancelado", true
	}
	return "", false
}

var orderProductPattern = regexp.MustCompile(`(?i)produto (.+)`)

// ExtractOrderProductName returns X in an order query like "pedido com o produto X".
func ExtractOrderProductName(query string) (string, bool) {
	m := orderProductPattern.FindStringSubmatch(query)
	if m == nil {
		return "", false
	}
	name := cleanName(m[1])
	return name, name != ""
}

func cleanName(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "?!. ")
}

// Analysis is the classification of a query together with every parameter
// that could be extracted from it.
type Analysis struct {
	Intent       Intent      `json:"intent"`
	OrderID      *string     `json:"order_id,omitempty"`
	MaxPrice     *float64    `json:"max_price,omitempty"`
	Category     *string     `json:"category,omitempty"`
	Product      *ProductRef `json:"product,omitempty"`
	StatusFilter *string     `json:"status_filter,omitempty"`
}

// Analyze classifies query and runs all extractors over it.
func Analyze(query string) Analysis {
	a := Analysis{Intent: Classify(query)}
	if id, ok := ExtractOrderID(query); ok {
		a.OrderID = &id
	}
	if p, ok := ExtractPriceCeiling(query); ok {
		a.MaxPrice = &p
	}
	if c, ok := ExtractCategory(query); ok {
		a.Category = &c
	}
	if ref, ok := ExtractProductRef(query); ok {
		a.Product = &ref
	}
	if s, ok := ExtractOrderStatusFilter(query); ok {
		a.StatusFilter = &s
	}
	return a
}
