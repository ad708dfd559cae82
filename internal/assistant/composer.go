package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dropedev/MeuAssistente/internal/catalog"
	"github.com/dropedev/MeuAssistente/internal/domain"
	"github.com/dropedev/MeuAssistente/internal/intent"
)

// Facts is what retrieval produced for a query. Only the fields relevant to
// the intent are read.
type Facts struct {
	Products   []catalog.Product // product_search, recommendation
	Product    *catalog.Product  // product_exact
	OrderInfo  string            // order_status, already rendered
	PolicyInfo string            // policy
	Recent     []string          // general: the user's latest queries
}

// Compose renders the user prompt for intent.
func Compose(in intent.Intent, query string, facts Facts) string {
	switch in {
	case intent.ProductSearch:
		return fmt.Sprintf(productSearchTemplate, query, renderProducts(facts.Products, NoProductsFound, true))
	case intent.ProductExact:
		info := ProductNotFound
		if facts.Product != nil {
			info = renderProductDetail(*facts.Product)
		}
		return fmt.Sprintf(productSearchTemplate, query, info)
	case intent.OrderStatus:
		info := facts.OrderInfo
		if strings.TrimSpace(info) == "" {
			info = OrderIDMissing
		}
		return fmt.Sprintf(orderStatusTemplate, query, info)
	case intent.Policy:
		info := facts.PolicyInfo
		if strings.TrimSpace(info) == "" {
			info = catalog.PoliciesUnavailable
		}
		return fmt.Sprintf(policyTemplate, query, info)
	case intent.Recommendation:
		return fmt.Sprintf(recommendationTemplate, query, renderProducts(facts.Products, NoRecommendationsFound, false))
	default:
		return fmt.Sprintf(generalTemplate, query, renderRecent(facts.Recent))
	}
}

// Fallback maps a generation failure to the reply shown to the user.
// Credential problems get a fixed message; anything else carries its description.
func Fallback(err error) string {
	if domain.IsType(err, domain.ErrorTypeAuth) {
		return AuthFallback
	}
	return genericFallbackPrefix + err.Error()
}

// RenderOrder describes one order.
func RenderOrder(o catalog.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pedido #%s\n", o.PedidoID)
	fmt.Fprintf(&b, "Status: %s\n", o.Status)
	fmt.Fprintf(&b, "Data da compra: %s\n", orEmpty(o.DataCompra.String()))
	fmt.Fprintf(&b, "Previsão de entrega: %s\n", orEmpty(o.PrevisaoEntrega.String()))
	fmt.Fprintf(&b, "Produtos: %s", strings.Join(o.ProductNames(), ", "))
	return b.String()
}

// RenderOrderList summarizes orders one per paragraph, or returns empty when there are none.
func RenderOrderList(orders []catalog.Order, empty string) string {
	if len(orders) == 0 {
		return empty
	}
	lines := make([]string, len(orders))
	for i, o := range orders {
		lines[i] = fmt.Sprintf("Pedido #%s: Status: %s", o.PedidoID, o.Status)
	}
	return strings.Join(lines, "\n\n")
}

func renderProducts(products []catalog.Product, empty string, withID bool) string {
	if len(products) == 0 {
		return empty
	}
	blocks := make([]string, len(products))
	for i, p := range products {
		var b strings.Builder
		fmt.Fprintf(&b, "**%s**\n", p.Nome)
		fmt.Fprintf(&b, "Categoria: %s\n", p.Categoria)
		fmt.Fprintf(&b, "Preço: %s\n", FormatBRL(p.Preco))
		fmt.Fprintf(&b, "Descrição: %s", p.Descricao)
		if withID {
			fmt.Fprintf(&b, "\nID: %s", p.ID)
		}
		blocks[i] = b.String()
	}
	return strings.Join(blocks, "\n\n")
}

func renderProductDetail(p catalog.Product) string {
	specs, err := json.Marshal(p.Especificacoes)
	if err != nil || p.Especificacoes == nil {
		specs = []byte("{}")
	}
	available := "Sim"
	if !p.Disponivel {
		available = "Não"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", p.Nome)
	fmt.Fprintf(&b, "Categoria: %s\n", p.Categoria)
	fmt.Fprintf(&b, "Preço: %s\n", FormatBRL(p.Preco))
	fmt.Fprintf(&b, "Descrição: %s\n", p.Descricao)
	fmt.Fprintf(&b, "Especificações: %s\n", specs)
	fmt.Fprintf(&b, "Disponível: %s\n", available)
	fmt.Fprintf(&b, "ID: %s", p.ID)
	return b.String()
}

func renderRecent(queries []string) string {
	if len(queries) == 0 {
		return NoRecentContext
	}
	lines := make([]string, len(queries))
	for i, q := range queries {
		lines[i] = "Usuário: " + q
	}
	return strings.Join(lines, "\n")
}

// FormatBRL formats a price as "R$ 1.234,56".
func FormatBRL(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)

	out := "R$ " + strings.Join(grouped, ".") + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}

func orEmpty(s string) string {
	if s == "" {
		return "não informada"
	}
	return s
}
