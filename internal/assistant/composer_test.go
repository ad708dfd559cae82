package assistant

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dropedev/MeuAssistente/internal/catalog"
	"github.com/dropedev/MeuAssistente/internal/domain"
	"github.com/dropedev/MeuAssistente/internal/intent"
)

func TestCompose_EmbedsQueryForEveryIntent(t *testing.T) {
	for _, in := range intent.All {
		prompt := Compose(in, "minha pergunta única", Facts{})
		assert.Contains(t, prompt, "minha pergunta única", string(in))
	}
}

func TestCompose_Sentinels(t *testing.T) {
	tests := []struct {
		in   intent.Intent
		want string
	}{
		{intent.ProductSearch, NoProductsFound},
		{intent.ProductExact, ProductNotFound},
		{intent.OrderStatus, OrderIDMissing},
		{intent.Policy, catalog.PoliciesUnavailable},
		{intent.Recommendation, NoRecommendationsFound},
		{intent.General, NoRecentContext},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Contains(t, Compose(tt.in, "q", Facts{}), tt.want)
		})
	}
}

func TestCompose_ProductList(t *testing.T) {
	products := []catalog.Product{
		{ID: "PROD001", Nome: "Notebook", Categoria: "eletrônicos", Preco: 3499.9, Descricao: "Rápido"},
		{ID: "PROD002", Nome: "Mouse", Categoria: "eletrônicos", Preco: 49, Descricao: "Sem fio"},
	}

	search := Compose(intent.ProductSearch, "q", Facts{Products: products})
	assert.Contains(t, search, "**Notebook**\nCategoria: eletrônicos\nPreço: R$ 3.499,90\nDescrição: Rápido\nID: PROD001\n\n**Mouse**")

	recs := Compose(intent.Recommendation, "q", Facts{Products: products})
	assert.Contains(t, recs, "Descrição: Rápido\n\n**Mouse**")
	assert.NotContains(t, recs, "ID: PROD001")
}

func TestRenderOrderList(t *testing.T) {
	orders := []catalog.Order{{PedidoID: "1", Status: "entregue"}, {PedidoID: "2", Status: "cancelado"}}
	assert.Equal(t, "Pedido #1: Status: entregue\n\nPedido #2: Status: cancelado", RenderOrderList(orders, "vazio"))
	assert.Equal(t, "vazio", RenderOrderList(nil, "vazio"))
}

func TestRenderOrder_MissingDates(t *testing.T) {
	out := RenderOrder(catalog.Order{PedidoID: "7", Status: "processando", Produtos: []catalog.OrderItem{{Nome: "A"}}})
	assert.Contains(t, out, "Data da compra: não informada")
	assert.Contains(t, out, "Produtos: A")
}

func TestFallback(t *testing.T) {
	auth := domain.AuthError("rejected", errors.New("secret detail"))
	assert.Equal(t, AuthFallback, Fallback(auth))
	assert.Equal(t, AuthFallback, Fallback(fmt.Errorf("wrapped: %w", auth)))

	generic := errors.New("connection reset")
	assert.Equal(t, "Desculpe, ocorreu um erro ao processar sua solicitação: connection reset", Fallback(generic))
}

func TestFormatBRL(t *testing.T) {
	tests := map[float64]string{
		0:          "R$ 0,00",
		9.5:        "R$ 9,50",
		999.99:     "R$ 999,99",
		1000:       "R$ 1.000,00",
		1234567.89: "R$ 1.234.567,89",
		-1500:      "-R$ 1.500,00",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatBRL(in), "%v", in)
	}
}
