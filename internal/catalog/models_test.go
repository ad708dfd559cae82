package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_DisponivelDefaultsToTrue(t *testing.T) {
	var products []Product
	raw := `[
		{"id": "PROD001", "nome": "A", "preco": 10},
		{"id": "PROD002", "nome": "B", "preco": 10, "disponivel": false},
		{"id": "PROD003", "nome": "C", "preco": 10, "disponivel": true}
	]`
	require.NoError(t, json.Unmarshal([]byte(raw), &products))

	assert.True(t, products[0].Disponivel)
	assert.False(t, products[1].Disponivel)
	assert.True(t, products[2].Disponivel)
	assert.NotNil(t, products[0].Especificacoes)
}

func TestOrder_Unmarshal(t *testing.T) {
	raw := `{
		"pedido_id": 12345,
		"status": "em trânsito",
		"data_compra": "2024-05-01",
		"previsao_entrega": "2024-05-10T00:00:00Z",
		"produtos": [{"nome": "Tênis", "quantidade": 2}, "Meia"]
	}`

	var o Order
	require.NoError(t, json.Unmarshal([]byte(raw), &o))

	assert.Equal(t, "12345", o.PedidoID)
	assert.Equal(t, "2024-05-01", o.DataCompra.String())
	assert.Equal(t, "2024-05-10", o.PrevisaoEntrega.String())
	assert.Equal(t, []string{"Tênis", "Meia"}, o.ProductNames())
	assert.Equal(t, 2, o.Produtos[0].Quantidade)
}

func TestOrder_MarshalDates(t *testing.T) {
	d, err := ParseDate("2024-01-31")
	require.NoError(t, err)

	out, err := json.Marshal(Order{PedidoID: "1", DataCompra: d})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"data_compra":"2024-01-31"`)
	assert.Contains(t, string(out), `"previsao_entrega":null`)
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := ParseDate("31/01/2024")
	assert.Error(t, err)
}

func TestData_Validate(t *testing.T) {
	tests := []struct {
		name    string
		data    Data
		wantErr string
	}{
		{"ok", *sampleData(), ""},
		{"duplicate product", Data{Products: []Product{{ID: "P1"}, {ID: "P1"}}}, "duplicate product id"},
		{"negative price", Data{Products: []Product{{ID: "P1", Preco: -1}}}, "negative price"},
		{"missing product id", Data{Products: []Product{{Nome: "x"}}}, "has no id"},
		{"duplicate order", Data{Orders: []Order{{PedidoID: "1"}, {PedidoID: "1"}}}, "duplicate order id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
