// Package catalog holds the read-only product, order and policy data and the
// lookups the assistant runs over it.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Product is a store item.
type Product struct {
	ID             string         `json:"id"`
	Nome           string         `json:"nome"`
	Categoria      string         `json:"categoria"`
	Preco          float64        `json:"preco"`
	Descricao      string         `json:"descricao"`
	Especificacoes map[string]any `json:"especificacoes"`
	Disponivel     bool           `json:"disponivel"`
}

// UnmarshalJSON defaults Disponivel to true when the field is absent.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	aux := struct {
		*plain
		Disponivel *bool `json:"disponivel"`
	}{plain: (*plain)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.Disponivel = aux.Disponivel == nil || *aux.Disponivel
	if p.Especificacoes == nil {
		p.Especificacoes = map[string]any{}
	}
	return nil
}

// OrderItem is a product reference inside an order. Only the name is guaranteed.
type OrderItem struct {
	Nome       string  `json:"nome"`
	Quantidade int     `json:"quantidade,omitempty"`
	Preco      float64 `json:"preco,omitempty"`
}

// UnmarshalJSON accepts either {"nome": ...} or a bare product name.
func (i *OrderItem) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &i.Nome)
	}
	type plain OrderItem
	return json.Unmarshal(data, (*plain)(i))
}

// Order is a customer purchase.
type Order struct {
	PedidoID        string      `json:"pedido_id"`
	Status          string      `json:"status"`
	DataCompra      Date        `json:"data_compra"`
	PrevisaoEntrega Date        `json:"previsao_entrega"`
	Produtos        []OrderItem `json:"produtos"`
}

// ProductNames returns the names of the products in the order.
func (o Order) ProductNames() []string {
	names := make([]string, len(o.Produtos))
	for i, item := range o.Produtos {
		names[i] = item.Nome
	}
	return names
}

// UnmarshalJSON accepts numeric order ids.
func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	aux := struct {
		*plain
		PedidoID json.RawMessage `json:"pedido_id"`
	}{plain: (*plain)(o)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	id := bytes.TrimSpace(aux.PedidoID)
	switch {
	case len(id) == 0 || bytes.Equal(id, []byte("null")):
		o.PedidoID = ""
	case id[0] == '"':
		if err := json.Unmarshal(id, &o.PedidoID); err != nil {
			return err
		}
	default:
		o.PedidoID = string(id)
	}
	return nil
}

const dateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// ParseDate parses YYYY-MM-DD, falling back to RFC3339.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return Date{t}, nil
}

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Data is everything loaded at startup.
type Data struct {
	Products []Product
	Orders   []Order
	Policies string
}

// Validate enforces id uniqueness and non-negative prices.
func (d *Data) Validate() error {
	seen := make(map[string]struct{}, len(d.Products))
	for _, p := range d.Products {
		if p.ID == "" {
			return fmt.Errorf("product %q has no id", p.Nome)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("duplicate product id %s", p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Preco < 0 {
			return fmt.Errorf("product %s has negative price", p.ID)
		}
	}

	seenOrders := make(map[string]struct{}, len(d.Orders))
	for _, o := range d.Orders {
		if o.PedidoID == "" {
			return fmt.Errorf("order without pedido_id")
		}
		if _, dup := seenOrders[o.PedidoID]; dup {
			return fmt.Errorf("duplicate order id %s", o.PedidoID)
		}
		seenOrders[o.PedidoID] = struct{}{}
	}
	return nil
}
