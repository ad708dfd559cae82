package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dropedev/MeuAssistente/internal/domain"
)

// Schema is the table layout LoadFromSQL reads. It is portable between SQLite and Postgres.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		nome TEXT NOT NULL,
		categoria TEXT NOT NULL DEFAULT '',
		preco DOUBLE PRECISION NOT NULL DEFAULT 0,
		descricao TEXT NOT NULL DEFAULT '',
		especificacoes TEXT NOT NULL DEFAULT '{}',
		disponivel BOOLEAN NOT NULL DEFAULT TRUE,
		posicao INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		pedido_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		data_compra TEXT NOT NULL DEFAULT '',
		previsao_entrega TEXT NOT NULL DEFAULT '',
		posicao INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		pedido_id TEXT NOT NULL,
		posicao INTEGER NOT NULL,
		nome TEXT NOT NULL,
		quantidade INTEGER NOT NULL DEFAULT 0,
		preco DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (pedido_id, posicao)
	)`,
	`CREATE TABLE IF NOT EXISTS policies (
		posicao INTEGER PRIMARY KEY,
		conteudo TEXT NOT NULL
	)`,
}

type productRow struct {
	ID             string  `db:"id"`
	Nome           string  `db:"nome"`
	Categoria      string  `db:"categoria"`
	Preco          float64 `db:"preco"`
	Descricao      string  `db:"descricao"`
	Especificacoes string  `db:"especificacoes"`
	Disponivel     bool    `db:"disponivel"`
}

type orderRow struct {
	PedidoID        string `db:"pedido_id"`
	Status          string `db:"status"`
	DataCompra      string `db:"data_compra"`
	PrevisaoEntrega string `db:"previsao_entrega"`
}

type orderItemRow struct {
	PedidoID   string  `db:"pedido_id"`
	Nome       string  `db:"nome"`
	Quantidade int     `db:"quantidade"`
	Preco      float64 `db:"preco"`
}

// DriverName maps a catalog driver setting to a database/sql driver name.
func DriverName(driver string) (string, error) {
	switch driver {
	case "sqlite", "sqlite3":
		return "sqlite3", nil
	case "postgres", "postgresql":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported catalog driver: %s", driver)
	}
}

// Open connects to the catalog database.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	name, err := DriverName(driver)
	if err != nil {
		return nil, domain.ConfigError("open catalog", err)
	}
	db, err := sqlx.ConnectContext(ctx, name, dsn)
	if err != nil {
		return nil, domain.IOError("connect catalog database", err)
	}
	return db, nil
}

// LoadFromSQL reads the catalog from an already opened database.
func LoadFromSQL(ctx context.Context, db *sqlx.DB) (*Data, error) {
	data := &Data{Products: []Product{}, Orders: []Order{}}

	var products []productRow
	if err := db.SelectContext(ctx, &products,
		`SELECT id, nome, categoria, preco, descricao, especificacoes, disponivel FROM products ORDER BY posicao`); err != nil {
		return nil, domain.IOError("query products", err)
	}
	for _, row := range products {
		specs := map[string]any{}
		if s := strings.TrimSpace(row.Especificacoes); s != "" {
			if err := json.Unmarshal([]byte(s), &specs); err != nil {
				return nil, domain.IOError(fmt.Sprintf("parse especificacoes of %s", row.ID), err)
			}
		}
		if specs == nil {
			specs = map[string]any{}
		}
		data.Products = append(data.Products, Product{
			ID:             row.ID,
			Nome:           row.Nome,
			Categoria:      row.Categoria,
			Preco:          row.Preco,
			Descricao:      row.Descricao,
			Especificacoes: specs,
			Disponivel:     row.Disponivel,
		})
	}

	var orders []orderRow
	if err := db.SelectContext(ctx, &orders,
		`SELECT pedido_id, status, data_compra, previsao_entrega FROM orders ORDER BY posicao`); err != nil {
		return nil, domain.IOError("query orders", err)
	}

	var items []orderItemRow
	if err := db.SelectContext(ctx, &items,
		`SELECT pedido_id, nome, quantidade, preco FROM order_items ORDER BY pedido_id, posicao`); err != nil {
		return nil, domain.IOError("query order items", err)
	}
	itemsByOrder := make(map[string][]OrderItem)
	for _, it := range items {
		itemsByOrder[it.PedidoID] = append(itemsByOrder[it.PedidoID], OrderItem{
			Nome:       it.Nome,
			Quantidade: it.Quantidade,
			Preco:      it.Preco,
		})
	}

	for _, row := range orders {
		bought, err := ParseDate(row.DataCompra)
		if err != nil {
			return nil, domain.ValidationError(fmt.Sprintf("order %s data_compra", row.PedidoID), err)
		}
		due, err := ParseDate(row.PrevisaoEntrega)
		if err != nil {
			return nil, domain.ValidationError(fmt.Sprintf("order %s previsao_entrega", row.PedidoID), err)
		}
		produtos := itemsByOrder[row.PedidoID]
		if produtos == nil {
			produtos = []OrderItem{}
		}
		data.Orders = append(data.Orders, Order{
			PedidoID:        row.PedidoID,
			Status:          row.Status,
			DataCompra:      bought,
			PrevisaoEntrega: due,
			Produtos:        produtos,
		})
	}

	var chunks []string
	if err := db.SelectContext(ctx, &chunks, `SELECT conteudo FROM policies ORDER BY posicao`); err != nil {
		return nil, domain.IOError("query policies", err)
	}
	data.Policies = strings.Join(chunks, "\n\n")

	if err := data.Validate(); err != nil {
		return nil, domain.ValidationError("invalid catalog data", err)
	}

	return data, nil
}

// Import creates the schema and writes data into db in a single transaction.
// Used by the CLI to seed a database from the JSON data directory.
func Import(ctx context.Context, db *sqlx.DB, data *Data) error {
	if err := data.Validate(); err != nil {
		return domain.ValidationError("invalid catalog data", err)
	}

	for _, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return domain.IOError("create catalog schema", err)
		}
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.IOError("begin import", err)
	}
	defer tx.Rollback()

	insertProduct := tx.Rebind(`INSERT INTO products (id, nome, categoria, preco, descricao, especificacoes, disponivel, posicao) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, p := range data.Products {
		if p.Especificacoes == nil {
			p.Especificacoes = map[string]any{}
		}
		specs, err := json.Marshal(p.Especificacoes)
		if err != nil {
			return fmt.Errorf("marshal especificacoes of %s: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx, insertProduct, p.ID, p.Nome, p.Categoria, p.Preco, p.Descricao, string(specs), p.Disponivel, i); err != nil {
			return domain.IOError(fmt.Sprintf("insert product %s", p.ID), err)
		}
	}

	insertOrder := tx.Rebind(`INSERT INTO orders (pedido_id, status, data_compra, previsao_entrega, posicao) VALUES (?, ?, ?, ?, ?)`)
	insertItem := tx.Rebind(`INSERT INTO order_items (pedido_id, posicao, nome, quantidade, preco) VALUES (?, ?, ?, ?, ?)`)
	for i, o := range data.Orders {
		if _, err := tx.ExecContext(ctx, insertOrder, o.PedidoID, o.Status, o.DataCompra.String(), o.PrevisaoEntrega.String(), i); err != nil {
			return domain.IOError(fmt.Sprintf("insert order %s", o.PedidoID), err)
		}
		for j, item := range o.Produtos {
			if _, err := tx.ExecContext(ctx, insertItem, o.PedidoID, j, item.Nome, item.Quantidade, item.Preco); err != nil {
				return domain.IOError(fmt.Sprintf("insert item of order %s", o.PedidoID), err)
			}
		}
	}

	if data.Policies != "" {
		insertPolicy := tx.Rebind(`INSERT INTO policies (posicao, conteudo) VALUES (?, ?)`)
		if _, err := tx.ExecContext(ctx, insertPolicy, 0, data.Policies); err != nil {
			return domain.IOError("insert policies", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.IOError("commit import", err)
	}
	return nil
}
