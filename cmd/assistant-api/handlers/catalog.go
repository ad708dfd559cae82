package handlers

import (
	"net/http"

	"github.com/dropedev/MeuAssistente/internal/catalog"
	"github.com/dropedev/MeuAssistente/internal/observability"
)

// Catalog lists the loaded collections.
type Catalog interface {
	Products() []catalog.Product
	Orders() []catalog.Order
}

// CatalogHandler serves the raw catalog collections.
type CatalogHandler struct {
	logger  *observability.Logger
	catalog Catalog
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(logger *observability.Logger, c Catalog) *CatalogHandler {
	return &CatalogHandler{logger: logger, catalog: c}
}

// Products handles GET /products.
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]catalog.Product{"products": h.catalog.Products()})
}

// Orders handles GET /orders.
func (h *CatalogHandler) Orders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]catalog.Order{"orders": h.catalog.Orders()})
}
