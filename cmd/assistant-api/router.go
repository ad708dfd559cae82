// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dropedev/MeuAssistente/cmd/assistant-api/handlers"
	"github.com/dropedev/MeuAssistente/cmd/assistant-api/middleware"
	"github.com/dropedev/MeuAssistente/internal/api/rpc"
	"github.com/dropedev/MeuAssistente/internal/assistant"
	"github.com/dropedev/MeuAssistente/internal/catalog"
	"github.com/dropedev/MeuAssistente/internal/observability"
)

// AppConfig holds router configuration. Requests carry no server-side
// deadline; the LLM and embedding clients bound their own calls.
type AppConfig struct {
	AllowedOrigins []string
}

// DefaultAppConfig returns default router settings.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		AllowedOrigins: []string{"*"},
	}
}

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *AppConfig, a *assistant.Assistant, store *catalog.Store) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.TraceID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	chatHandler := handlers.NewChatHandler(logger, a)
	catalogHandler := handlers.NewCatalogHandler(logger, store)

	r.Get("/", handlers.Root)
	r.Get("/health", handlers.Health)

	r.Post("/chat", chatHandler.Chat)

	r.Get("/history/{user_id}", chatHandler.History)
	r.Delete("/history/{user_id}", chatHandler.ClearHistory)

	r.Get("/products", catalogHandler.Products)
	r.Get("/orders", catalogHandler.Orders)

	path, svc := rpc.NewAssistantService(logger, a).Handler()
	r.Handle(path+"*", svc)

	return r
}
