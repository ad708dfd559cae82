// Package assistant routes customer queries to retrieval, composes prompts and
// turns the generation service's reply into the chat response.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropedev/MeuAssistente/internal/catalog"
	"github.com/dropedev/MeuAssistente/internal/conversation"
	"github.com/dropedev/MeuAssistente/internal/domain"
	"github.com/dropedev/MeuAssistente/internal/intent"
	"github.com/dropedev/MeuAssistente/internal/llm"
	"github.com/dropedev/MeuAssistente/internal/observability"
)

// EmptyQueryMessage is the validation message for blank queries.
const EmptyQueryMessage = "Query não pode estar vazia"

// Catalog is the read side of the catalog the assistant needs.
type Catalog interface {
	FindProductByID(id string) (catalog.Product, bool)
	FindProductByName(name string) (catalog.Product, bool)
	SearchProducts(ctx context.Context, query string, filters catalog.SearchFilters, k int) ([]catalog.Product, error)
	GetRecommendations(ctx context.Context, query string, k int) ([]catalog.Product, error)
	FindOrder(id string) (catalog.Order, bool)
	SearchOrdersByStatus(status string) []catalog.Order
	SearchOrdersByProduct(name string) []catalog.Order
	SearchPolicies(ctx context.Context, query string, k int) (string, error)
}

// Options tunes retrieval sizes.
type Options struct {
	ProductK    int
	PolicyK     int
	ContextSize int
}

// DefaultOptions returns the retrieval sizes used when none are configured.
func DefaultOptions() Options {
	return Options{ProductK: catalog.DefaultProductK, PolicyK: catalog.DefaultPolicyK, ContextSize: 3}
}

// Result is the outcome of one processed query.
type Result struct {
	Intent   intent.Intent  `json:"intent"`
	Response string         `json:"response"`
	Data     map[string]any `json:"data,omitempty"`
}

// Assistant handles chat requests start to finish.
type Assistant struct {
	catalog   Catalog
	log       *conversation.Log
	generator llm.Generator
	opts      Options
	logger    *observability.Logger
}

// New creates an Assistant.
func New(cat Catalog, log *conversation.Log, gen llm.Generator, opts Options, logger *observability.Logger) *Assistant {
	def := DefaultOptions()
	if opts.ProductK <= 0 {
		opts.ProductK = def.ProductK
	}
	if opts.PolicyK <= 0 {
		opts.PolicyK = def.PolicyK
	}
	if opts.ContextSize <= 0 {
		opts.ContextSize = def.ContextSize
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Assistant{catalog: cat, log: log, generator: gen, opts: opts, logger: logger}
}

// History returns the user's conversation entries.
func (a *Assistant) History(userID string) []conversation.Entry {
	return a.log.History(userID)
}

// ClearHistory removes the user's conversation entries.
func (a *Assistant) ClearHistory(userID string) int {
	return a.log.Clear(userID)
}

// Process answers query for userID. Blank queries are rejected with a
// validation error before anything is recorded or any service is called.
// Failures of external services never surface as errors; they become the reply text.
func (a *Assistant) Process(ctx context.Context, userID, query string) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ValidationError(EmptyQueryMessage, nil)
	}
	if strings.TrimSpace(userID) == "" {
		userID = conversation.DefaultUserID
	}

	logger := a.logger.WithContext(ctx).WithUser(userID)

	in := intent.Classify(query)
	a.log.Record(userID, query, string(in))

	facts, data, err := a.retrieve(ctx, userID, in, query)
	if err != nil {
		logger.Warn().Err(err).Str("intent", string(in)).Msg("Retrieval failed")
		return &Result{Intent: in, Response: Fallback(err), Data: data}, nil
	}

	prompt := Compose(in, query, facts)

	start := time.Now()
	reply, err := a.generator.Generate(ctx, SystemPrompt, prompt)
	latency := time.Since(start)
	if err != nil {
		logger.Warn().Err(err).Str("intent", string(in)).Dur("latency", latency).Msg("Generation failed")
		reply = Fallback(err)
	} else {
		reply = strings.TrimSpace(reply)
		logger.Info().
			Str("intent", string(in)).
			Int("products", len(facts.Products)).
			Dur("latency", latency).
			Msg("Query answered")
	}

	return &Result{Intent: in, Response: reply, Data: data}, nil
}

// retrieve gathers the facts for in. data is what the API returns alongside the reply.
func (a *Assistant) retrieve(ctx context.Context, userID string, in intent.Intent, query string) (Facts, map[string]any, error) {
	switch in {
	case intent.ProductSearch:
		filters := catalog.SearchFilters{}
		if p, ok := intent.ExtractPriceCeiling(query); ok {
			filters.MaxPrice = &p
		}
		if c, ok := intent.ExtractCategory(query); ok {
			filters.Category = &c
		}
		data := map[string]any{"products": []catalog.Product{}, "filters": filters}
		products, err := a.catalog.SearchProducts(ctx, query, filters, a.opts.ProductK)
		if err != nil {
			return Facts{}, data, err
		}
		data["products"] = products
		return Facts{Products: products}, data, nil

	case intent.ProductExact:
		var product *catalog.Product
		if ref, ok := intent.ExtractProductRef(query); ok {
			var p catalog.Product
			var found bool
			if ref.ID != "" {
				p, found = a.catalog.FindProductByID(ref.ID)
			} else {
				p, found = a.catalog.FindProductByName(ref.Name)
			}
			if found {
				product = &p
			}
		}
		return Facts{Product: product}, map[string]any{"product": product}, nil

	case intent.OrderStatus:
		info, orderID, order := a.lookupOrder(query)
		data := map[string]any{"order_id": orderID, "order": order}
		return Facts{OrderInfo: info}, data, nil

	case intent.Policy:
		info, err := a.catalog.SearchPolicies(ctx, query, a.opts.PolicyK)
		if err != nil {
			return Facts{}, map[string]any{"policy_info": nil}, err
		}
		return Facts{PolicyInfo: info}, map[string]any{"policy_info": info}, nil

	case intent.Recommendation:
		data := map[string]any{"recommendations": []catalog.Product{}}
		products, err := a.catalog.GetRecommendations(ctx, query, a.opts.ProductK)
		if err != nil {
			return Facts{}, data, err
		}
		data["recommendations"] = products
		return Facts{Products: products}, data, nil

	default:
		recent := a.log.Recent(userID, a.opts.ContextSize)
		queries := make([]string, len(recent))
		for i, e := range recent {
			queries[i] = e.Query
		}
		return Facts{Recent: queries}, map[string]any{"context": renderRecent(queries)}, nil
	}
}

// lookupOrder finds order information by id, by status words, or by product name, in that order.
func (a *Assistant) lookupOrder(query string) (info string, orderID *string, order *catalog.Order) {
	if id, ok := intent.ExtractOrderID(query); ok {
		orderID = &id
		if o, found := a.catalog.FindOrder(id); found {
			order = &o
			return RenderOrder(o), orderID, order
		}
		return fmt.Sprintf("Pedido #%s não encontrado.", id), orderID, nil
	}

	if status, ok := intent.ExtractOrderStatusFilter(query); ok {
		orders := a.catalog.SearchOrdersByStatus(status)
		return RenderOrderList(orders, fmt.Sprintf("Nenhum pedido %s encontrado.", status)), nil, nil
	}

	if strings.Contains(strings.ToLower(query), "produto") {
		name, ok := intent.ExtractOrderProductName(query)
		if !ok {
			return OrderLookupImpossible, nil, nil
		}
		orders := a.catalog.SearchOrdersByProduct(name)
		return RenderOrderList(orders, fmt.Sprintf("Nenhum pedido encontrado com o produto %s.", name)), nil, nil
	}

	return OrderIDMissing, nil, nil
}
