// Package main provides the assistant CLI entrypoint.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"

	"github.com/dropedev/MeuAssistente/internal/app"
	"github.com/dropedev/MeuAssistente/internal/assistant"
	"github.com/dropedev/MeuAssistente/internal/catalog"
	"github.com/dropedev/MeuAssistente/internal/config"
	"github.com/dropedev/MeuAssistente/internal/conversation"
	"github.com/dropedev/MeuAssistente/internal/intent"
	"github.com/dropedev/MeuAssistente/internal/observability"
	"github.com/dropedev/MeuAssistente/internal/retrieval"
)

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	noColor    bool
	verbose    bool

	ui *UI
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "assistant-cli",
	Short: "Command line tools for the e-commerce support assistant",
	Long: `assistant-cli exercises the assistant without the HTTP server.

Use this tool to:
- Inspect how a query is classified
- Ask the assistant a question
- Build the semantic index and inspect its size
- List or import the catalog

All commands support --json for automation.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui = NewUI(outputJSON, noColor)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ui.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newIndexCmd())
	rootCmd.AddCommand(newProductsCmd())
	rootCmd.AddCommand(newOrdersCmd())
	rootCmd.AddCommand(newImportCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *observability.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	format := "console"
	if outputJSON {
		format = "json"
	}
	return observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      format,
		Output:      os.Stderr,
		ServiceName: "assistant-cli",
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newClassifyCmd creates the classify subcommand.
func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <query>",
		Short: "Show the intent and extracted parameters of a query",
		Long:  `Classify runs the keyword rules and extractors locally. No service is called.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			a := intent.Analyze(query)

			if outputJSON {
				return printJSON(a)
			}

			ui.Section("Classificação")
			ui.KeyValue("Consulta", query)
			ui.KeyValue("Intenção", string(a.Intent))
			if a.OrderID != nil {
				ui.KeyValue("Pedido", *a.OrderID)
			}
			if a.StatusFilter != nil {
				ui.KeyValue("Status", *a.StatusFilter)
			}
			if a.MaxPrice != nil {
				ui.KeyValue("Preço máximo", assistant.FormatBRL(*a.MaxPrice))
			}
			if a.Category != nil {
				ui.KeyValue("Categoria", *a.Category)
			}
			if a.Product != nil {
				if a.Product.ID != "" {
					ui.KeyValue("Produto (ID)", a.Product.ID)
				} else {
					ui.KeyValue("Produto (nome)", a.Product.Name)
				}
			}
			return nil
		},
	}
}

// newChatCmd creates the chat subcommand.
func newChatCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "chat <query>",
		Short: "Ask the assistant one question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := newLogger()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			stop := ui.Spinner("Indexando catálogo...")
			application, err := app.Build(ctx, cfg, logger, nil)
			stop()
			if err != nil {
				return err
			}
			defer application.Close()

			stop = ui.Spinner("Pensando...")
			res, err := application.Assistant.Process(ctx, userID, strings.Join(args, " "))
			stop()
			if err != nil {
				return err
			}

			if outputJSON {
				return printJSON(res)
			}

			ui.Info("Intenção: %s", res.Intent)
			fmt.Println()
			fmt.Println(res.Response)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", conversation.DefaultUserID, "user id for the conversation log")
	return cmd
}

// newIndexCmd creates the index subcommand.
func newIndexCmd() *cobra.Command {
	var mock bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the semantic index and report its size",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOffline(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if mock {
				cfg.Embedding.Mock = true
			}
			if !cfg.Embedding.Mock {
				if err := cfg.ValidateCredentials(); err != nil {
					return fmt.Errorf("load config: %w", err)
				}
			}
			logger := newLogger()
			ctx := cmd.Context()

			ui.Step("Carregando catálogo (%s)", cfg.Catalog.Driver)
			data, err := app.LoadCatalog(ctx, cfg)
			if err != nil {
				return err
			}

			embedder, closer, err := app.NewEmbedder(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closer.Close()

			adapter := retrieval.NewMemoryAdapter()
			defer adapter.Close()

			idx := retrieval.NewIndex(embedder, adapter, retrieval.IndexConfig{
				BatchSize:    cfg.Embedding.BatchSize,
				ChunkSize:    cfg.Retrieval.ChunkSize,
				ChunkOverlap: cfg.Retrieval.ChunkOverlap,
			}, logger)

			stats, err := idx.Build(ctx, data.Products, data.Policies, progressBars())
			if err != nil {
				ui.Error("Falha ao indexar: %v", err)
				return err
			}
			ui.Close()

			if outputJSON {
				return printJSON(map[string]any{
					"model":         embedder.Model(),
					"products":      stats.Products,
					"policy_chunks": stats.PolicyChunks,
					"duration_ms":   stats.Duration.Milliseconds(),
				})
			}

			ui.Success("Índice construído em %s", stats.Duration.Round(time.Millisecond))
			ui.KeyValue("Modelo", embedder.Model())
			ui.KeyValue("Produtos", fmt.Sprint(stats.Products))
			ui.KeyValue("Trechos de política", fmt.Sprint(stats.PolicyChunks))
			if stats.PolicyChunks == 0 {
				ui.Warning("Nenhuma política indexada")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&mock, "mock", false, "use deterministic local embeddings")
	return cmd
}

// progressBars returns a ProgressFunc that draws one bar per stage.
func progressBars() retrieval.ProgressFunc {
	bars := make(map[string]*mpb.Bar)
	return func(stage string, done, total int) {
		if total == 0 {
			return
		}
		bar, ok := bars[stage]
		if !ok {
			bar = ui.ProgressBar(stage, int64(total))
			bars[stage] = bar
		}
		if bar != nil {
			bar.SetCurrent(int64(done))
		}
	}
}

// newProductsCmd creates the products subcommand.
func newProductsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog products",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadOfflineCatalog(cmd.Context())
			if err != nil {
				return err
			}

			if outputJSON {
				return printJSON(map[string]any{"products": data.Products})
			}

			rows := make([][]string, 0, len(data.Products))
			for _, p := range data.Products {
				available := "Sim"
				if !p.Disponivel {
					available = "Não"
				}
				rows = append(rows, []string{p.ID, p.Nome, p.Categoria, assistant.FormatBRL(p.Preco), available})
			}
			ui.Table([]string{"ID", "Nome", "Categoria", "Preço", "Disponível"}, rows)
			ui.Info("%d produtos", len(data.Products))
			return nil
		},
	}
}

// newOrdersCmd creates the orders subcommand.
func newOrdersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List the orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadOfflineCatalog(cmd.Context())
			if err != nil {
				return err
			}

			if outputJSON {
				return printJSON(map[string]any{"orders": data.Orders})
			}

			rows := make([][]string, 0, len(data.Orders))
			for _, o := range data.Orders {
				rows = append(rows, []string{
					o.PedidoID,
					o.Status,
					orDash(o.DataCompra.String()),
					orDash(o.PrevisaoEntrega.String()),
					strings.Join(o.ProductNames(), ", "),
				})
			}
			ui.Table([]string{"Pedido", "Status", "Compra", "Previsão", "Produtos"}, rows)
			ui.Info("%d pedidos", len(data.Orders))
			return nil
		},
	}
}

// newImportCmd creates the import subcommand.
func newImportCmd() *cobra.Command {
	var (
		driver string
		dsn    string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy the JSON data directory into a SQL catalog",
		Long: `Import reads produtos.json, pedidos.json and politicas.md from the data
directory and writes them to a SQLite or Postgres database that the API can
then use with catalog.driver set to sqlite or postgres.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOffline(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx := cmd.Context()

			data, err := catalog.LoadFromDir(cfg.Data.Dir, catalog.Files{
				Products: cfg.Data.ProductsFile,
				Orders:   cfg.Data.OrdersFile,
				Policies: cfg.Data.PoliciesFile,
			})
			if err != nil {
				return err
			}

			ui.Step("Conectando a %s", driver)
			db, err := catalog.Open(ctx, driver, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := catalog.Import(ctx, db, data); err != nil {
				ui.Error("Falha na importação: %v", err)
				return err
			}

			if outputJSON {
				return printJSON(map[string]int{
					"products": len(data.Products),
					"orders":   len(data.Orders),
				})
			}

			ui.Success("Importados %d produtos e %d pedidos", len(data.Products), len(data.Orders))
			return nil
		},
	}

	cmd.Flags().StringVar(&driver, "driver", "sqlite", "target database driver (sqlite or postgres)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "target database DSN")
	_ = cmd.MarkFlagRequired("dsn")
	return cmd
}

func loadOfflineCatalog(ctx context.Context) (*catalog.Data, error) {
	cfg, err := config.LoadOffline(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.LoadCatalog(ctx, cfg)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
