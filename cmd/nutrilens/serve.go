// cmd/nutrilens/serve.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"nutrilens/internal/foodfacts"
	"nutrilens/internal/server"
	"nutrilens/internal/storage"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		host     string
		port     int
		dbPath   string
		provider string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			// flags win over file and environment
			flags := cmd.Flags()
			if flags.Changed("host") {
				cfg.Server.Host = host
			}
			if flags.Changed("port") {
				cfg.Server.Port = port
			}
			if flags.Changed("db-path") {
				cfg.DBPath = dbPath
			}
			if flags.Changed("provider") {
				cfg.Provider = provider
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			analyzer, err := newAnalyzer(ctx, cfg, log)
			if err != nil {
				return err
			}

			stor, err := storage.NewSQLiteStorage(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}

			foods := foodfacts.NewClient(cfg.FoodFacts.BaseURL, cfg.FoodFacts.UserAgent, log.Named("foodfacts"))

			srv, err := server.NewNutriLensServer(&server.Config{Host: cfg.Server.Host, Port: cfg.Server.Port},
				stor, analyzer, foods, log.Named("server"))
			if err != nil {
				stor.Close()
				return fmt.Errorf("failed to create server: %w", err)
			}

			log.Infow("configuration loaded", "provider", cfg.Provider, "db_path", cfg.DBPath,
				"max_retries", cfg.Retry.MaxRetries, "base_delay", cfg.Retry.BaseDelay)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Start(gctx)
			})
			g.Go(func() error {
				<-gctx.Done()
				log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Stop(shutdownCtx)
			})

			if err := g.Wait(); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			log.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host address (overrides HOST)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port for HTTP transport (overrides PORT)")
	cmd.Flags().StringVar(&dbPath, "db-path", "", "Database path (overrides DB_PATH)")
	cmd.Flags().StringVar(&provider, "provider", "", "AI provider: gemini or openrouter (overrides AI_PROVIDER)")
	return cmd
}
