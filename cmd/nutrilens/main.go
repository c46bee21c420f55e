// cmd/nutrilens/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nutrilens/internal/config"
	"nutrilens/internal/gateway"
	"nutrilens/internal/logging"
	"nutrilens/internal/nutrition"
	"nutrilens/internal/server"
	"nutrilens/internal/transport"
)

type rootOptions struct {
	configPath string
	envFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          "nutrilens",
		Version:      server.Version,
		Short:        "AI nutrition analysis service",
		Long:         "Analyzes meal photos and descriptions, plans workouts and keeps a meal log, backed by Gemini or OpenRouter.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Dotenv file to load before reading the environment")

	rootCmd.AddCommand(newServeCmd(opts), newAnalyzeCmd(opts), newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nutrilens version %s\n", server.Version)
		},
	}
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath, opts.envFile)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newAnalyzer wires transport, gateway and analyzer from cfg.
func newAnalyzer(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*nutrition.Analyzer, error) {
	t, err := transport.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s transport: %w", cfg.Provider, err)
	}

	g := gateway.New(t,
		gateway.WithMaxRetries(cfg.Retry.MaxRetries),
		gateway.WithBaseDelay(cfg.Retry.BaseDelay),
		gateway.WithLogger(log.Named("gateway")),
	)
	return nutrition.NewAnalyzer(g, log.Named("nutrition")), nil
}

func newLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}
