package txlens

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/txlens/txlens/pkg/cache"
	"github.com/txlens/txlens/pkg/config"
	"github.com/txlens/txlens/pkg/driver"
	"github.com/txlens/txlens/pkg/graph"
	"github.com/txlens/txlens/pkg/llm"
	"github.com/txlens/txlens/pkg/logger"
	"github.com/txlens/txlens/pkg/server"
	"github.com/txlens/txlens/pkg/service"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the txlens HTTP server",
	Long: `Start the txlens HTTP server.

The server provides endpoints for:
- Asking natural-language questions about the transaction graph
- Executing catalog queries directly
- Validating query strings
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")

	serverCmd.Flags().String("db-uri", "bolt://localhost:7687", "Graph database URI")
	serverCmd.Flags().String("db-username", "neo4j", "Graph database username")
	serverCmd.Flags().String("db-password", "password", "Graph database password")
	serverCmd.Flags().String("db-database", "neo4j", "Graph database name")

	serverCmd.Flags().String("llm-model", "gpt-4o", "Completion model")
	serverCmd.Flags().String("llm-api-key", "", "Completion API key")
	serverCmd.Flags().String("llm-base-url", "", "Completion base URL")
	serverCmd.Flags().Int("llm-max-tokens", 4096, "Completion max tokens")

	serverCmd.Flags().String("cache-dir", "", "Completion cache directory (empty disables caching)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	overrideConfigWithFlags(cmd, cfg)

	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	graphDriver, err := driver.NewNeo4jDriver(
		cfg.Database.URI,
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Database,
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to connect to graph store: %w", err)
	}
	defer graphDriver.Close(context.Background())

	completions := llm.NewOpenAIClient(cfg.LLM.APIKey, llm.Config{
		Model:      cfg.LLM.Model,
		BaseURL:    cfg.LLM.BaseURL,
		MaxTokens:  cfg.LLM.MaxTokens,
		Timeout:    time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		MaxRetries: cfg.LLM.MaxRetries,
	})
	defer completions.Close()

	opts := service.Options{Model: cfg.LLM.Model}
	if cfg.Cache.Dir != "" {
		completionCache, err := cache.NewBadgerCache(cfg.Cache.Dir)
		if err != nil {
			return fmt.Errorf("failed to open completion cache: %w", err)
		}
		defer completionCache.Close()
		opts.Cache = completionCache
	}

	store := graph.NewStore(graphDriver, log)
	svc := service.New(completions, store, log, opts)

	srv := server.New(cfg, svc, log)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		log.Info("server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	if cmd.Flags().Changed("db-uri") {
		cfg.Database.URI, _ = cmd.Flags().GetString("db-uri")
	}
	if cmd.Flags().Changed("db-username") {
		cfg.Database.Username, _ = cmd.Flags().GetString("db-username")
	}
	if cmd.Flags().Changed("db-password") {
		cfg.Database.Password, _ = cmd.Flags().GetString("db-password")
	}
	if cmd.Flags().Changed("db-database") {
		cfg.Database.Database, _ = cmd.Flags().GetString("db-database")
	}

	if cmd.Flags().Changed("llm-model") {
		cfg.LLM.Model, _ = cmd.Flags().GetString("llm-model")
	}
	if cmd.Flags().Changed("llm-api-key") {
		cfg.LLM.APIKey, _ = cmd.Flags().GetString("llm-api-key")
	}
	if cmd.Flags().Changed("llm-base-url") {
		cfg.LLM.BaseURL, _ = cmd.Flags().GetString("llm-base-url")
	}
	if cmd.Flags().Changed("llm-max-tokens") {
		cfg.LLM.MaxTokens, _ = cmd.Flags().GetInt("llm-max-tokens")
	}

	if cmd.Flags().Changed("cache-dir") {
		cfg.Cache.Dir, _ = cmd.Flags().GetString("cache-dir")
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}

	if cfg.Database.URI == "" {
		return fmt.Errorf("database URI is required")
	}

	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("completion API key is required")
	}

	return nil
}
