package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"askpilot/internal/agents"
	"askpilot/internal/config"
	"askpilot/internal/embedding"
	"askpilot/internal/guard"
	"askpilot/internal/llm"
	"askpilot/internal/orchestrator"
	"askpilot/internal/retrieval"
	"askpilot/internal/server"
	"askpilot/internal/store"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "askpilot",
	Short: "askpilot - conversational research assistant backend",
	Long: `askpilot answers user questions through a multi-stage agent pipeline:
a safety gate, retrieval-augmented context from past conversations, a
research/explain/fact-check task sequence, and an append-only chat archive.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "askpilot.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "text" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	if verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else if level, err := zapcore.ParseLevel(cfg.Level); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zapCfg.Build()
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Database.Path, logger.Named("store"))
	if err != nil {
		return err
	}
	defer st.Close()

	engine, err := llm.NewGeminiEngine(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.StageTimeout(),
	}, logger.Named("llm"))
	if err != nil {
		return err
	}

	embedder, err := embedding.NewGenAIEngine(ctx, cfg.LLM.APIKey, cfg.Embedding.Model)
	if err != nil {
		return err
	}
	defer func() { _ = embedder.Close() }()

	roles := agents.DefaultRoles()
	if cfg.LLM.ResearchModel != "" {
		roles.Researcher.Model = cfg.LLM.ResearchModel
	}
	if cfg.LLM.ExplainModel != "" {
		roles.Explainer.Model = cfg.LLM.ExplainModel
	}
	if cfg.LLM.FactCheckModel != "" {
		roles.FactChecker.Model = cfg.LLM.FactCheckModel
	}
	if cfg.LLM.GuardModel != "" {
		roles.Guard.Model = cfg.LLM.GuardModel
	}

	gate := guard.NewSafetyGate(engine, roles.Guard, logger.Named("guard"))
	retriever := retrieval.New(st, embedder, logger.Named("retrieval"))
	executor := agents.NewExecutor(engine, logger.Named("agents"))
	orch := orchestrator.New(gate, retriever, executor, roles, embedder, st, logger.Named("orchestrator"))
	srv := server.New(orch, st, st, logger.Named("server"))

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 3 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
