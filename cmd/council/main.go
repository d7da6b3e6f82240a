// Council server — answers questions by multi-model deliberation: every
// council model answers in parallel, the models rank each other's
// anonymized answers, and a chairman model synthesizes the final response.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/codeready-toolchain/council/pkg/api"
	"github.com/codeready-toolchain/council/pkg/config"
	"github.com/codeready-toolchain/council/pkg/llm"
	"github.com/codeready-toolchain/council/pkg/ratelimit"
	"github.com/codeready-toolchain/council/pkg/store"
	"github.com/codeready-toolchain/council/pkg/template"
	"github.com/codeready-toolchain/council/pkg/version"
	"github.com/codeready-toolchain/council/pkg/workflow"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment", "error", err)
	} else {
		slog.Info("Loaded environment from .env")
	}

	// 1. Configuration
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting council",
		"version", version.Full(),
		"port", cfg.Port,
		"council_models", cfg.CouncilModels,
		"chairman_model", cfg.ChairmanModel,
		"mock_mode", cfg.MockMode)

	// 2. Conversation store
	st, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		slog.Error("Failed to open data directory", "data_dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Conversation store ready", "data_dir", cfg.DataDir)

	// 3. LLM client (mock or real)
	var client llm.Client
	if cfg.MockMode {
		client = llm.NewMockClient(200 * time.Millisecond)
		slog.Info("Mock mode enabled, no upstream calls will be made")
	} else {
		client = llm.NewOpenRouterClient(llm.OpenRouterConfig{
			APIKey:           cfg.OpenRouterAPIKey,
			APIURL:           cfg.OpenRouterAPIURL,
			Timeout:          cfg.APITimeout,
			DefaultMaxTokens: cfg.DefaultMaxTokens,
			Referer:          "https://github.com/codeready-toolchain/council",
			AppTitle:         "LLM Council",
		})
	}

	// 4. Workflow registry with the built-in council
	templates := template.NewRenderer()
	registry := workflow.NewRegistry()
	if err := registry.Register(workflow.NewCouncilWorkflow(client, templates, cfg)); err != nil {
		slog.Error("Failed to register council workflow", "error", err)
		os.Exit(1)
	}
	slog.Info("Workflows registered", "count", registry.Len())

	// 5. Execution service and rate limiter
	service := workflow.NewService(cfg, st, registry, client, templates)
	limiter := ratelimit.NewLimiter(cfg.RateLimitEnabled)

	// 6. HTTP server (non-blocking start)
	httpServer := api.NewServer(cfg, st, registry, service, limiter)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		slog.Info("HTTP server listening", "addr", addr)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	// 7. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 8. Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
