// Command server starts the AI Career Advisor HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fairyhunter13/ai-career-advisor/internal/adapter/ai/gemini"
	httpserver "github.com/fairyhunter13/ai-career-advisor/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-career-advisor/internal/adapter/observability"
	"github.com/fairyhunter13/ai-career-advisor/internal/app"
	"github.com/fairyhunter13/ai-career-advisor/internal/config"
	"github.com/fairyhunter13/ai-career-advisor/internal/ui"
	"github.com/fairyhunter13/ai-career-advisor/internal/usecase"
)

func main() {
	// A missing .env is normal outside local development.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		slog.Warn("failed to read .env", slog.Any("error", envErr))
	}

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	prompts, err := config.LoadPrompts(cfg.PromptsPath)
	if err != nil {
		slog.Error("failed to load prompts", slog.Any("error", err))
		os.Exit(1)
	}

	// The key is handed over once here; a missing key surfaces on the first fetch.
	gen := gemini.New(cfg)
	if !gen.Ready() {
		slog.Warn("GEMINI_API_KEY not set; suggestion requests will fail until it is configured")
	}
	suggestions := usecase.NewSuggestionService(gen, cfg.GeminiModel, prompts)

	visitors := ui.NewRegistry(suggestions)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go app.NewSessionSweeper(visitors, cfg.SessionTTL, time.Minute).Run(ctx)

	srv, err := httpserver.NewServer(cfg, suggestions, visitors, app.BuildReadinessChecks(cfg, prompts)...)
	if err != nil {
		slog.Error("failed to build http server", slog.Any("error", err))
		os.Exit(1)
	}
	handler := app.BuildRouter(cfg, srv, httpserver.NewVisitorSessions(cfg))

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting",
			slog.Int("port", cfg.Port),
			slog.String("model", cfg.GeminiModel))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
