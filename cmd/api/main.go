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

	"github.com/webcarbon/carbon-footprint-analyzer/internal/analyzer"
	"github.com/webcarbon/carbon-footprint-analyzer/internal/carbon"
	"github.com/webcarbon/carbon-footprint-analyzer/internal/platform/config"
	"github.com/webcarbon/carbon-footprint-analyzer/internal/platform/logger"
	"github.com/webcarbon/carbon-footprint-analyzer/internal/platform/middleware"
	"github.com/webcarbon/carbon-footprint-analyzer/internal/platform/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	metrics := telemetry.New()

	fetcher := carbon.NewHTTPClient(carbon.ClientOptions{
		Timeout:      cfg.FetchTimeout,
		MaxBodyBytes: cfg.MaxPageBytes,
		AllowPrivate: cfg.AllowPrivateTargets,
	})
	svc := analyzer.NewService(carbon.NewEngine(fetcher), metrics, log)

	mux := http.NewServeMux()
	// The fetch timeout normally fires first; the margin covers parsing.
	analyzer.NewTransport(svc, log, cfg.FetchTimeout+10*time.Second).RegisterRoutes(mux)
	mux.Handle("GET /metrics", metrics.Handler())

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.Logging(log),
			middleware.CORS(cfg.CORSAllowedOrigin),
			middleware.Metrics(metrics),
		),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.FetchTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("the tool started", "addr", srv.Addr, "allow_private_targets", cfg.AllowPrivateTargets)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "grace", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
