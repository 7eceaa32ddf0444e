package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/trackops/issuegate/internal/config"
	"github.com/trackops/issuegate/internal/metrics"
	"github.com/trackops/issuegate/internal/server"
	"github.com/trackops/issuegate/internal/storage"
	"github.com/trackops/issuegate/internal/storage/memory"
	"github.com/trackops/issuegate/internal/storage/sqlite"
	"github.com/trackops/issuegate/internal/telemetry"
	"github.com/trackops/issuegate/internal/tracker"
	"github.com/trackops/issuegate/pkg/gateway"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	// Initialize OpenTelemetry
	shutdownTracer, err := telemetry.InitTracer("issuegate", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	if store != nil {
		defer store.Close()
	}

	// Wire the core: tracker client -> tool registry -> dispatcher -> engine
	client := tracker.NewClient(cfg.Tracker.APIKey, trackerOptions(cfg)...)
	gw, err := gateway.New(
		gateway.WithTools(tracker.Tools(client)...),
		gateway.WithInvocationStore(store),
		gateway.WithLogger(logger),
		gateway.WithMetricsCapacity(cfg.Metrics.Capacity),
		gateway.WithStepTimeout(cfg.StepTimeout()),
	)
	if err != nil {
		log.Fatalf("Failed to create gateway: %v", err)
	}

	srv := server.New(cfg.Server.Port, cfg.RequestTimeout(), logger)
	server.NewHandlers(gw.Dispatcher(), gw.Engine(), gw.Metrics()).Register(srv.Router)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if interval := cfg.ReportInterval(); interval > 0 {
		reporter := metrics.NewReporter(gw.Metrics(), logger, interval)
		go reporter.Run(ctx)
	}

	httpSrv := srv.HTTPServer()
	go func() {
		logger.Info("gateway started",
			slog.Int("port", cfg.Server.Port),
			slog.Int("tools", len(gw.ToolNames())),
			slog.String("storage", cfg.Storage.Type),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.String("error", err.Error()))
			cancel()
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", slog.String("error", err.Error()))
	}
}

func newStore(cfg *config.Config) (storage.InvocationStore, error) {
	switch cfg.Storage.Type {
	case "sqlite":
		return sqlite.New(cfg.Storage.SQLite.Path)
	case "none":
		return nil, nil
	default:
		return memory.New(), nil
	}
}

func trackerOptions(cfg *config.Config) []tracker.ClientOption {
	var opts []tracker.ClientOption
	if cfg.Tracker.BaseURL != "" {
		opts = append(opts, tracker.WithBaseURL(cfg.Tracker.BaseURL))
	}
	return opts
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
