package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/stockpos/internal/config"
	"github.com/JonMunkholm/stockpos/internal/core"
	"github.com/JonMunkholm/stockpos/internal/logging"
	"github.com/JonMunkholm/stockpos/internal/metrics"
	"github.com/JonMunkholm/stockpos/internal/store"
	"github.com/JonMunkholm/stockpos/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store_driver", cfg.Store.Driver,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"metrics_enabled", cfg.Metrics.Enabled,
	)

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	opts := []core.Option{
		core.WithImportLimits(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime, cfg.Import.Timeout),
	}

	// The gauge reads the service's limiter, which exists only after
	// NewService, so it goes through this variable.
	var service *core.Service
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Prefix, func() int {
			if service == nil {
				return 0
			}
			return service.ImportStatus().Active
		})
		opts = append(opts, core.WithRecorder(m))
	}

	service = core.NewService(st, opts...)
	slog.Info("entities registered", "count", len(core.Entities()))

	server := web.NewServer(cfg, service, m)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if active := service.ImportStatus().Active; active > 0 {
			slog.Info("waiting for imports to complete", "active", active)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		st.Close()
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
