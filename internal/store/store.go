// Package store selects and opens the configured core.Store backend.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/stockpos/internal/config"
	"github.com/JonMunkholm/stockpos/internal/core"
	"github.com/JonMunkholm/stockpos/internal/store/memory"
	"github.com/JonMunkholm/stockpos/internal/store/postgres"
	"github.com/JonMunkholm/stockpos/internal/store/sqlite"
)

type migrator interface {
	Migrate(ctx context.Context) error
}

// Open connects to the backend named by cfg.Driver and, when cfg.Migrate is
// set, brings its schema up to date.
func Open(ctx context.Context, cfg config.StoreConfig) (core.Store, error) {
	var (
		st  core.Store
		err error
	)

	switch strings.ToLower(cfg.Driver) {
	case config.DriverSQLite:
		st, err = sqlite.Open(ctx, cfg.SQLitePath)
		if err == nil {
			slog.Info("connected to database", "driver", "sqlite", "path", cfg.SQLitePath)
		}
	case config.DriverPostgres:
		st, err = postgres.Open(ctx, cfg.URL, postgres.PoolOptions{
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
		})
		if err == nil {
			slog.Info("connected to database", "driver", "postgres", "name", postgres.DatabaseName(cfg.URL))
		}
	case config.DriverMemory:
		slog.Warn("using in-memory store; data is lost on exit")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if m, ok := st.(migrator); ok && cfg.Migrate {
		if err := m.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		slog.Info("schema migrated", "driver", cfg.Driver)
	}
	return st, nil
}
