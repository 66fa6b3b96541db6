package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/scaffold-api/internal/config"
	"github.com/phrazzld/scaffold-api/internal/platform/postgres"
	"github.com/phrazzld/scaffold-api/internal/platform/sqlite"
	"github.com/phrazzld/scaffold-api/internal/redact"
	"github.com/phrazzld/scaffold-api/internal/store"
)

// openDatabase opens the configured database, applies the pool settings
// and verifies the connection.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, store.Dialect, error) {
	var (
		driverName string
		dsn        string
		dialect    store.Dialect
	)
	switch cfg.Driver {
	case "postgres":
		driverName, dsn, dialect = postgres.DriverName, cfg.URL, postgres.Dialect{}
	case "sqlite":
		driverName, dsn, dialect = sqlite.DriverName, sqlite.DSN(cfg.URL), sqlite.Dialect{}
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database connection: %s", redact.Error(err))
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %s", redact.Error(err))
	}

	logger.Info("database connection established", "driver", cfg.Driver)
	return db, dialect, nil
}
