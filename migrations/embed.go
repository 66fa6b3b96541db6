// Package migrations embeds the SQL schema migrations and applies them with
// goose. Each supported database has its own directory of migrations.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// FS contains the migrations of every supported database, one directory each.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Dir returns the directory within FS holding the migrations for driver.
func Dir(driver string) (string, database.Dialect, error) {
	switch driver {
	case "postgres":
		return "postgres", database.DialectPostgres, nil
	case "sqlite":
		return "sqlite", database.DialectSQLite3, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewProvider returns a goose provider bound to db and the migrations for driver.
func NewProvider(db *sql.DB, driver string, opts ...goose.ProviderOption) (*goose.Provider, error) {
	dir, dialect, err := Dir(driver)
	if err != nil {
		return nil, err
	}
	sub, err := fs.Sub(FS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s migrations: %w", dir, err)
	}
	p, err := goose.NewProvider(dialect, db, sub, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return p, nil
}

// Up applies all pending migrations and returns the results.
func Up(ctx context.Context, db *sql.DB, driver string) ([]*goose.MigrationResult, error) {
	p, err := NewProvider(db, driver)
	if err != nil {
		return nil, err
	}
	results, err := p.Up(ctx)
	if err != nil {
		return results, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return results, nil
}
