// Package testdb provides migrated databases for tests. Open returns an
// in-memory SQLite database unique to the test; when
// SCAFFOLD_TEST_DATABASE_URL is set, OpenPostgres connects to that
// database instead.
package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/scaffold-api/internal/platform/postgres"
	"github.com/phrazzld/scaffold-api/internal/platform/sqlite"
	"github.com/phrazzld/scaffold-api/internal/store"
	"github.com/phrazzld/scaffold-api/migrations"
)

// PostgresURLEnv names the variable holding a PostgreSQL URL for integration tests.
const PostgresURLEnv = "SCAFFOLD_TEST_DATABASE_URL"

var seq atomic.Int64

// DSN returns a shared-cache in-memory SQLite DSN unique to name.
func DSN(name string) string {
	safe := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(name)
	return sqlite.DSN(fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", safe, seq.Add(1)))
}

// Open returns a migrated in-memory SQLite database closed when the test ends.
// The pool holds a single connection so the in-memory database outlives
// individual queries and transactions serialize.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open(sqlite.DriverName, DSN(t.Name()))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	migrate(t, db, "sqlite")
	return db
}

// Dialect returns the store dialect matching Open.
func Dialect() store.Dialect {
	return sqlite.Dialect{}
}

// OpenPostgres returns a migrated PostgreSQL database, or skips the test
// when PostgresURLEnv is unset. Tables are truncated before returning.
func OpenPostgres(t testing.TB) *sql.DB {
	t.Helper()

	url := os.Getenv(PostgresURLEnv)
	if url == "" {
		t.Skipf("%s not set", PostgresURLEnv)
	}

	db, err := sql.Open(postgres.DriverName, url)
	if err != nil {
		t.Fatalf("failed to open postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("database connection failed: %v", err)
	}

	migrate(t, db, "postgres")
	if _, err := db.ExecContext(ctx, "TRUNCATE items, users RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
	return db
}

func migrate(t testing.TB, db *sql.DB, driver string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := migrations.Up(ctx, db, driver); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
}
