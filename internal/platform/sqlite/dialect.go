package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/scaffold-api/internal/store"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// foreignKeysPragma enables foreign key enforcement, which SQLite leaves off
// per connection unless asked.
const foreignKeysPragma = "_pragma=foreign_keys(1)"

// DSN returns url with foreign key enforcement enabled. A url that already
// sets the foreign_keys pragma is returned unchanged.
func DSN(url string) string {
	if strings.Contains(url, "foreign_keys") {
		return url
	}
	if strings.Contains(url, "?") {
		return url + "&" + foreignKeysPragma
	}
	return url + "?" + foreignKeysPragma
}

// Dialect is the SQLite store.Dialect.
type Dialect struct{}

var _ store.Dialect = Dialect{}

// Name implements store.Dialect.
func (Dialect) Name() string { return "sqlite" }

// Placeholder implements store.Dialect. SQLite binds positionally with ?.
func (Dialect) Placeholder(int) string { return "?" }

// MapError implements store.Dialect.
func (Dialect) MapError(err error) error { return MapError(err) }

// MapError maps SQLite constraint failures to store errors, wrapping the
// original. Other errors are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	code := sqliteErr.Code()
	if code&0xff != sqlite3.SQLITE_CONSTRAINT {
		return err
	}

	msg := sqliteErr.Error()
	switch {
	case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE,
		code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
		strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: unique violation: %w", store.ErrDuplicate, err)
	case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY,
		strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: foreign key violation: %w", store.ErrInvalidEntity, err)
	case code == sqlite3.SQLITE_CONSTRAINT_NOTNULL,
		strings.Contains(msg, "NOT NULL constraint failed"):
		return fmt.Errorf("%w: not null violation: %w", store.ErrInvalidEntity, err)
	default:
		return fmt.Errorf("%w: constraint violation: %w", store.ErrInvalidEntity, err)
	}
}
