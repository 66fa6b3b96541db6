package postgres

import (
	"strconv"

	"github.com/phrazzld/scaffold-api/internal/store"
)

// DriverName is the database/sql driver registered by pgx's stdlib package.
const DriverName = "pgx"

// Dialect is the PostgreSQL store.Dialect.
type Dialect struct{}

var _ store.Dialect = Dialect{}

// Name implements store.Dialect.
func (Dialect) Name() string { return "postgres" }

// Placeholder implements store.Dialect using $n parameters.
func (Dialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

// MapError implements store.Dialect.
func (Dialect) MapError(err error) error { return MapError(err) }
