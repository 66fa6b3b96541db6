package postgres_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/scaffold-api/internal/platform/postgres"
	"github.com/phrazzld/scaffold-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "items",
		ColumnName:     "title",
		ConstraintName: "items_owner_id_fkey",
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{name: "unique", err: newPgError("23505"), target: store.ErrDuplicate},
		{name: "foreign key", err: newPgError("23503"), target: store.ErrInvalidEntity},
		{name: "check", err: newPgError("23514"), target: store.ErrInvalidEntity},
		{name: "not null", err: newPgError("23502"), target: store.ErrInvalidEntity},
		{name: "wrapped unique", err: fmt.Errorf("insert: %w", newPgError("23505")), target: store.ErrDuplicate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			mapped := postgres.MapError(tc.err)
			assert.ErrorIs(t, mapped, tc.target)

			var pgErr *pgconn.PgError
			require.True(t, errors.As(mapped, &pgErr), "original error should stay reachable")
		})
	}
}

func TestMapError_Passthrough(t *testing.T) {
	t.Parallel()

	assert.NoError(t, postgres.MapError(nil))

	plain := errors.New("connection refused")
	assert.Same(t, plain, postgres.MapError(plain))

	other := newPgError("40001")
	assert.Equal(t, error(other), postgres.MapError(other))
}

func TestDialect(t *testing.T) {
	t.Parallel()

	d := postgres.Dialect{}
	assert.Equal(t, "postgres", d.Name())
	assert.Equal(t, "$1", d.Placeholder(1))
	assert.Equal(t, "$12", d.Placeholder(12))
	assert.ErrorIs(t, d.MapError(newPgError("23505")), store.ErrDuplicate)
}
