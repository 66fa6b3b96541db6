package store

import (
	"context"
	"log/slog"
	"maps"

	"github.com/phrazzld/scaffold-api/internal/domain"
)

// OwnedRepository is a Repository for entities that belong to a user.
type OwnedRepository[E any, C CreateInput, U UpdateInput] struct {
	*Repository[E, C, U]
	ownerColumn string
}

// NewOwnedRepository creates an OwnedRepository whose owner is stored in
// ownerColumn. The column should be marked Immutable in table so updates
// cannot reassign ownership.
func NewOwnedRepository[E any, C CreateInput, U UpdateInput](
	table Table[E],
	ownerColumn string,
	dialect Dialect,
	logger *slog.Logger,
) *OwnedRepository[E, C, U] {
	if _, ok := table.column(ownerColumn); !ok {
		panic("owner column " + ownerColumn + " is not a column of " + table.Name)
	}
	return &OwnedRepository[E, C, U]{
		Repository:  NewRepository[E, C, U](table, dialect, logger),
		ownerColumn: ownerColumn,
	}
}

// CreateWithOwner inserts the fields of in owned by ownerID. Any owner key
// in the payload is replaced by ownerID.
func (r *OwnedRepository[E, C, U]) CreateWithOwner(ctx context.Context, s Session, in C, ownerID int64) (*E, error) {
	f := maps.Clone(in.Fields())
	if f == nil {
		f = domain.Fields{}
	}
	f[r.ownerColumn] = ownerID
	return r.CreateFields(ctx, s, f)
}

// GetMultiByOwner is GetMulti restricted to entities owned by ownerID.
func (r *OwnedRepository[E, C, U]) GetMultiByOwner(ctx context.Context, s Session, ownerID int64, page Page) ([]*E, error) {
	return r.list(ctx, s, r.ownerColumn, ownerID, page)
}
