package store

import (
	"log/slog"

	"github.com/phrazzld/scaffold-api/internal/domain"
)

// ItemTable describes the items table. owner_id is set on insert only.
var ItemTable = Table[domain.Item]{
	Name:   "items",
	Entity: "item",
	Key: Column[domain.Item]{
		Name:      "id",
		Field:     func(i *domain.Item) any { return &i.ID },
		Immutable: true,
	},
	Columns: []Column[domain.Item]{
		{Name: "title", Field: func(i *domain.Item) any { return &i.Title }},
		{Name: "description", Field: func(i *domain.Item) any { return &i.Description }},
		{Name: "price", Field: func(i *domain.Item) any { return &i.Price }},
		{Name: "owner_id", Field: func(i *domain.Item) any { return &i.OwnerID }, Immutable: true},
	},
}

// ItemRepository persists items, scoped by owner.
type ItemRepository struct {
	*OwnedRepository[domain.Item, domain.ItemCreate, domain.ItemUpdate]
}

// NewItemRepository creates an ItemRepository for dialect.
func NewItemRepository(dialect Dialect, logger *slog.Logger) *ItemRepository {
	return &ItemRepository{
		OwnedRepository: NewOwnedRepository[domain.Item, domain.ItemCreate, domain.ItemUpdate](
			ItemTable, "owner_id", dialect, logger),
	}
}
