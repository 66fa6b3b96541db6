package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scaffold-api/internal/domain"
	"github.com/phrazzld/scaffold-api/internal/store"
)

// ItemService provides owner-aware item operations. Every method takes the
// acting user; superusers may act on any item.
type ItemService interface {
	// List returns every item for superusers and the actor's own items otherwise.
	List(ctx context.Context, actor *domain.User, page store.Page) ([]*domain.Item, error)

	// Create stores a new item owned by actor.
	Create(ctx context.Context, actor *domain.User, in domain.ItemCreate) (*domain.Item, error)

	// Get returns an item the actor may see. Returns store.ErrItemNotFound
	// or ErrNotOwner.
	Get(ctx context.Context, actor *domain.User, id int64) (*domain.Item, error)

	// Update applies the present fields of in to an item the actor may modify.
	Update(ctx context.Context, actor *domain.User, id int64, in domain.ItemUpdate) (*domain.Item, error)

	// Delete removes an item the actor may modify and returns it.
	Delete(ctx context.Context, actor *domain.User, id int64) (*domain.Item, error)
}

// ItemServiceImpl implements ItemService.
type ItemServiceImpl struct {
	items  *store.ItemRepository
	db     *sql.DB
	logger *slog.Logger
}

var _ ItemService = (*ItemServiceImpl)(nil)

// NewItemService creates an ItemService.
func NewItemService(db *sql.DB, items *store.ItemRepository, logger *slog.Logger) *ItemServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemServiceImpl{
		items:  items,
		db:     db,
		logger: logger.With("component", "item_service"),
	}
}

// List implements ItemService.
func (s *ItemServiceImpl) List(ctx context.Context, actor *domain.User, page store.Page) ([]*domain.Item, error) {
	var (
		items []*domain.Item
		err   error
	)
	if actor.IsSuperuser {
		items, err = s.items.GetMulti(ctx, s.db, page)
	} else {
		items, err = s.items.GetMultiByOwner(ctx, s.db, actor.ID, page)
	}
	if err != nil {
		return nil, NewServiceError("item", "list", err)
	}
	return items, nil
}

// Create implements ItemService.
func (s *ItemServiceImpl) Create(ctx context.Context, actor *domain.User, in domain.ItemCreate) (*domain.Item, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	item, err := s.items.CreateWithOwner(ctx, s.db, in, actor.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create item", "error", err, "owner_id", actor.ID)
		return nil, NewServiceError("item", "create", err)
	}

	s.logger.DebugContext(ctx, "item created", "item_id", item.ID, "owner_id", actor.ID)
	return item, nil
}

// Get implements ItemService.
func (s *ItemServiceImpl) Get(ctx context.Context, actor *domain.User, id int64) (*domain.Item, error) {
	return s.authorized(ctx, s.db, actor, id)
}

// Update implements ItemService.
func (s *ItemServiceImpl) Update(
	ctx context.Context,
	actor *domain.User,
	id int64,
	in domain.ItemUpdate,
) (*domain.Item, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Item
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		item, err := s.authorized(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		updated, err = s.items.Update(ctx, tx, item, in)
		return err
	})
	if err != nil {
		return nil, s.wrap("update", err)
	}
	return updated, nil
}

// Delete implements ItemService.
func (s *ItemServiceImpl) Delete(ctx context.Context, actor *domain.User, id int64) (*domain.Item, error) {
	var removed *domain.Item
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.authorized(ctx, tx, actor, id); err != nil {
			return err
		}
		var err error
		removed, err = s.items.Remove(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, s.wrap("delete", err)
	}

	s.logger.InfoContext(ctx, "item deleted", "item_id", id, "actor_id", actor.ID)
	return removed, nil
}

// authorized loads item id and checks that actor owns it or is a superuser.
func (s *ItemServiceImpl) authorized(ctx context.Context, sess store.Session, actor *domain.User, id int64) (*domain.Item, error) {
	item, err := s.items.Get(ctx, sess, id)
	if err != nil {
		return nil, NewServiceError("item", "get", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: id %d", store.ErrItemNotFound, id)
	}
	if !actor.IsSuperuser && item.OwnerID != actor.ID {
		s.logger.DebugContext(ctx, "item access denied", "item_id", id, "actor_id", actor.ID, "owner_id", item.OwnerID)
		return nil, ErrNotOwner
	}
	return item, nil
}

func (s *ItemServiceImpl) wrap(op string, err error) error {
	var se *ServiceError
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, ErrNotOwner) || errors.As(err, &se) {
		return err
	}
	s.logger.Error("item operation failed", "operation", op, "error", err)
	return NewServiceError("item", op, err)
}
