package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/scaffold-api/internal/domain"
	"github.com/phrazzld/scaffold-api/internal/platform/logger"
)

// CreateInput is a validated creation payload. Fields holds every
// storable field, keyed by column name.
type CreateInput interface {
	Fields() domain.Fields
}

// UpdateInput is a sparse update payload. Fields holds only the fields the
// caller supplied, including those explicitly set to null.
type UpdateInput interface {
	Fields() domain.Fields
}

// Repository provides get, list, create, update and remove for one entity
// type. It holds no session: every call borrows the one it is given.
type Repository[E any, C CreateInput, U UpdateInput] struct {
	table   Table[E]
	dialect Dialect
	logger  *slog.Logger
}

// NewRepository creates a Repository for table using dialect.
// If logger is nil, a default logger will be used.
func NewRepository[E any, C CreateInput, U UpdateInput](
	table Table[E],
	dialect Dialect,
	logger *slog.Logger,
) *Repository[E, C, U] {
	if dialect == nil {
		panic("dialect cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository[E, C, U]{
		table:   table,
		dialect: dialect,
		logger:  logger.With(slog.String("component", table.Entity+"_repository")),
	}
}

// Table returns the table description the repository was built with.
func (r *Repository[E, C, U]) Table() Table[E] {
	return r.table
}

// Get returns the entity with the given id, or nil and no error when it does
// not exist.
func (r *Repository[E, C, U]) Get(ctx context.Context, s Session, id int64) (*E, error) {
	return r.getBy(ctx, s, r.table.Key.Name, id)
}

// getBy returns the single entity whose column equals value, or nil when
// there is none.
func (r *Repository[E, C, U]) getBy(ctx context.Context, s Session, column string, value any) (*E, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		r.table.selectList(), r.table.Name, column, r.dialect.Placeholder(1))

	var e E
	err := s.QueryRowContext(ctx, query, value).Scan(r.table.scanDest(&e)...)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("entity not found", slog.String("column", column))
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get entity",
			slog.String("error", err.Error()),
			slog.String("column", column))
		return nil, r.storageError("get", "failed to get entity", err)
	}
	return &e, nil
}

// GetMulti returns up to page.Limit entities in id order after skipping
// page.Skip of them.
func (r *Repository[E, C, U]) GetMulti(ctx context.Context, s Session, page Page) ([]*E, error) {
	return r.list(ctx, s, "", nil, page)
}

// Create inserts the fields of in and returns the row as stored, including
// storage-assigned defaults.
func (r *Repository[E, C, U]) Create(ctx context.Context, s Session, in C) (*E, error) {
	return r.CreateFields(ctx, s, in.Fields())
}

// CreateFields inserts f and returns the row as stored. Keys that are not
// data columns are ignored.
func (r *Repository[E, C, U]) CreateFields(ctx context.Context, s Session, f domain.Fields) (*E, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	names, values := r.table.insertable(f)
	var query string
	if len(names) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING %s",
			r.table.Name, r.table.selectList())
	} else {
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			r.table.Name,
			strings.Join(names, ", "),
			r.placeholders(1, len(names)),
			r.table.selectList())
	}

	var e E
	err := withSession(ctx, s, func(ctx context.Context, q DBTX) error {
		return q.QueryRowContext(ctx, query, values...).Scan(r.table.scanDest(&e)...)
	})
	if err != nil {
		log.Error("failed to create entity",
			slog.String("error", err.Error()),
			slog.Any("columns", names))
		return nil, r.storageError("create", "failed to create entity", err)
	}

	log.Debug("entity created", slog.Int64("id", r.idOf(&e)))
	return &e, nil
}

// Update applies the present fields of in to target. See UpdateFields.
func (r *Repository[E, C, U]) Update(ctx context.Context, s Session, target *E, in U) (*E, error) {
	return r.UpdateFields(ctx, s, target, in.Fields())
}

// UpdateFields writes every field of f that names a mutable column of the
// entity, then refreshes target from storage and returns it. Unknown and
// immutable keys are ignored. target is left untouched if the write fails.
// When s is a transaction, target reflects the write once it succeeds
// within that transaction.
func (r *Repository[E, C, U]) UpdateFields(ctx context.Context, s Session, target *E, f domain.Fields) (*E, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: nil %s", ErrInvalidEntity, r.table.Entity)
	}
	log := logger.FromContextOrDefault(ctx, r.logger)
	id := r.idOf(target)

	names, values := r.table.updatable(f)
	var query string
	if len(names) == 0 {
		query = fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
			r.table.selectList(), r.table.Name, r.table.Key.Name, r.dialect.Placeholder(1))
	} else {
		sets := make([]string, len(names))
		for i, name := range names {
			sets[i] = fmt.Sprintf("%s = %s", name, r.dialect.Placeholder(i+1))
		}
		query = fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s RETURNING %s",
			r.table.Name,
			strings.Join(sets, ", "),
			r.table.Key.Name,
			r.dialect.Placeholder(len(names)+1),
			r.table.selectList())
	}
	args := append(values, id)

	updated := *target
	err := withSession(ctx, s, func(ctx context.Context, q DBTX) error {
		err := q.QueryRowContext(ctx, query, args...).Scan(r.table.scanDest(&updated)...)
		if errors.Is(err, sql.ErrNoRows) {
			return r.notFound(id)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Debug("entity to update not found", slog.Int64("id", id))
			return nil, err
		}
		log.Error("failed to update entity",
			slog.String("error", err.Error()),
			slog.Int64("id", id),
			slog.Any("columns", names))
		return nil, r.storageError("update", "failed to update entity", err)
	}

	*target = updated
	log.Debug("entity updated", slog.Int64("id", id), slog.Any("columns", names))
	return target, nil
}

// Remove deletes the entity with the given id and returns it as it was just
// before deletion. It returns an error wrapping ErrNotFound, and changes
// nothing, when there is no such entity.
func (r *Repository[E, C, U]) Remove(ctx context.Context, s Session, id int64) (*E, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = %s RETURNING %s",
		r.table.Name, r.table.Key.Name, r.dialect.Placeholder(1), r.table.selectList())

	var e E
	err := withSession(ctx, s, func(ctx context.Context, q DBTX) error {
		err := q.QueryRowContext(ctx, query, id).Scan(r.table.scanDest(&e)...)
		if errors.Is(err, sql.ErrNoRows) {
			return r.notFound(id)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Debug("entity to remove not found", slog.Int64("id", id))
			return nil, err
		}
		log.Error("failed to remove entity",
			slog.String("error", err.Error()),
			slog.Int64("id", id))
		return nil, r.storageError("remove", "failed to remove entity", err)
	}

	log.Debug("entity removed", slog.Int64("id", id))
	return &e, nil
}

// list runs an id-ordered, paginated SELECT, optionally filtered by
// column = value.
func (r *Repository[E, C, U]) list(
	ctx context.Context,
	s Session,
	column string,
	value any,
	page Page,
) ([]*E, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	log := logger.FromContextOrDefault(ctx, r.logger)

	var b strings.Builder
	var args []any
	fmt.Fprintf(&b, "SELECT %s FROM %s", r.table.selectList(), r.table.Name)
	if column != "" {
		args = append(args, value)
		fmt.Fprintf(&b, " WHERE %s = %s", column, r.dialect.Placeholder(len(args)))
	}
	args = append(args, page.Limit, page.Skip)
	fmt.Fprintf(&b, " ORDER BY %s LIMIT %s OFFSET %s",
		r.table.Key.Name, r.dialect.Placeholder(len(args)-1), r.dialect.Placeholder(len(args)))

	rows, err := s.QueryContext(ctx, b.String(), args...)
	if err != nil {
		log.Error("failed to list entities", slog.String("error", err.Error()))
		return nil, r.storageError("list", "failed to list entities", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*E, 0)
	for rows.Next() {
		var e E
		if err := rows.Scan(r.table.scanDest(&e)...); err != nil {
			log.Error("failed to scan entity", slog.String("error", err.Error()))
			return nil, r.storageError("list", "failed to scan entity", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating entities", slog.String("error", err.Error()))
		return nil, r.storageError("list", "failed to iterate entities", err)
	}

	log.Debug("entities listed",
		slog.Int("count", len(out)),
		slog.Int("skip", page.Skip),
		slog.Int("limit", page.Limit))
	return out, nil
}

func (r *Repository[E, C, U]) placeholders(start, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = r.dialect.Placeholder(start + i)
	}
	return strings.Join(ps, ", ")
}

func (r *Repository[E, C, U]) idOf(e *E) int64 {
	if id, ok := r.table.Key.Field(e).(*int64); ok {
		return *id
	}
	return 0
}

func (r *Repository[E, C, U]) notFound(id int64) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, r.table.Entity, id)
}

func (r *Repository[E, C, U]) storageError(op, msg string, err error) error {
	return NewStorageError(r.table.Entity, op, msg, r.dialect.MapError(err))
}
