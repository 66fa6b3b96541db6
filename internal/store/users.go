package store

import (
	"context"
	"log/slog"

	"github.com/phrazzld/scaffold-api/internal/domain"
)

// UserTable describes the users table.
var UserTable = Table[domain.User]{
	Name:   "users",
	Entity: "user",
	Key: Column[domain.User]{
		Name:      "id",
		Field:     func(u *domain.User) any { return &u.ID },
		Immutable: true,
	},
	Columns: []Column[domain.User]{
		{Name: "email", Field: func(u *domain.User) any { return &u.Email }},
		{Name: "hashed_password", Field: func(u *domain.User) any { return &u.HashedPassword }},
		{Name: "full_name", Field: func(u *domain.User) any { return &u.FullName }},
		{Name: "is_active", Field: func(u *domain.User) any { return &u.IsActive }},
		{Name: "is_superuser", Field: func(u *domain.User) any { return &u.IsSuperuser }},
	},
}

// UserRepository persists users.
type UserRepository struct {
	*Repository[domain.User, domain.UserCreate, domain.UserUpdate]
}

// NewUserRepository creates a UserRepository for dialect.
func NewUserRepository(dialect Dialect, logger *slog.Logger) *UserRepository {
	return &UserRepository{
		Repository: NewRepository[domain.User, domain.UserCreate, domain.UserUpdate](UserTable, dialect, logger),
	}
}

// GetByEmail returns the user with the given email, or nil when there is none.
// Emails are stored lower-cased, so the lookup is case-insensitive.
func (r *UserRepository) GetByEmail(ctx context.Context, s Session, email string) (*domain.User, error) {
	return r.getBy(ctx, s, "email", domain.NormalizeEmail(email))
}
