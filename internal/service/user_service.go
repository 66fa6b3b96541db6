package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scaffold-api/internal/domain"
	"github.com/phrazzld/scaffold-api/internal/service/auth"
	"github.com/phrazzld/scaffold-api/internal/store"
)

// PasswordHasher hashes new passwords and verifies existing ones.
type PasswordHasher interface {
	auth.PasswordHasher
	auth.PasswordVerifier
}

// UserService provides user-related operations.
type UserService interface {
	// Get retrieves a user by id. Returns store.ErrUserNotFound when absent.
	Get(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email. Returns store.ErrUserNotFound
	// when absent.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns one page of users ordered by id.
	List(ctx context.Context, page store.Page) ([]*domain.User, error)

	// Create registers a user, hashing the password. Returns
	// store.ErrEmailExists when the email is taken.
	Create(ctx context.Context, in domain.UserCreate) (*domain.User, error)

	// Update applies the present fields of in to the user. A present
	// password is re-hashed.
	Update(ctx context.Context, id int64, in domain.UserUpdate) (*domain.User, error)

	// Authenticate returns the user whose email and password match.
	// Returns ErrInvalidCredentials otherwise.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// IsActive reports whether the user may log in.
	IsActive(u *domain.User) bool

	// IsSuperuser reports whether the user has administrative rights.
	IsSuperuser(u *domain.User) bool
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users  *store.UserRepository
	hasher PasswordHasher
	db     *sql.DB
	logger *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(db *sql.DB, users *store.UserRepository, hasher PasswordHasher, logger *slog.Logger) *UserServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		users:  users,
		hasher: hasher,
		db:     db,
		logger: logger.With("component", "user_service"),
	}
}

// Get implements UserService.
func (s *UserServiceImpl) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.Get(ctx, s.db, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to retrieve user", "error", err, "user_id", id)
		return nil, NewServiceError("user", "get", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: id %d", store.ErrUserNotFound, id)
	}
	return user, nil
}

// GetByEmail implements UserService.
func (s *UserServiceImpl) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, s.db, email)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to retrieve user by email", "error", err)
		return nil, NewServiceError("user", "get_by_email", err)
	}
	if user == nil {
		s.logger.DebugContext(ctx, "user not found by email")
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// List implements UserService.
func (s *UserServiceImpl) List(ctx context.Context, page store.Page) ([]*domain.User, error) {
	users, err := s.users.GetMulti(ctx, s.db, page)
	if err != nil {
		return nil, NewServiceError("user", "list", err)
	}
	return users, nil
}

// Create implements UserService.
func (s *UserServiceImpl) Create(ctx context.Context, in domain.UserCreate) (*domain.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, NewServiceError("user", "create", err)
	}

	fields := in.Fields()
	fields["hashed_password"] = hashed

	var user *domain.User
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		existing, err := s.users.GetByEmail(ctx, tx, in.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return store.ErrEmailExists
		}

		user, err = s.users.CreateFields(ctx, tx, fields)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			s.logger.DebugContext(ctx, "attempted to create user with existing email")
			return nil, store.ErrEmailExists
		}
		s.logger.ErrorContext(ctx, "failed to save user to database", "error", err)
		return nil, NewServiceError("user", "create", err)
	}

	s.logger.InfoContext(ctx, "user created", "user_id", user.ID)
	return user, nil
}

// Update implements UserService.
func (s *UserServiceImpl) Update(ctx context.Context, id int64, in domain.UserUpdate) (*domain.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	fields := in.Fields()
	if in.Password.Set {
		hashed, err := s.hasher.Hash(in.Password.Value)
		if err != nil {
			return nil, NewServiceError("user", "update", err)
		}
		fields["hashed_password"] = hashed
	}

	var updated *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		user, err := s.users.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("%w: id %d", store.ErrUserNotFound, id)
		}

		if in.Email.Set {
			other, err := s.users.GetByEmail(ctx, tx, in.Email.Value)
			if err != nil {
				return err
			}
			if other != nil && other.ID != id {
				return store.ErrEmailExists
			}
		}

		updated, err = s.users.UpdateFields(ctx, tx, user, fields)
		return err
	})
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "user updated", "user_id", id, "password_changed", in.Password.Set)
		return updated, nil
	case errors.Is(err, store.ErrNotFound):
		return nil, err
	case errors.Is(err, store.ErrDuplicate):
		return nil, store.ErrEmailExists
	default:
		s.logger.ErrorContext(ctx, "failed to update user", "error", err, "user_id", id)
		return nil, NewServiceError("user", "update", err)
	}
}

// Authenticate implements UserService.
func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, s.db, email)
	if err != nil {
		return nil, NewServiceError("user", "authenticate", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "failed to verify password", "error", err, "user_id", user.ID)
		return nil, NewServiceError("user", "authenticate", err)
	}
	return user, nil
}

// IsActive implements UserService.
func (s *UserServiceImpl) IsActive(u *domain.User) bool {
	return u != nil && u.IsActive
}

// IsSuperuser implements UserService.
func (s *UserServiceImpl) IsSuperuser(u *domain.User) bool {
	return u != nil && u.IsSuperuser
}
