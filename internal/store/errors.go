package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when storage rejects an entity, for
	// example on a foreign key, check or not-null violation.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrInvalidPage is returned when skip or limit is negative.
	ErrInvalidPage = errors.New("invalid page")

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrItemNotFound indicates that the requested item does not exist in the store.
	ErrItemNotFound = fmt.Errorf("%w: item", ErrNotFound)

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError reports whether err is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StorageError carries the entity and operation of a failed storage call.
// Err is the cause after dialect mapping, so errors.Is matches ErrDuplicate
// or ErrInvalidEntity when the driver error was recognised.
type StorageError struct {
	Entity    string // The entity type (e.g., "user", "item")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StorageError.
func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a StorageError with the given entity, operation, message, and wrapped error.
func NewStorageError(entity, operation, message string, err error) *StorageError {
	return &StorageError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
