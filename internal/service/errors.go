package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is(); the API layer maps them to HTTP status
// codes.
var (
	// ErrNotOwner indicates a resource belongs to a different user than the
	// one making the request. API layer should map this to HTTP 403 Forbidden.
	ErrNotOwner = errors.New("resource is owned by another user")

	// ErrInvalidCredentials is returned by Authenticate for an unknown email
	// or a wrong password.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrInactiveUser indicates the account is disabled.
	ErrInactiveUser = errors.New("inactive user")

	// ErrInsufficientPrivileges indicates the operation requires a superuser.
	ErrInsufficientPrivileges = errors.New("the user doesn't have enough privileges")

	// ErrResetTokenUsed indicates a password reset token was already redeemed.
	ErrResetTokenUsed = errors.New("password reset token already used")
)

// ServiceError records which service operation failed.
type ServiceError struct {
	Service   string
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Operation, e.Err)
	}
	return fmt.Sprintf("%s service %s operation failed", e.Service, e.Operation)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(service, operation string, err error) *ServiceError {
	return &ServiceError{Service: service, Operation: operation, Err: err}
}
