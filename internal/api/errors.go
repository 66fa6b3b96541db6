package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/scaffold-api/internal/api/shared"
	"github.com/phrazzld/scaffold-api/internal/domain"
	"github.com/phrazzld/scaffold-api/internal/email"
	"github.com/phrazzld/scaffold-api/internal/service"
	"github.com/phrazzld/scaffold-api/internal/service/auth"
	"github.com/phrazzld/scaffold-api/internal/store"
	"github.com/phrazzld/scaffold-api/internal/task"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes so that
// handlers never leak internal error types to clients.
func MapErrorToStatusCode(err error) int {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return http.StatusOK

	// Invalid input
	case errors.As(err, &verr),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidPassword),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusUnprocessableEntity

	// Tokens presented outside the Authorization header
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrResetTokenUsed):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInactiveUser),
		errors.Is(err, store.ErrInvalidPage),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	// Authorization
	case errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrInsufficientPrivileges):
		return http.StatusForbidden

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusBadRequest

	case errors.Is(err, email.ErrEmailsDisabled),
		errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Only
// messages built by this application are returned; driver and library
// error text never is.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, domain.ErrInvalidEmail):
		return "Invalid email"
	case errors.Is(err, domain.ErrInvalidPassword):
		return "Invalid password"
	case errors.Is(err, domain.ErrValidation):
		return "Validation error"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"
	case errors.Is(err, service.ErrResetTokenUsed):
		return "Token already used"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Incorrect email or password"
	case errors.Is(err, service.ErrInactiveUser):
		return "Inactive user"
	case errors.Is(err, store.ErrInvalidPage):
		return "Invalid pagination parameters"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"

	case errors.Is(err, service.ErrNotOwner):
		return "Not enough permissions"
	case errors.Is(err, service.ErrInsufficientPrivileges):
		return "The user doesn't have enough privileges"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrItemNotFound):
		return "Item not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrEmailExists):
		return "The user with this email already exists in the system"
	case errors.Is(err, store.ErrDuplicate):
		return "Entity already exists"

	case errors.Is(err, email.ErrEmailsDisabled):
		return "Email sending is not configured"
	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return "Task queue unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the mapped status and safe message for err and
// logs the redacted cause. A non-empty message overrides the safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	var opts []shared.ResponseOption
	if status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
