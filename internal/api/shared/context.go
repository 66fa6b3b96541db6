package shared

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scaffold-api/internal/domain"
)

// ContextKey is the type of request context keys set by the API layer.
type ContextKey string

const (
	// CurrentUserKey holds the authenticated *domain.User.
	CurrentUserKey ContextKey = "currentUser"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TraceIDHeader carries the trace ID back to the client.
	TraceIDHeader = "X-Trace-ID"
)

// SetTraceID adds a fresh trace ID to the context.
// This is useful for correlating logs and error responses.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, uuid.NewString())
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithCurrentUser stores the authenticated user in ctx.
func WithCurrentUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, CurrentUserKey, u)
}

// CurrentUser returns the authenticated user, or nil outside an
// authenticated route.
func CurrentUser(ctx context.Context) *domain.User {
	u, _ := ctx.Value(CurrentUserKey).(*domain.User)
	return u
}
