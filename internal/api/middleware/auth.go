package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/scaffold-api/internal/api/shared"
	"github.com/phrazzld/scaffold-api/internal/domain"
	"github.com/phrazzld/scaffold-api/internal/service/auth"
	"github.com/phrazzld/scaffold-api/internal/store"
)

// UserLookup loads the user named by a token.
type UserLookup interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
}

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
	users      UserLookup
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		users:      users,
	}
}

// Authenticate validates the bearer access token, loads its user and
// rejects inactive accounts. The user is stored in the request context
// for shared.CurrentUser.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken),
				errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrWrongTokenType):
				shared.RespondWithErrorAndLog(w, r, http.StatusForbidden,
					"Could not validate credentials", err, shared.WithElevatedLogLevel())
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
					"Authentication error", err)
			}
			return
		}

		user, err := m.users.Get(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				shared.RespondWithError(w, r, http.StatusNotFound, "User not found")
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			return
		}
		if !user.IsActive {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Inactive user")
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithCurrentUser(r.Context(), user)))
	})
}

// RequireSuperuser rejects authenticated users without superuser rights.
// It must run after Authenticate.
func RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := shared.CurrentUser(r.Context())
		if user == nil {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if !user.IsSuperuser {
			shared.RespondWithError(w, r, http.StatusForbidden, "The user doesn't have enough privileges")
			return
		}
		next.ServeHTTP(w, r)
	})
}
