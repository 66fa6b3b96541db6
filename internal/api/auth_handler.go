package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/scaffold-api/internal/api/shared"
	"github.com/phrazzld/scaffold-api/internal/domain"
	"github.com/phrazzld/scaffold-api/internal/service"
	"github.com/phrazzld/scaffold-api/internal/service/auth"
	"github.com/phrazzld/scaffold-api/internal/store"
)

// PasswordRecoverer issues and redeems password reset tokens.
type PasswordRecoverer interface {
	Recover(ctx context.Context, email string) error
	Reset(ctx context.Context, token, newPassword string) (*domain.User, error)
}

// AuthHandler handles login and password recovery requests.
type AuthHandler struct {
	users      service.UserService
	jwtService auth.JWTService
	recovery   PasswordRecoverer
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	users service.UserService,
	jwtService auth.JWTService,
	recovery PasswordRecoverer,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		recovery:   recovery,
		logger:     logger.With("component", "auth_handler"),
	}
}

// AccessToken handles POST /login/access-token. Credentials arrive as an
// OAuth2 password form with the email in the username field.
func (h *AuthHandler) AccessToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	user, err := h.users.Authenticate(r.Context(), username, password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if !h.users.IsActive(user) {
		HandleAPIError(w, r, service.ErrInactiveUser, "")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, Token{AccessToken: token, TokenType: "bearer"})
}

// TestToken handles POST /login/test-token and returns the token's user.
func (h *AuthHandler) TestToken(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, shared.CurrentUser(r.Context()))
}

// RecoverPassword handles POST /password-recovery/{email}.
func (h *AuthHandler) RecoverPassword(w http.ResponseWriter, r *http.Request) {
	emailAddr := chi.URLParam(r, "email")

	if err := h.recovery.Recover(r.Context(), emailAddr); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			HandleAPIError(w, r, err, "The user with this email does not exist in the system")
			return
		}
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Password recovery email sent")
}

// ResetPassword handles POST /reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req NewPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.recovery.Reset(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.logger.InfoContext(r.Context(), "password reset through recovery token", "user_id", user.ID)
	shared.RespondWithMessage(w, r, http.StatusOK, "Password updated successfully")
}
