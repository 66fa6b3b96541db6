package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/scaffold-api/internal/api/shared"
	"github.com/phrazzld/scaffold-api/internal/domain"
	"github.com/phrazzld/scaffold-api/internal/service"
)

// AccountMailer notifies users of accounts created for them.
type AccountMailer interface {
	Enabled() bool
	SendNewAccountEmail(ctx context.Context, emailTo, username, password string) error
}

// UserHandler handles user management requests.
type UserHandler struct {
	users            service.UserService
	mailer           AccountMailer
	openRegistration bool
	logger           *slog.Logger
}

// NewUserHandler creates a UserHandler. openRegistration enables
// anonymous sign-up through Register.
func NewUserHandler(
	users service.UserService,
	mailer AccountMailer,
	openRegistration bool,
	logger *slog.Logger,
) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:            users,
		mailer:           mailer,
		openRegistration: openRegistration,
		logger:           logger.With("component", "user_handler"),
	}
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := shared.ParsePage(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	users, err := h.users.List(r.Context(), page)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, users)
}

// Create handles POST /users. The new user is emailed their credentials
// when email is configured; a failed email does not undo the account.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.UserCreate
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Create(r.Context(), req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if h.mailer != nil && h.mailer.Enabled() {
		if err := h.mailer.SendNewAccountEmail(r.Context(), user.Email, user.Email, req.Password); err != nil {
			h.logger.ErrorContext(r.Context(), "failed to send new account email", "error", err, "user_id", user.ID)
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, shared.CurrentUser(r.Context()))
}

// UpdateMe handles PUT /users/me.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	current := shared.CurrentUser(r.Context())

	var req UpdateMeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Update(r.Context(), current.ID, req.UserUpdate())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// Register handles POST /users/open.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.openRegistration {
		shared.RespondWithError(w, r, http.StatusForbidden, "Open user registration is forbidden on this server")
		return
	}

	var req UserRegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Create(r.Context(), req.UserCreate())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// Get handles GET /users/{id}. Users may read themselves; anyone else
// requires superuser rights.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	current, id, ok := handleUserAndPathID(w, r, "id")
	if !ok {
		return
	}
	if id != current.ID && !h.users.IsSuperuser(current) {
		HandleAPIError(w, r, service.ErrInsufficientPrivileges, "")
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// Update handles PUT /users/{id}. Routed behind RequireSuperuser.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, id, ok := handleUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.UserUpdate
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Update(r.Context(), id, req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}
