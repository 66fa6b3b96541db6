package api

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/phrazzld/scaffold-api/internal/api/shared"
	"github.com/phrazzld/scaffold-api/internal/platform/logger"
	"github.com/phrazzld/scaffold-api/internal/redact"
	"github.com/phrazzld/scaffold-api/internal/task"
)

// TaskDispatcher enqueues background tasks.
type TaskDispatcher interface {
	Dispatch(ctx context.Context, name string, args any) (*task.Envelope, error)
}

// TestMailer sends the test email.
type TestMailer interface {
	SendTestEmail(ctx context.Context, emailTo string) error
}

// UtilsHandler serves the superuser diagnostics endpoints.
type UtilsHandler struct {
	dispatcher TaskDispatcher
	mailer     TestMailer
	logger     *slog.Logger
}

// NewUtilsHandler creates a UtilsHandler.
func NewUtilsHandler(dispatcher TaskDispatcher, mailer TestMailer, logger *slog.Logger) *UtilsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UtilsHandler{
		dispatcher: dispatcher,
		mailer:     mailer,
		logger:     logger.With("component", "utils_handler"),
	}
}

// TestCelery handles POST /utils/test-celery by enqueuing the echo task.
func (h *UtilsHandler) TestCelery(w http.ResponseWriter, r *http.Request) {
	var req TestCeleryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	env, err := h.dispatcher.Dispatch(r.Context(), task.TaskTestCelery, task.TestCeleryArgs{Word: req.Msg})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.logger.DebugContext(r.Context(), "test task dispatched", "task_id", env.ID, "queue", env.Queue)
	shared.RespondWithMessage(w, r, http.StatusCreated, "Word received")
}

// TestEmail handles POST /utils/test-email?email_to=...
func (h *UtilsHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	emailTo := r.URL.Query().Get("email_to")
	if emailTo == "" {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "email_to is required")
		return
	}

	if err := h.mailer.SendTestEmail(r.Context(), emailTo); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithMessage(w, r, http.StatusCreated, "Test email sent")
}

// HealthCheck probes one backing service.
type HealthCheck func(ctx context.Context) error

// HealthHandler reports whether every backing service answers.
type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler running checks by name.
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// ServeHTTP responds 200 when all checks pass and 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := HealthResponse{Status: "ok", Services: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			logger.FromContextOrDefault(ctx, slog.Default()).Warn("health check failed",
				"service", name, "error", redact.Error(err))
			resp.Services[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Services[name] = "ok"
	}

	shared.RespondWithJSON(w, r, status, resp)
}
