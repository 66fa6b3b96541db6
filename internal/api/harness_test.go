package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/scaffold-api/internal/api"
	"github.com/phrazzld/scaffold-api/internal/api/middleware"
	"github.com/phrazzld/scaffold-api/internal/cache"
	"github.com/phrazzld/scaffold-api/internal/config"
	"github.com/phrazzld/scaffold-api/internal/domain"
	"github.com/phrazzld/scaffold-api/internal/email"
	"github.com/phrazzld/scaffold-api/internal/service"
	"github.com/phrazzld/scaffold-api/internal/service/auth"
	"github.com/phrazzld/scaffold-api/internal/store"
	"github.com/phrazzld/scaffold-api/internal/task"
	"github.com/phrazzld/scaffold-api/internal/testdb"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "correct-horse-battery"

type recordingSender struct {
	mu   sync.Mutex
	sent []email.Message
}

func (s *recordingSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) last(t *testing.T) email.Message {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.sent, "no email sent")
	return s.sent[len(s.sent)-1]
}

type harnessOptions struct {
	openRegistration bool
	emailDisabled    bool
}

type harness struct {
	handler http.Handler
	users   *service.UserServiceImpl
	tokens  auth.JWTService
	sender  *recordingSender
	queue   *task.TaskQueue
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(t *testing.T, opts harnessOptions) *harness {
	t.Helper()

	db := testdb.Open(t)
	logger := discardLogger()

	tokens, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                  "test-secret-that-is-at-least-32-characters",
		AccessTokenLifetimeMinutes: 60,
		ResetTokenLifetimeHours:    1,
	})
	require.NoError(t, err)

	users := service.NewUserService(db, store.NewUserRepository(testdb.Dialect(), logger),
		auth.NewBcryptHasher(bcrypt.MinCost), logger)
	items := service.NewItemService(db, store.NewItemRepository(testdb.Dialect(), logger), logger)

	sender := &recordingSender{}
	var emailSender email.Sender = sender
	if opts.emailDisabled {
		emailSender = nil
	}
	mailer, err := email.NewMailerWithSender(emailSender, config.ProjectConfig{
		Name:       "Scaffold",
		ServerHost: "https://scaffold.example.com",
	}, 1, logger)
	require.NoError(t, err)

	recovery := service.NewPasswordRecovery(users, tokens, mailer, cache.NewMemory(time.Hour), logger)

	queue := task.NewTaskQueue(10, logger)
	t.Cleanup(queue.Close)
	dispatcher := task.NewDispatcher(queue, task.NewRouter(task.DefaultRoutes(), task.DefaultQueue), logger)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(logger))
	r.Route("/api/v1", func(r chi.Router) {
		api.Routes(r, api.Handlers{
			Auth:         api.NewAuthHandler(users, tokens, recovery, logger),
			Users:        api.NewUserHandler(users, mailer, opts.openRegistration, logger),
			Items:        api.NewItemHandler(items, logger),
			Utils:        api.NewUtilsHandler(dispatcher, mailer, logger),
			Authenticate: middleware.NewAuthMiddleware(tokens, users).Authenticate,
		})
	})

	return &harness{
		handler: r,
		users:   users,
		tokens:  tokens,
		sender:  sender,
		queue:   queue,
	}
}

func (h *harness) createUser(t *testing.T, emailAddr string, superuser bool) (*domain.User, string) {
	t.Helper()
	ctx := context.Background()

	u, err := h.users.Create(ctx, domain.UserCreate{
		Email:       emailAddr,
		Password:    testPassword,
		IsSuperuser: &superuser,
	})
	require.NoError(t, err)

	token, err := h.tokens.GenerateToken(ctx, u.ID)
	require.NoError(t, err)
	return u, token
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			buf, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(buf)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorBody struct {
	Detail  string `json:"detail"`
	TraceID string `json:"trace_id"`
}

type msgBody struct {
	Msg string `json:"msg"`
}

var resetTokenPattern = regexp.MustCompile(`token=([A-Za-z0-9_.\-]+)`)

func resetTokenFrom(t *testing.T, msg email.Message) string {
	t.Helper()
	m := resetTokenPattern.FindStringSubmatch(msg.HTML)
	require.Len(t, m, 2, "no reset link in email")
	return m[1]
}
