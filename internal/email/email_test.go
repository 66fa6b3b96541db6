package email

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/scaffold-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

var testProject = config.ProjectConfig{
	Name:       "Scaffold",
	ServerHost: "https://scaffold.example.com/",
}

func newTestMailer(t *testing.T, sender Sender) *Mailer {
	t.Helper()
	m, err := NewMailerWithSender(sender, testProject, 48, nil)
	require.NoError(t, err)
	return m
}

func TestMailer_Disabled(t *testing.T) {
	t.Parallel()

	m := newTestMailer(t, nil)
	assert.False(t, m.Enabled())

	ctx := context.Background()
	assert.ErrorIs(t, m.SendTestEmail(ctx, "a@example.com"), ErrEmailsDisabled)
	assert.ErrorIs(t, m.SendResetPasswordEmail(ctx, "a@example.com", "a", "tok"), ErrEmailsDisabled)
	assert.ErrorIs(t, m.SendNewAccountEmail(ctx, "a@example.com", "a", "pw"), ErrEmailsDisabled)
}

func TestNewMailer_FromConfig(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Project: testProject}
	m, err := NewMailer(cfg, nil)
	require.NoError(t, err)
	assert.False(t, m.Enabled())

	cfg.Email = config.EmailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587, FromEmail: "noreply@example.com"}
	m, err = NewMailer(cfg, nil)
	require.NoError(t, err)
	assert.True(t, m.Enabled())
}

func TestMailer_Templates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		send        func(m *Mailer) error
		wantSubject string
		wantBody    []string
	}{
		{
			name:        "test email",
			send:        func(m *Mailer) error { return m.SendTestEmail(context.Background(), "dest@example.com") },
			wantSubject: "Scaffold - Test email",
			wantBody:    []string{"Scaffold", "dest@example.com"},
		},
		{
			name: "reset password",
			send: func(m *Mailer) error {
				return m.SendResetPasswordEmail(context.Background(), "dest@example.com", "dest", "abc.def")
			},
			wantSubject: "Scaffold - Password recovery for user dest",
			wantBody: []string{
				"https://scaffold.example.com/reset-password?token=abc.def",
				"48 hours",
			},
		},
		{
			name: "new account",
			send: func(m *Mailer) error {
				return m.SendNewAccountEmail(context.Background(), "dest@example.com", "dest", "s3cret-pass")
			},
			wantSubject: "Scaffold - New account for user dest",
			wantBody:    []string{"s3cret-pass", "https://scaffold.example.com"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := &recordingSender{}
			m := newTestMailer(t, rec)

			require.NoError(t, tc.send(m))
			require.Len(t, rec.sent, 1)

			msg := rec.sent[0]
			assert.Equal(t, "dest@example.com", msg.To)
			assert.Equal(t, tc.wantSubject, msg.Subject)
			for _, want := range tc.wantBody {
				assert.Contains(t, msg.HTML, want)
			}
		})
	}
}

func TestMailer_EscapesValues(t *testing.T) {
	t.Parallel()

	html, err := newTestMailer(t, nil).Render(TemplateNewAccount, map[string]any{
		"ProjectName": "Scaffold",
		"Username":    "<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestMailer_RenderUnknownTemplate(t *testing.T) {
	t.Parallel()

	_, err := newTestMailer(t, nil).Render("missing", nil)
	assert.ErrorIs(t, err, ErrTemplateRender)
}

func TestMailer_SenderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	m := newTestMailer(t, &recordingSender{err: boom})
	assert.ErrorIs(t, m.SendTestEmail(context.Background(), "dest@example.com"), boom)
}
