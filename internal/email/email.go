// Package email renders the application's transactional emails and hands
// them to a Sender.
package email

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"

	"github.com/phrazzld/scaffold-api/internal/config"
)

var (
	// ErrEmailsDisabled is returned when SMTP is not configured.
	ErrEmailsDisabled = errors.New("email: sending is disabled")

	// ErrSendFailed wraps transport failures.
	ErrSendFailed = errors.New("email: send failed")

	// ErrTemplateRender is returned when a template cannot be executed.
	ErrTemplateRender = errors.New("email: template render failed")
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names.
const (
	TemplateTestEmail     = "test_email"
	TemplateResetPassword = "reset_password"
	TemplateNewAccount    = "new_account"
)

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer renders the named templates and sends them. A Mailer built from a
// configuration without SMTP settings refuses every send with
// ErrEmailsDisabled.
type Mailer struct {
	sender      Sender
	enabled     bool
	projectName string
	serverHost  string
	resetHours  int
	templates   *template.Template
	logger      *slog.Logger
}

// NewMailer creates a Mailer that sends through SMTP when cfg.Email is
// enabled.
func NewMailer(cfg *config.Config, logger *slog.Logger) (*Mailer, error) {
	var sender Sender
	if cfg.Email.Enabled() {
		sender = NewSMTPSender(cfg.Email, logger)
	}
	return NewMailerWithSender(sender, cfg.Project, cfg.Auth.ResetTokenLifetimeHours, logger)
}

// NewMailerWithSender creates a Mailer around an explicit sender. A nil
// sender disables sending.
func NewMailerWithSender(
	sender Sender,
	project config.ProjectConfig,
	resetHours int,
	logger *slog.Logger,
) (*Mailer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}

	return &Mailer{
		sender:      sender,
		enabled:     sender != nil,
		projectName: project.Name,
		serverHost:  strings.TrimRight(project.ServerHost, "/"),
		resetHours:  resetHours,
		templates:   tmpl,
		logger:      logger.With("component", "mailer"),
	}, nil
}

// Enabled reports whether the mailer can send.
func (m *Mailer) Enabled() bool {
	return m.enabled
}

// SendTestEmail sends the test_email template to emailTo.
func (m *Mailer) SendTestEmail(ctx context.Context, emailTo string) error {
	subject := fmt.Sprintf("%s - Test email", m.projectName)
	return m.send(ctx, emailTo, subject, TemplateTestEmail, map[string]any{
		"ProjectName": m.projectName,
		"Email":       emailTo,
	})
}

// SendResetPasswordEmail sends a recovery link carrying token.
func (m *Mailer) SendResetPasswordEmail(ctx context.Context, emailTo, username, token string) error {
	subject := fmt.Sprintf("%s - Password recovery for user %s", m.projectName, username)
	link := m.serverHost + "/reset-password?token=" + url.QueryEscape(token)
	return m.send(ctx, emailTo, subject, TemplateResetPassword, map[string]any{
		"ProjectName": m.projectName,
		"Username":    username,
		"Email":       emailTo,
		"ValidHours":  m.resetHours,
		"Link":        link,
	})
}

// SendNewAccountEmail notifies a user created by an administrator.
func (m *Mailer) SendNewAccountEmail(ctx context.Context, emailTo, username, password string) error {
	subject := fmt.Sprintf("%s - New account for user %s", m.projectName, username)
	return m.send(ctx, emailTo, subject, TemplateNewAccount, map[string]any{
		"ProjectName": m.projectName,
		"Username":    username,
		"Password":    password,
		"Email":       emailTo,
		"Link":        m.serverHost,
	})
}

// Render executes the named template with data.
func (m *Mailer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTemplateRender, name, err)
	}
	return buf.String(), nil
}

func (m *Mailer) send(ctx context.Context, to, subject, name string, data any) error {
	if !m.enabled {
		return ErrEmailsDisabled
	}

	html, err := m.Render(name, data)
	if err != nil {
		return err
	}

	m.logger.DebugContext(ctx, "sending email", "template", name)
	return m.sender.Send(ctx, Message{To: to, Subject: subject, HTML: html})
}
