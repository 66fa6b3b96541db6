package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"

	"github.com/go-mail/mail"
	"github.com/phrazzld/scaffold-api/internal/config"
)

// SMTPSender delivers messages through an SMTP server.
type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	tlsMode  string
	from     string
	fromName string
	logger   *slog.Logger
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender creates an SMTPSender from cfg. Credentials are only used
// when both user and password are set.
func NewSMTPSender(cfg config.EmailConfig, logger *slog.Logger) *SMTPSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		tlsMode:  cfg.TLSMode,
		from:     cfg.FromEmail,
		fromName: cfg.FromName,
		logger:   logger.With("component", "smtp_sender"),
	}
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := mail.NewMessage()
	if s.fromName != "" {
		m.SetAddressHeader("From", s.from, s.fromName)
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	user, password := s.user, s.password
	if user == "" || password == "" {
		user, password = "", ""
	}

	d := mail.NewDialer(s.host, s.port, user, password)
	d.TLSConfig = &tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}
	switch s.tlsMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		d.StartTLSPolicy = mail.OpportunisticStartTLS
	}

	if err := d.DialAndSend(m); err != nil {
		s.logger.ErrorContext(ctx, "smtp send failed",
			"host", s.host,
			"port", s.port,
			"error", err)
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	s.logger.InfoContext(ctx, "email sent",
		"host", s.host,
		"subject", msg.Subject)
	return nil
}
