package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/scaffold-api/internal/cache"
	"github.com/phrazzld/scaffold-api/internal/domain"
	"github.com/phrazzld/scaffold-api/internal/service/auth"
)

// ResetMailer sends password recovery emails.
type ResetMailer interface {
	SendResetPasswordEmail(ctx context.Context, emailTo, username, token string) error
}

// usedResetTokenPrefix keys the cache entries marking redeemed reset tokens.
const usedResetTokenPrefix = "password-reset:used:"

// PasswordRecovery issues and redeems password reset tokens. Redeemed token
// ids are kept in the cache until the token would have expired, so each
// token works once.
type PasswordRecovery struct {
	users  UserService
	tokens auth.JWTService
	mailer ResetMailer
	cache  cache.Client
	now    func() time.Time
	logger *slog.Logger
}

// NewPasswordRecovery creates a PasswordRecovery.
func NewPasswordRecovery(
	users UserService,
	tokens auth.JWTService,
	mailer ResetMailer,
	c cache.Client,
	logger *slog.Logger,
) *PasswordRecovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &PasswordRecovery{
		users:  users,
		tokens: tokens,
		mailer: mailer,
		cache:  c,
		now:    time.Now,
		logger: logger.With("component", "password_recovery"),
	}
}

// Recover emails a reset link to the user registered under email. Returns
// store.ErrUserNotFound when there is no such user.
func (p *PasswordRecovery) Recover(ctx context.Context, email string) error {
	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := p.tokens.GeneratePasswordResetToken(ctx, user.Email)
	if err != nil {
		return NewServiceError("password_recovery", "recover", err)
	}

	if err := p.mailer.SendResetPasswordEmail(ctx, user.Email, user.Email, token); err != nil {
		p.logger.ErrorContext(ctx, "failed to send password recovery email", "error", err, "user_id", user.ID)
		return err
	}

	p.logger.InfoContext(ctx, "password recovery email sent", "user_id", user.ID)
	return nil
}

// Reset sets a new password for the user named by token. Returns
// auth.ErrInvalidToken or auth.ErrExpiredToken for a bad token,
// ErrResetTokenUsed for a redeemed one, store.ErrUserNotFound and
// ErrInactiveUser for an unusable account.
func (p *PasswordRecovery) Reset(ctx context.Context, token, newPassword string) (*domain.User, error) {
	claims, err := p.tokens.ValidatePasswordResetToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := p.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	if !p.users.IsActive(user) {
		return nil, ErrInactiveUser
	}

	update := domain.UserUpdate{Password: domain.Some(newPassword)}
	if err := update.Validate(); err != nil {
		return nil, err
	}

	key := usedResetTokenPrefix + claims.ID
	ttl := claims.ExpiresAt.Sub(p.now())
	if ttl < time.Minute {
		ttl = time.Minute
	}
	fresh, err := p.cache.SetIfAbsent(ctx, key, user.Email, ttl)
	if err != nil {
		return nil, NewServiceError("password_recovery", "reset", err)
	}
	if !fresh {
		return nil, ErrResetTokenUsed
	}

	updated, err := p.users.Update(ctx, user.ID, update)
	if err != nil {
		if delErr := p.cache.Delete(ctx, key); delErr != nil {
			p.logger.WarnContext(ctx, "failed to release reset token after error", "error", errors.Join(err, delErr))
		}
		return nil, err
	}

	p.logger.InfoContext(ctx, "password reset", "user_id", updated.ID)
	return updated, nil
}
