package auth

import (
	"context"
	"time"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess        = "access"
	TokenTypePasswordReset = "password_reset"
)

// JWTService defines operations for managing JWT tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the user.
	GenerateToken(ctx context.Context, userID int64) (string, error)

	// ValidateToken validates an access token and returns its claims.
	// Returns ErrExpiredToken, ErrWrongTokenType or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GeneratePasswordResetToken creates a signed token allowing the owner
	// of email to choose a new password.
	GeneratePasswordResetToken(ctx context.Context, email string) (string, error)

	// ValidatePasswordResetToken validates a reset token and returns its
	// claims; Email holds the address it was issued for.
	ValidatePasswordResetToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the validated contents of a token.
type Claims struct {
	// UserID is set for access tokens.
	UserID int64
	// Email is set for password reset tokens.
	Email string
	// TokenType indicates the purpose of the token.
	TokenType string

	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
