package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/scaffold-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

var fixedTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", AccessTokenLifetimeMinutes: 1, ResetTokenLifetimeHours: 1})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, AccessTokenLifetimeMinutes: 60, ResetTokenLifetimeHours: 48})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	lifetime := 8 * 24 * time.Hour
	svc := newHMACJWTService(testSecret, lifetime, time.Hour, fixedClock(fixedTime))

	token, err := svc.GenerateToken(context.Background(), 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(lifetime).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	lifetime := time.Hour
	issue := func(secret string, at time.Time) string {
		token, err := newHMACJWTService(secret, lifetime, time.Hour, fixedClock(at)).GenerateToken(context.Background(), 7)
		require.NoError(t, err)
		return token
	}
	reset, err := newHMACJWTService(testSecret, lifetime, time.Hour, fixedClock(fixedTime)).
		GeneratePasswordResetToken(context.Background(), "a@example.com")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		now     time.Time
		wantErr error
	}{
		{name: "valid token", token: issue(testSecret, fixedTime), now: fixedTime},
		{name: "within clock skew", token: issue(testSecret, fixedTime), now: fixedTime.Add(lifetime + time.Minute)},
		{name: "expired token", token: issue(testSecret, fixedTime), now: fixedTime.Add(lifetime + 5*time.Minute), wantErr: ErrExpiredToken},
		{name: "not yet valid", token: issue(testSecret, fixedTime.Add(time.Hour)), now: fixedTime, wantErr: ErrTokenNotYetValid},
		{name: "wrong secret", token: issue(wrongSecret, fixedTime), now: fixedTime, wantErr: ErrInvalidToken},
		{name: "malformed", token: "not-a-jwt", now: fixedTime, wantErr: ErrInvalidToken},
		{name: "reset token used as access", token: reset, now: fixedTime, wantErr: ErrWrongTokenType},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := newHMACJWTService(testSecret, lifetime, time.Hour, fixedClock(tc.now))

			claims, err := svc.ValidateToken(context.Background(), tc.token)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(7), claims.UserID)
		})
	}
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := jwtCustomClaims{
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	svc := newHMACJWTService(testSecret, time.Hour, time.Hour, fixedClock(fixedTime))
	_, err = svc.ValidateToken(context.Background(), unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_NonNumericSubject(t *testing.T) {
	t.Parallel()

	svc := newHMACJWTService(testSecret, time.Hour, time.Hour, fixedClock(fixedTime))
	token, err := svc.sign(context.Background(), TokenTypeAccess, "not-a-number", time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordResetToken(t *testing.T) {
	t.Parallel()

	resetLifetime := 48 * time.Hour
	svc := newHMACJWTService(testSecret, time.Hour, resetLifetime, fixedClock(fixedTime))

	token, err := svc.GeneratePasswordResetToken(context.Background(), "user@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidatePasswordResetToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, TokenTypePasswordReset, claims.TokenType)
	assert.Equal(t, fixedTime.Add(resetLifetime).Unix(), claims.ExpiresAt.Unix())

	access, err := svc.GenerateToken(context.Background(), 1)
	require.NoError(t, err)
	_, err = svc.ValidatePasswordResetToken(context.Background(), access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	later := newHMACJWTService(testSecret, time.Hour, resetLifetime, fixedClock(fixedTime.Add(resetLifetime+time.Hour)))
	_, err = later.ValidatePasswordResetToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
