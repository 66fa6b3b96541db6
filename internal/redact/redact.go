// Package redact removes credentials and personal data from strings before
// they are logged or returned in error responses. Connection strings for the
// database, cache, broker and mail server, JWTs, bcrypt hashes and email
// addresses are replaced with placeholders.
package redact

import (
	"log/slog"
	"regexp"
	"strings"
)

// Placeholders written in place of redacted values.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedHashPlaceholder       = "[REDACTED_HASH]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rules apply in order. Earlier rules consume text that later rules would
// otherwise match partially (a DSN's password before the generic key=value).
var rules = []rule{
	{
		regexp.MustCompile(`(?i)\b(postgres(?:ql)?|redis|rediss|kafka|smtps?|amqp)://[^@\s/]+@`),
		"$1://" + RedactedCredentialPlaceholder + "@",
	},
	{
		regexp.MustCompile(`\$2[aby]?\$\d{2}\$[./A-Za-z0-9]{53}`),
		RedactedHashPlaceholder,
	},
	{
		regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		RedactedJWTPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9._~+/-]+=*`),
		"${1}" + RedactionPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)\b(password|passwd|pwd|secret|jwt_secret|token)(["']?\s*[=:]\s*["']?)[^"'&\s,}]+`),
		"${1}${2}" + RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		RedactedEmailPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)\b(?:SELECT\s.+?\sFROM|INSERT\s+INTO|UPDATE\s+\w+\s+SET|DELETE\s+FROM)\b[^;\n]*`),
		RedactedSQLPlaceholder,
	},
	{
		regexp.MustCompile(`(?:/[\w.-]+)+\.(?:go|sql|ya?ml|env|db|sqlite)\b(?::\d+)?`),
		RedactedPathPlaceholder,
	},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

var sensitiveKeys = map[string]bool{
	"password":        true,
	"new_password":    true,
	"hashed_password": true,
	"token":           true,
	"access_token":    true,
	"authorization":   true,
	"secret":          true,
	"jwt_secret":      true,
	"smtp_password":   true,
	"redis_password":  true,
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook. Attributes with a
// sensitive key are blanked; error and string values are passed through
// String.
func ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, RedactionPlaceholder)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		if a.Key == slog.MessageKey || a.Key == slog.LevelKey {
			return a
		}
		if s := a.Value.String(); s != "" {
			if red := String(s); red != s {
				return slog.String(a.Key, red)
			}
		}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, Error(err))
		}
	}
	return a
}
