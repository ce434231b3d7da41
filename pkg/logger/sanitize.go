package logger

import (
	"log/slog"
	"net/url"
	"strings"
)

// MaskIdentifier masks a principal identifier for logging (e.g., "MWTINC" -> "M****C")
func MaskIdentifier(id string) string {
	r := []rune(id)
	switch {
	case len(r) == 0:
		return ""
	case len(r) <= 2:
		return strings.Repeat("*", len(r))
	}
	return string(r[0]) + strings.Repeat("*", len(r)-2) + string(r[len(r)-1])
}

// RedactedAttr returns a redacted slog attribute for sensitive values
// In production, returns "[REDACTED]"; in development, returns the actual value
func RedactedAttr(key, value, env string) slog.Attr {
	if env == "production" {
		return slog.String(key, "[REDACTED]")
	}
	return slog.String(key, value)
}

var sensitiveParams = map[string]bool{
	"q":        true,
	"password": true,
	"secret":   true,
	"token":    true,
	"auth":     true,
}

// SanitizeQueryString reports whether the query string carries a parameter
// that must not be written to request logs. Search terms count as sensitive.
func SanitizeQueryString(rawQuery string) bool {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		// Unparseable; redact rather than guess
		return rawQuery != ""
	}
	for param := range values {
		if sensitiveParams[strings.ToLower(param)] {
			return true
		}
	}
	return false
}
