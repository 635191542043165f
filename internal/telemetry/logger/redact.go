package logger

import (
	"log/slog"
	"strings"
)

var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"auth",
}

const redactedValue = "***REDACTED***"

// redactSensitive replaces non-empty string attributes with secret-looking
// names. Groups are walked recursively.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if a.Value.String() != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// IsSensitiveKey reports whether an attribute or config field name suggests
// secret content. A bare "key" names a store key and is not sensitive;
// compound names such as "encryption_key" are.
func IsSensitiveKey(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return strings.HasSuffix(lower, "_key") || strings.HasSuffix(lower, "-key") || strings.HasSuffix(lower, ".key")
}

// RedactString masks a secret for display, keeping its length hidden.
func RedactString(value string) string {
	if value == "" {
		return ""
	}
	return redactedValue
}
