package logger

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestRedactSensitive(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("config",
		"key", "Name",
		"keys", "3",
		"encryption_key", "0123456789abcdef",
		"password", "hunter2",
		"auth_token", "abc",
		"empty_secret", "",
		"addr", "127.0.0.1:6379",
	)

	entry := decode(t, &buf)
	want := map[string]string{
		"key":            "Name",
		"keys":           "3",
		"encryption_key": redactedValue,
		"password":       redactedValue,
		"auth_token":     redactedValue,
		"empty_secret":   "",
		"addr":           "127.0.0.1:6379",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %q", k, entry[k], v)
		}
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	a := slog.Group("storage", slog.String("dir", "store"), slog.String("encryption_key", "s3cr3t"))
	got := redactSensitive(a)

	attrs := got.Value.Group()
	if len(attrs) != 2 {
		t.Fatalf("group has %d attrs", len(attrs))
	}
	if attrs[0].Value.String() != "store" {
		t.Errorf("dir = %q", attrs[0].Value.String())
	}
	if attrs[1].Value.String() != redactedValue {
		t.Errorf("encryption_key = %q", attrs[1].Value.String())
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"key", false},
		{"Key", false},
		{"keys", false},
		{"addr", false},
		{"encryption_key", true},
		{"storage.encryption-key", true},
		{"Password", true},
		{"client_secret", true},
		{"token", true},
	}
	for _, tt := range tests {
		if got := IsSensitiveKey(tt.name); got != tt.want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRedactString(t *testing.T) {
	if got := RedactString(""); got != "" {
		t.Errorf("RedactString(\"\") = %q", got)
	}
	if got := RedactString("s3cr3t"); got != redactedValue {
		t.Errorf("RedactString() = %q", got)
	}
}
