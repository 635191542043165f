// Package logger provides structured logging for minredis.
//
// It wraps log/slog:
//
//   - logger.go: construction, level control and the process-wide default
//   - context.go: context propagation and per-connection ids
//   - redact.go: masking of secret-looking attributes
//
// Store keys and values are logged as-is; only attributes whose names look
// like credentials (password, secret, token, encryption_key, ...) are
// replaced with a placeholder.
package logger
