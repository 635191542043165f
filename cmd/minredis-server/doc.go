// Package main provides the entry point for minredis-server.
//
// The server speaks a subset of RESP over TCP and keeps every key in memory.
// Snapshots are written on SAVE and, when configured, on shutdown.
//
// Usage:
//
//	minredis-server [flags]
//	minredis-server --config /path/to/config.yaml
//
// Flags override MINREDIS_* environment variables, which override the config
// file, which overrides the built-in defaults. Changing log.level in
// the config file takes effect without a restart.
package main
