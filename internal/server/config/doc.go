// Package config defines the minredis-server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation
//   - sanitize.go: masking secrets before the config is logged
//
// Configuration is loaded via internal/infra/confloader from a YAML file,
// MINREDIS_* environment variables and command-line flags.
package config
