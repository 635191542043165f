package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/Pessina/minredis/internal/storage/snapshot"
	"github.com/Pessina/minredis/internal/telemetry/logger"
	"github.com/Pessina/minredis/pkg/crypto/adaptive"
)

const (
	minReadBufferSize = 16
	maxReadBufferSize = 1 << 20
)

// Verify validates the configuration and reports every problem found.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyServer(&cfg.Server),
		verifyStorage(&cfg.Storage),
		verifyMetrics(&cfg.Metrics),
		verifyLog(&cfg.Log),
	)
}

func verifyServer(cfg *ServerSection) error {
	var errs []error
	if err := verifyAddr("server.addr", cfg.Addr); err != nil {
		errs = append(errs, err)
	}
	if cfg.ReadBufferSize < minReadBufferSize || cfg.ReadBufferSize > maxReadBufferSize {
		errs = append(errs, fmt.Errorf("server.read_buffer_size must be between %d and %d, got %d",
			minReadBufferSize, maxReadBufferSize, cfg.ReadBufferSize))
	}
	if cfg.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must not be negative"))
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, errors.New("server.idle_timeout must not be negative"))
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must not be negative"))
	}
	return errors.Join(errs...)
}

func verifyStorage(cfg *StorageSection) error {
	var errs []error
	if cfg.Dir == "" {
		errs = append(errs, errors.New("storage.dir is required"))
	}
	if !snapshot.ValidName(cfg.SnapshotName) {
		errs = append(errs, fmt.Errorf("storage.snapshot_name %q is not a valid file name", cfg.SnapshotName))
	}
	if cfg.EncryptionKey != "" && len(cfg.EncryptionKey) < adaptive.MinSecretLength {
		errs = append(errs, fmt.Errorf("storage.encryption_key must be at least %d characters", adaptive.MinSecretLength))
	}
	return errors.Join(errs...)
}

func verifyMetrics(cfg *MetricsSection) error {
	if !cfg.Enabled {
		return nil
	}
	return verifyAddr("metrics.addr", cfg.Addr)
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	if !logger.ValidLevel(cfg.Level) {
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level))
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of json, text", cfg.Format))
	}
	return errors.Join(errs...)
}

func verifyAddr(field, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", field)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s %q: %w", field, addr, err)
	}
	return nil
}
