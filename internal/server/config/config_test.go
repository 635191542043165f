package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, 1024, cfg.Server.ReadBufferSize)
	assert.Zero(t, cfg.Server.RateLimit)
	assert.Zero(t, cfg.Server.IdleTimeout)
	assert.Equal(t, "store", cfg.Storage.Dir)
	assert.Equal(t, "dump", cfg.Storage.SnapshotName)
	assert.False(t, cfg.Storage.LoadOnStart)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)

	require.NoError(t, Verify(cfg))
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{"empty addr", func(c *ServerConfig) { c.Server.Addr = "" }, "server.addr is required"},
		{"addr without port", func(c *ServerConfig) { c.Server.Addr = "localhost" }, "server.addr"},
		{"tiny buffer", func(c *ServerConfig) { c.Server.ReadBufferSize = 4 }, "read_buffer_size"},
		{"negative rate", func(c *ServerConfig) { c.Server.RateLimit = -1 }, "rate_limit"},
		{"negative idle", func(c *ServerConfig) { c.Server.IdleTimeout = -time.Second }, "idle_timeout"},
		{"no dir", func(c *ServerConfig) { c.Storage.Dir = "" }, "storage.dir"},
		{"bad snapshot name", func(c *ServerConfig) { c.Storage.SnapshotName = "../x" }, "snapshot_name"},
		{"short key", func(c *ServerConfig) { c.Storage.EncryptionKey = "short" }, "encryption_key"},
		{"metrics addr", func(c *ServerConfig) { c.Metrics.Enabled = true; c.Metrics.Addr = "" }, "metrics.addr"},
		{"log level", func(c *ServerConfig) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *ServerConfig) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Verify(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVerify_ReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = ""
	cfg.Log.Level = "loud"

	err := Verify(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.addr")
	assert.Contains(t, err.Error(), "log.level")
}

func TestVerify_MetricsDisabledIgnoresAddr(t *testing.T) {
	cfg := Default()
	cfg.Metrics.Addr = ""
	assert.NoError(t, Verify(cfg))
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.Storage.EncryptionKey = "super-secret-key-1234567890"

	sanitized := Sanitize(cfg)

	assert.Equal(t, "super-secret-key-1234567890", cfg.Storage.EncryptionKey, "original must be unchanged")
	assert.NotEqual(t, cfg.Storage.EncryptionKey, sanitized.Storage.EncryptionKey)
	assert.True(t, strings.HasPrefix(sanitized.Storage.EncryptionKey, "su"))
	assert.True(t, strings.HasSuffix(sanitized.Storage.EncryptionKey, "90"))
	assert.Contains(t, sanitized.Storage.EncryptionKey, "****")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", maskSecret("abc"))
	assert.Equal(t, "ab**ef", maskSecret("abcdef"))
}
