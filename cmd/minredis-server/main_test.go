package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "minredis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(&flags{})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", cfg.Server.Addr)
	assert.Equal(t, 1024, cfg.Server.ReadBufferSize)
	assert.Equal(t, "store", cfg.Storage.Dir)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: 127.0.0.1:7000
  read_buffer_size: 4096
log:
  level: warn
`)

	cfg, err := loadConfig(&flags{configFile: path, addr: "127.0.0.1:7001", dir: "/tmp/snaps"})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7001", cfg.Server.Addr)
	assert.Equal(t, 4096, cfg.Server.ReadBufferSize)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/snaps", cfg.Storage.Dir)
}

func TestLoadConfig_EnvOverridesDefault(t *testing.T) {
	t.Setenv("MINREDIS_SERVER_RATE_LIMIT", "50")

	cfg, err := loadConfig(&flags{})
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Server.RateLimit)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := loadConfig(&flags{logLevel: "loud"})
	assert.ErrorContains(t, err, "log.level")

	path := writeConfig(t, "server:\n  read_buffer_size: 1\n")
	_, err = loadConfig(&flags{configFile: path})
	assert.ErrorContains(t, err, "read_buffer_size")
}

func TestFlagsOverrides(t *testing.T) {
	assert.Empty(t, (&flags{}).overrides())
	assert.Equal(t, map[string]any{"log.level": "debug"}, (&flags{logLevel: "debug"}).overrides())
}

func TestApp(t *testing.T) {
	a := app()
	assert.Equal(t, "minredis-server", a.Name)

	names := map[string]bool{}
	for _, f := range a.Flags {
		for _, n := range f.Names() {
			names[n] = true
		}
	}
	for _, n := range []string{"config", "addr", "log-level", "dir"} {
		assert.True(t, names[n], "missing flag %q", n)
	}
}
