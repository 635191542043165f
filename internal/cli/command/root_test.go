package command

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corecmd "github.com/Pessina/minredis/internal/core/command"
	"github.com/Pessina/minredis/internal/server/redisserver"
	"github.com/Pessina/minredis/internal/storage/memory"
	"github.com/Pessina/minredis/internal/telemetry/logger"
)

func startServer(t *testing.T) string {
	t.Helper()
	eng := corecmd.New(memory.New(), corecmd.WithLogger(logger.Discard()))
	cfg := redisserver.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	s := redisserver.New(cfg, eng, redisserver.WithLogger(logger.Discard()))
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s.Addr().String()
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"minredis-cli"}, args...))
	return out.String(), err
}

func TestApp_Flags(t *testing.T) {
	app := App()
	assert.Equal(t, "minredis-cli", app.Name)

	names := map[string]bool{}
	for _, f := range app.Flags {
		for _, n := range f.Names() {
			names[n] = true
		}
	}
	for _, n := range []string{"addr", "a", "output", "o", "timeout"} {
		assert.True(t, names[n], "missing flag %q", n)
	}
}

func TestApp_SendCommand(t *testing.T) {
	addr := startServer(t)

	out, err := run(t, "-a", addr, "set", "greeting", "hello")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	out, err = run(t, "-a", addr, "GET", "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	out, err = run(t, "-a", addr, "GET", "missing")
	require.NoError(t, err)
	assert.Equal(t, "NONE\n", out)

	out, err = run(t, "-a", addr, "RPUSH", "l", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = run(t, "-a", addr, "NOPE")
	require.NoError(t, err)
	assert.Equal(t, "(error) Invalid Command\n", out)
}

func TestApp_OutputFormats(t *testing.T) {
	addr := startServer(t)

	_, err := run(t, "-a", addr, "SET", "k", "v")
	require.NoError(t, err)

	out, err := run(t, "-a", addr, "-o", "json", "GET", "k")
	require.NoError(t, err)
	assert.JSONEq(t, `"v"`, out)

	out, err = run(t, "-a", addr, "-o", "yaml", "EXIST", "k", "other")
	require.NoError(t, err)
	assert.Equal(t, "\"1\"\n", out)

	_, err = run(t, "-a", addr, "-o", "table", "GET", "k")
	assert.Error(t, err)
}

func TestApp_Ping(t *testing.T) {
	addr := startServer(t)

	out, err := run(t, "-a", addr, "ping")
	require.NoError(t, err)
	assert.Equal(t, "PONG\n", out)

	out, err = run(t, "-a", addr, "echo", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)
}

func TestApp_Version(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "minredis-cli ")

	out, err = run(t, "-o", "json", "version")
	require.NoError(t, err)
	assert.Contains(t, out, `"go_version"`)
}

func TestApp_DialFailure(t *testing.T) {
	_, err := run(t, "-a", "127.0.0.1:1", "--timeout", "200ms", "PING")
	assert.Error(t, err)
}
