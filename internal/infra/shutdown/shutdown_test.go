package shutdown

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandler_RunsHooksInReverse(t *testing.T) {
	h := NewHandler(time.Second, quiet())

	var mu sync.Mutex
	var order []string
	for _, name := range []string{"storage", "metrics", "listener"} {
		name := name
		h.OnShutdown(name, func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		})
	}

	h.Trigger()
	h.Trigger()
	require.NoError(t, h.Wait(context.Background()))
	assert.Equal(t, []string{"listener", "metrics", "storage"}, order)

	select {
	case <-h.Done():
	default:
		t.Fatal("Done() not closed after Wait")
	}
}

func TestHandler_HookErrors(t *testing.T) {
	h := NewHandler(time.Second, quiet())

	ran := false
	h.OnShutdown("first", func(context.Context) error { ran = true; return nil })
	h.OnShutdown("broken", func(context.Context) error { return errors.New("boom") })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: boom")
	assert.True(t, ran, "hooks after a failure must still run")
}

func TestHandler_HookTimeout(t *testing.T) {
	h := NewHandler(20*time.Millisecond, quiet())
	h.OnShutdown("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	h.Trigger()

	err := h.Wait(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHandler_Signal(t *testing.T) {
	h := NewHandler(time.Second, quiet())
	called := make(chan struct{})
	h.OnShutdown("hook", func(context.Context) error { close(called); return nil })

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait(context.Background()) }()

	// Give Wait time to install its handler.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after SIGTERM")
	}
	<-called
}
