package connection

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pessina/minredis/internal/protocol/resp"
)

// fakeServer accepts one connection, reads one request and writes the
// reply in the given chunks.
func fakeServer(t *testing.T, chunks ...string) (addr string, requests <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	reqCh := make(chan string, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()

		buf := make([]byte, 1024)
		n, _ := c.Read(buf)
		reqCh <- string(buf[:n])

		for _, chunk := range chunks {
			_, _ = io.WriteString(c, chunk)
			time.Sleep(10 * time.Millisecond)
		}
	}()
	return ln.Addr().String(), reqCh
}

func TestClient_Do(t *testing.T) {
	addr, reqs := fakeServer(t, "+PONG\r\n")
	c := NewClient(addr, time.Second)
	defer c.Close()

	v, err := c.Do(context.Background(), "PING")
	require.NoError(t, err)
	assert.Equal(t, resp.NewSimpleString("PONG"), *v)
	assert.Equal(t, "*1\r\n$4\r\nPING\r\n", <-reqs)
}

func TestClient_SplitReply(t *testing.T) {
	addr, _ := fakeServer(t, "*2\r\n$4\r\nsa", "ve\r\n$2\r\n", "ok\r\n")
	c := NewClient(addr, time.Second)
	defer c.Close()

	v, err := c.Do(context.Background(), "CONFIG", "GET", "save")
	require.NoError(t, err)
	assert.Equal(t, resp.NewArray(resp.NewBulkString("save"), resp.NewBulkString("ok")), *v)
}

func TestClient_NullReply(t *testing.T) {
	addr, _ := fakeServer(t, "$-1\r\n")
	c := NewClient(addr, time.Second)
	defer c.Close()

	v, err := c.Do(context.Background(), "GET", "k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestClient_ErrorReply(t *testing.T) {
	addr, _ := fakeServer(t, "-Invalid Command\r\n")
	c := NewClient(addr, time.Second)
	defer c.Close()

	v, err := c.Do(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Equal(t, resp.KindError, v.Kind)
	assert.Equal(t, "Invalid Command", v.Str)
}

func TestClient_ClosedMidReply(t *testing.T) {
	addr, _ := fakeServer(t, "$10\r\nabc")
	c := NewClient(addr, time.Second)
	defer c.Close()

	_, err := c.Do(context.Background(), "GET", "k")
	assert.ErrorIs(t, err, ErrClosedMidReply)
}

func TestClient_ClosedWithoutReply(t *testing.T) {
	addr, _ := fakeServer(t)
	c := NewClient(addr, time.Second)
	defer c.Close()

	_, err := c.Do(context.Background(), "PING")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrClosedMidReply)
}

func TestClient_BadReply(t *testing.T) {
	addr, _ := fakeServer(t, "?what\r\n")
	c := NewClient(addr, time.Second)
	defer c.Close()

	_, err := c.Do(context.Background(), "PING")
	assert.ErrorIs(t, err, resp.ErrInvalidCommand)
}

func TestClient_EmptyCommand(t *testing.T) {
	c := NewClient("127.0.0.1:1", time.Second)
	_, err := c.Do(context.Background())
	assert.ErrorIs(t, err, ErrNoCommand)
	assert.NoError(t, c.Close())
}

func TestClient_DialError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	c := NewClient(addr, 200*time.Millisecond)
	_, err = c.Do(context.Background(), "PING")
	assert.Error(t, err)
}
