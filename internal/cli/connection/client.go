package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/Pessina/minredis/internal/protocol/resp"
)

// DefaultTimeout bounds dialing and each command round trip.
const DefaultTimeout = 5 * time.Second

// maxReplySize stops a misbehaving server from growing the buffer forever.
const maxReplySize = 64 << 20

var (
	ErrNotConnected   = errors.New("connection: not connected")
	ErrReplyTooLarge  = errors.New("connection: reply exceeds size limit")
	ErrNoCommand      = errors.New("connection: empty command")
	ErrClosedMidReply = errors.New("connection: server closed the connection mid-reply")
)

// Client talks to one minredis server over TCP.
type Client struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	buf     []byte
}

// NewClient returns an unconnected client for addr.
func NewClient(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{addr: addr, timeout: timeout, buf: make([]byte, 4096)}
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Connect dials the server.
func (c *Client) Connect(ctx context.Context) error {
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("connection: dial %s: %w", c.addr, err)
	}
	c.conn = conn
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Do sends args as one command and returns the decoded reply. A nil value
// with a nil error is a null reply.
func (c *Client) Do(ctx context.Context, args ...string) (*resp.Value, error) {
	if len(args) == 0 {
		return nil, ErrNoCommand
	}
	if c.conn == nil {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	if _, err := c.conn.Write([]byte(resp.Command(args...))); err != nil {
		return nil, fmt.Errorf("connection: write: %w", err)
	}
	return c.readReply()
}

// readReply reads until the accumulated bytes hold one complete value.
func (c *Client) readReply() (*resp.Value, error) {
	var acc []byte
	for {
		n, err := c.conn.Read(c.buf)
		acc = append(acc, c.buf[:n]...)

		if n > 0 {
			cursor := string(acc)
			v, derr := resp.Decode(&cursor)
			switch {
			case derr == nil:
				return v, nil
			case !errors.Is(derr, resp.ErrTruncated):
				return nil, fmt.Errorf("connection: bad reply: %w", derr)
			}
			if len(acc) > maxReplySize {
				return nil, ErrReplyTooLarge
			}
		}

		if err != nil {
			if len(acc) > 0 {
				return nil, fmt.Errorf("%w: %v", ErrClosedMidReply, err)
			}
			return nil, fmt.Errorf("connection: read: %w", err)
		}
	}
}
