package redisserver

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Pessina/minredis/internal/protocol/resp"
)

// conn is one client connection.
type conn struct {
	netConn net.Conn
	bw      *bufio.Writer
	id      string
	ip      string
	closed  atomic.Bool
}

func newConn(nc net.Conn) *conn {
	ip := nc.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return &conn{
		netConn: nc,
		bw:      bufio.NewWriter(nc),
		id:      ulid.Make().String(),
		ip:      ip,
	}
}

func (c *conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// serveConn runs the read, decode, execute, write loop until the peer
// closes, an I/O error occurs, or the input cannot be decoded.
func (s *Server) serveConn(c *conn) {
	defer c.Close()

	log := s.logger.With("conn_id", c.id, "remote", c.netConn.RemoteAddr().String())
	s.metrics.ConnOpened()
	defer s.metrics.ConnClosed()
	log.Debug("connection accepted")

	buf := make([]byte, s.cfg.ReadBufferSize)
	commands := 0
	defer func() { log.Debug("connection closed", "commands", commands) }()

	for {
		if s.cfg.IdleTimeout > 0 {
			if err := c.netConn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout)); err != nil {
				return
			}
		}

		n, err := c.netConn.Read(buf)
		if err != nil || n == 0 {
			var ne net.Error
			switch {
			case err == nil, errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed), c.closed.Load():
			case errors.As(err, &ne) && ne.Timeout():
				log.Debug("connection idle timeout")
			default:
				log.Debug("connection read error", "error", err)
			}
			return
		}

		input := string(buf[:n])
		cmd, err := resp.Decode(&input)
		if err != nil {
			s.metrics.DecodeError()
			log.Debug("undecodable input, closing", "error", err, "bytes", n)
			return
		}
		if cmd == nil {
			continue
		}

		var reply string
		if s.limiter != nil && !s.limiter.allow(c.ip) {
			s.metrics.RateLimit()
			reply = ReplyRateLimited
		} else {
			reply = s.exec.Execute(cmd)
		}
		commands++

		if err := c.netConn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
			return
		}
		if _, err := c.bw.WriteString(reply); err != nil {
			log.Debug("connection write error", "error", err)
			return
		}
		if err := c.bw.Flush(); err != nil {
			log.Debug("connection write error", "error", err)
			return
		}
	}
}
