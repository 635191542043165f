package redisserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Pessina/minredis/internal/protocol/resp"
	"github.com/Pessina/minredis/internal/telemetry/logger"
	"github.com/Pessina/minredis/internal/telemetry/metric"
)

// ReplyRateLimited is sent instead of executing a command over the limit.
const ReplyRateLimited = "-ERR rate limit exceeded\r\n"

// Config holds the server configuration.
type Config struct {
	Addr string

	// ReadBufferSize bounds a single command. Default 1024.
	ReadBufferSize int

	// RateLimit is commands per second per client IP. 0 disables.
	RateLimit int

	// IdleTimeout closes a connection that sends nothing for this long.
	// 0 disables.
	IdleTimeout time.Duration

	// WriteTimeout bounds writing one reply. Default 30s.
	WriteTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:           "127.0.0.1:6379",
		ReadBufferSize: 1024,
		WriteTimeout:   30 * time.Second,
	}
}

// Executor turns a decoded command into a reply.
type Executor interface {
	Execute(cmd *resp.Value) string
}

// Server accepts connections and runs commands against an Executor.
type Server struct {
	cfg     Config
	exec    Executor
	logger  logger.Logger
	metrics *metric.Registry
	limiter *limiterRegistry

	ln      net.Listener
	running atomic.Bool
	wg      sync.WaitGroup

	connsMu sync.Mutex
	conns   map[*conn]struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics records connection and decode metrics.
func WithMetrics(r *metric.Registry) Option {
	return func(s *Server) { s.metrics = r }
}

// New creates a server. Zero config fields take their defaults.
func New(cfg Config, exec Executor, opts ...Option) *Server {
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = def.ReadBufferSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}

	s := &Server{
		cfg:    cfg,
		exec:   exec,
		logger: logger.Default(),
		conns:  make(map[*conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.RateLimit > 0 {
		s.limiter = newLimiterRegistry(cfg.RateLimit)
	}
	return s
}

// Start binds the listener and accepts connections in the background.
// Cancelling ctx stops accepting, like Shutdown without waiting.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("redisserver: already started")
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("redisserver: listen %s: %w", s.cfg.Addr, err)
	}
	s.ln = ln

	s.logger.Info("server listening",
		"addr", ln.Addr().String(),
		"read_buffer_size", s.cfg.ReadBufferSize,
		"rate_limit", s.cfg.RateLimit,
		"idle_timeout", s.cfg.IdleTimeout)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ln); err != nil {
			s.logger.Error("accept loop stopped", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.stop()
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown stops accepting, closes live connections and waits for their
// goroutines to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.stop()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("server stopped")
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	var err error
	if s.ln != nil {
		if cerr := s.ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	}

	s.connsMu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.connsMu.Unlock()
	return err
}

func (s *Server) acceptLoop(ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			return err
		}

		c := newConn(nc)
		if !s.track(c) {
			_ = c.Close()
			return nil
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(c)
			s.serveConn(c)
		}()
	}
}

// track registers c unless the server is stopping.
func (s *Server) track(c *conn) bool {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	if !s.running.Load() {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c *conn) {
	s.connsMu.Lock()
	delete(s.conns, c)
	s.connsMu.Unlock()
}

// ActiveConns returns the number of connections being served.
func (s *Server) ActiveConns() int {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	return len(s.conns)
}
