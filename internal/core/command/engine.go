package command

import (
	"strings"
	"time"

	"github.com/Pessina/minredis/internal/protocol/resp"
	"github.com/Pessina/minredis/internal/storage/memory"
	"github.com/Pessina/minredis/internal/storage/snapshot"
	"github.com/Pessina/minredis/internal/storage/strlist"
	"github.com/Pessina/minredis/internal/telemetry/logger"
	"github.com/Pessina/minredis/internal/telemetry/metric"
)

// Fixed replies.
const (
	ReplyInvalidCommand   = "-Invalid Command\r\n"
	ReplyInvalidOperation = "-Invalid operation on string\r\n"
	ReplyOK               = "+OK\r\n"
	ReplyPong             = "+PONG\r\n"
	ReplyNone             = "+NONE\r\n"

	// ReplyConfig is canned so benchmarking tools that probe CONFIG GET at
	// startup keep going.
	ReplyConfig = "*2\r\n$4\r\nsave\r\n$23\r\n3600 1 300 100 60 10000\r\n" +
		"*2\r\n$10\r\nappendonly\r\n$2\r\nno\r\n"
)

// Store is the subset of the store used by commands.
type Store interface {
	Get(key string) (memory.Cell, bool)
	Set(key string, cell memory.Cell) (memory.Cell, bool)
	Delete(key string) (memory.Cell, bool)
	SetList(key, value string, p strlist.Placement) (int, error)
	Update(key string, fn memory.UpdateFunc) error
}

// Saver writes the store to a named snapshot. An empty name selects the
// configured default.
type Saver interface {
	Save(name string) (*snapshot.Info, error)
}

// handler returns the reply for a command's arguments, or ok=false when the
// arguments do not fit the command's shape.
type handler func(args []resp.Value) (reply string, ok bool)

// Engine maps command names to handlers over a shared store.
type Engine struct {
	store    Store
	saver    Saver
	metrics  *metric.Registry
	logger   logger.Logger
	now      func() time.Time
	handlers map[string]handler
}

// Option configures an Engine.
type Option func(*Engine)

// WithSaver enables the SAVE command.
func WithSaver(s Saver) Option {
	return func(e *Engine) { e.saver = s }
}

// WithMetrics records per-command counters and latency.
func WithMetrics(r *metric.Registry) Option {
	return func(e *Engine) { e.metrics = r }
}

// WithLogger sets the logger. Defaults to logger.Default().
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock sets the time source used for relative expiry.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New returns an engine over store.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: logger.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.handlers = map[string]handler{
		"PING":   e.ping,
		"ECHO":   e.echo,
		"SET":    e.set,
		"GET":    e.get,
		"EXIST":  e.exist,
		"DEL":    e.del,
		"INCR":   e.incrBy(1),
		"DECR":   e.incrBy(-1),
		"LPUSH":  e.push(strlist.Front),
		"RPUSH":  e.push(strlist.Back),
		"CONFIG": e.config,
		"SAVE":   e.save,
	}
	return e
}

// Execute runs cmd and returns the reply. cmd must be an array whose first
// element is a bulk string naming the command.
func (e *Engine) Execute(cmd *resp.Value) string {
	start := time.Now()
	name, reply := e.execute(cmd)

	result := "ok"
	if strings.HasPrefix(reply, "-") {
		result = "error"
	}
	e.metrics.Command(name, result, time.Since(start))
	return reply
}

func (e *Engine) execute(cmd *resp.Value) (name, reply string) {
	if cmd == nil || cmd.Kind != resp.KindArray || len(cmd.Array) == 0 ||
		cmd.Array[0].Kind != resp.KindBulkString {
		return "invalid", ReplyInvalidCommand
	}

	name = cmd.Array[0].Str
	h, known := e.handlers[name]
	if !known {
		return "unknown", ReplyInvalidCommand
	}

	reply, ok := h(cmd.Array[1:])
	if !ok {
		return name, ReplyInvalidCommand
	}
	return name, reply
}

// Commands returns the supported command names.
func (e *Engine) Commands() []string {
	names := make([]string, 0, len(e.handlers))
	for n := range e.handlers {
		names = append(names, n)
	}
	return names
}

// bulkStrings returns the payloads of args, or ok=false if any argument is
// not a bulk string.
func bulkStrings(args []resp.Value) ([]string, bool) {
	out := make([]string, len(args))
	for i, a := range args {
		if a.Kind != resp.KindBulkString {
			return nil, false
		}
		out[i] = a.Str
	}
	return out, true
}
