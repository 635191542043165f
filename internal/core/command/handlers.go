package command

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/Pessina/minredis/internal/protocol/resp"
	"github.com/Pessina/minredis/internal/storage/memory"
	"github.com/Pessina/minredis/internal/storage/strlist"
)

var errNotInteger = errors.New("value is not an integer")

func (e *Engine) ping(args []resp.Value) (string, bool) {
	return ReplyPong, true
}

func (e *Engine) echo(args []resp.Value) (string, bool) {
	s, ok := bulkStrings(args)
	if !ok || len(s) != 1 {
		return "", false
	}
	return resp.SimpleString(s[0]), true
}

// set handles SET key value [EX|PX|EAXT|PXAT amount].
func (e *Engine) set(args []resp.Value) (string, bool) {
	s, ok := bulkStrings(args)
	if !ok || (len(s) != 2 && len(s) != 4) {
		return "", false
	}

	cell := memory.Cell{Value: s[1]}
	if len(s) == 4 {
		expiry, ok := e.expiry(s[2], s[3])
		if !ok {
			return "", false
		}
		cell.Expiry = expiry
	}

	e.store.Set(s[0], cell)
	return ReplyOK, true
}

// expiry resolves an expiry mode and amount to an absolute instant.
func (e *Engine) expiry(mode, amount string) (time.Time, bool) {
	n, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	switch mode {
	case "EX":
		return e.relative(n, time.Second)
	case "PX":
		return e.relative(n, time.Millisecond)
	case "EAXT":
		return time.Unix(n, 0), true
	case "PXAT":
		return time.UnixMilli(n), true
	default:
		return time.Time{}, false
	}
}

// relative returns now plus n units, or false when n units do not fit in a
// time.Duration.
func (e *Engine) relative(n int64, unit time.Duration) (time.Time, bool) {
	limit := int64(math.MaxInt64 / unit)
	if n > limit || n < -limit {
		return time.Time{}, false
	}
	return e.now().Add(time.Duration(n) * unit), true
}

func (e *Engine) get(args []resp.Value) (string, bool) {
	s, ok := bulkStrings(args)
	if !ok || len(s) != 1 {
		return "", false
	}
	cell, found := e.store.Get(s[0])
	if !found {
		return ReplyNone, true
	}
	return resp.SimpleString(cell.Value), true
}

// exist counts keys that are present and live.
func (e *Engine) exist(args []resp.Value) (string, bool) {
	keys, ok := bulkStrings(args)
	if !ok || len(keys) == 0 {
		return "", false
	}
	n := 0
	for _, k := range keys {
		if _, found := e.store.Get(k); found {
			n++
		}
	}
	return resp.SimpleString(strconv.Itoa(n)), true
}

// del removes keys whether or not they have expired.
func (e *Engine) del(args []resp.Value) (string, bool) {
	keys, ok := bulkStrings(args)
	if !ok || len(keys) == 0 {
		return "", false
	}
	n := 0
	for _, k := range keys {
		if _, found := e.store.Delete(k); found {
			n++
		}
	}
	return resp.SimpleString(strconv.Itoa(n)), true
}

// incrBy adds delta to an integer value, keeping its expiry. An absent key
// is seeded with "0" and the delta is not applied.
func (e *Engine) incrBy(delta int64) handler {
	return func(args []resp.Value) (string, bool) {
		s, ok := bulkStrings(args)
		if !ok || len(s) != 1 {
			return "", false
		}

		err := e.store.Update(s[0], func(cur memory.Cell, found bool) (memory.Cell, error) {
			if !found {
				return memory.Cell{Value: "0"}, nil
			}
			n, err := strconv.ParseInt(cur.Value, 10, 64)
			if err != nil {
				return cur, errNotInteger
			}
			if (delta > 0 && n > math.MaxInt64-delta) || (delta < 0 && n < math.MinInt64-delta) {
				return cur, errNotInteger
			}
			cur.Value = strconv.FormatInt(n+delta, 10)
			return cur, nil
		})
		if err != nil {
			return ReplyInvalidOperation, true
		}
		return ReplyOK, true
	}
}

// push inserts each element in order and replies with the final length.
func (e *Engine) push(p strlist.Placement) handler {
	return func(args []resp.Value) (string, bool) {
		s, ok := bulkStrings(args)
		if !ok || len(s) < 2 {
			return "", false
		}

		var n int
		for _, elem := range s[1:] {
			var err error
			if n, err = e.store.SetList(s[0], elem, p); err != nil {
				return resp.Error(err.Error()), true
			}
		}
		return resp.SimpleString(strconv.Itoa(n)), true
	}
}

func (e *Engine) config(args []resp.Value) (string, bool) {
	return ReplyConfig, true
}

// save handles SAVE [name].
func (e *Engine) save(args []resp.Value) (string, bool) {
	s, ok := bulkStrings(args)
	if !ok || len(s) > 1 {
		return "", false
	}
	if e.saver == nil {
		return resp.Error("ERR persistence is disabled"), true
	}

	var name string
	if len(s) == 1 {
		name = s[0]
	}
	info, err := e.saver.Save(name)
	e.metrics.SnapshotSaved(err)
	if err != nil {
		e.logger.Warn("SAVE failed", "name", name, "error", err)
		return resp.Error("ERR " + err.Error()), true
	}
	e.logger.Debug("SAVE completed", "name", info.Name, "keys", info.KeyCount)
	return ReplyOK, true
}
