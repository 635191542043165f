package redisserver

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused per-IP limiter is kept.
const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterRegistry hands out one token bucket per client IP.
type limiterRegistry struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	perSecond int
	lastPrune time.Time
}

func newLimiterRegistry(perSecond int) *limiterRegistry {
	return &limiterRegistry{
		limiters:  make(map[string]*limiterEntry),
		perSecond: perSecond,
		lastPrune: time.Now(),
	}
}

// allow reports whether ip may run one more command now.
func (r *limiterRegistry) allow(ip string) bool {
	return r.get(ip).Allow()
}

func (r *limiterRegistry) get(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.lastPrune) > limiterIdleTTL {
		for k, e := range r.limiters {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(r.limiters, k)
			}
		}
		r.lastPrune = now
	}

	e, ok := r.limiters[ip]
	if !ok {
		// Burst equals the per-second rate.
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(r.perSecond), r.perSecond)}
		r.limiters[ip] = e
	}
	e.lastSeen = now
	return e.limiter
}

func (r *limiterRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}
