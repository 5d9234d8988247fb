package governor

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/secblog/internal/common"
)

type window struct {
	start time.Time
	count int
}

// Limiter is a fixed-window rate limiter with two tiers: a per-client cap
// (e.g. 20 login attempts per minute per origin address) and a global
// per-deployment cap (e.g. 500 requests per day). Both are checked and
// counted under one lock so concurrent bursts cannot slip past the limit
// through a read-modify-write race.
type Limiter struct {
	mu sync.Mutex

	limit  int
	window time.Duration

	globalLimit  int
	globalWindow time.Duration

	clients map[string]*window
	global  window

	now func() time.Time
}

func NewLimiter(limit int, win time.Duration, globalLimit int, globalWindow time.Duration) *Limiter {
	return &Limiter{
		limit:        limit,
		window:       win,
		globalLimit:  globalLimit,
		globalWindow: globalWindow,
		clients:      make(map[string]*window),
		now:          time.Now,
	}
}

// Admit counts one request from clientKey and reports whether it is allowed.
// Rejections return common.ErrorRateLimited, which callers surface distinctly
// from lockout. Once the window elapses the counter starts over.
func (l *Limiter) Admit(clientKey string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if l.globalLimit > 0 {
		if now.Sub(l.global.start) >= l.globalWindow {
			l.global = window{start: now}
		}
		if l.global.count >= l.globalLimit {
			return common.ErrorRateLimited
		}
	}

	if l.limit > 0 {
		w, ok := l.clients[clientKey]
		if !ok || now.Sub(w.start) >= l.window {
			w = &window{start: now}
			l.clients[clientKey] = w
			l.pruneLocked(now)
		}
		if w.count >= l.limit {
			return common.ErrorRateLimited
		}
		w.count++
	}

	l.global.count++
	return nil
}

// pruneLocked drops expired client windows so the map does not grow without
// bound. Called with the lock held, only when a new window is created.
func (l *Limiter) pruneLocked(now time.Time) {
	for key, w := range l.clients {
		if now.Sub(w.start) >= l.window {
			delete(l.clients, key)
		}
	}
}
