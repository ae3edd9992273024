package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepInterval bounds how often Allow scans for idle keys.
const sweepInterval = time.Minute

// InMemoryStore is a sliding-window counter per key. It is not shared between
// instances; use RedisStore when running more than one. Keys whose window has
// fully elapsed are evicted by a periodic sweep.
type InMemoryStore struct {
	mu        sync.Mutex
	windows   map[string]*window
	now       func() time.Time
	lastSweep time.Time
}

type window struct {
	stamps []time.Time
	length time.Duration
}

// idle reports whether every hit in w is older than its window.
func (w *window) idle(now time.Time) bool {
	return len(w.stamps) == 0 || !w.stamps[len(w.stamps)-1].After(now.Add(-w.length))
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{windows: make(map[string]*window), now: time.Now}
}

func (s *InMemoryStore) Allow(_ context.Context, key string, limit Limit) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	w, ok := s.windows[key]
	if !ok {
		w = &window{}
		s.windows[key] = w
	}
	w.length = limit.Window

	cutoff := now.Add(-limit.Window)
	for len(w.stamps) > 0 && !w.stamps[0].After(cutoff) {
		w.stamps = w.stamps[1:]
	}

	if len(w.stamps) >= limit.Requests {
		resetAt := w.stamps[0].Add(limit.Window)
		return &Result{
			Allowed:    false,
			Limit:      limit.Requests,
			ResetAt:    resetAt,
			RetryAfter: retryAfter(now, resetAt),
		}, nil
	}

	w.stamps = append(w.stamps, now)
	return &Result{
		Allowed:   true,
		Limit:     limit.Requests,
		Remaining: limit.Requests - len(w.stamps),
		ResetAt:   w.stamps[0].Add(limit.Window),
	}, nil
}

func (s *InMemoryStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for key, w := range s.windows {
		if w.idle(now) {
			delete(s.windows, key)
		}
	}
}

func retryAfter(now, resetAt time.Time) int {
	secs := int(resetAt.Sub(now).Round(time.Second).Seconds())
	if secs < 1 {
		return 1
	}
	return secs
}
