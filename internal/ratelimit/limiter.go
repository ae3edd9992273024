package ratelimit

import (
	"context"
	"fmt"
	"log/slog"

	"bistro/pkg/platform/circuit"
)

// Store counts requests per key.
type Store interface {
	Allow(ctx context.Context, key string, limit Limit) (*Result, error)
}

// Limiter checks per-class limits against a primary store. While the breaker
// is open the in-memory fallback answers instead, so limiting degrades to
// per-instance rather than disappearing.
type Limiter struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	limits   map[EndpointClass]Limit
	logger   *slog.Logger
}

type Option func(*Limiter)

func WithFallback(s Store) Option {
	return func(l *Limiter) { l.fallback = s }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(l *Limiter) { l.breaker = b }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) { l.logger = logger }
}

func NewLimiter(primary Store, limits map[EndpointClass]Limit, opts ...Option) (*Limiter, error) {
	if primary == nil {
		return nil, fmt.Errorf("rate limit store is required")
	}
	l := &Limiter{
		primary: primary,
		breaker: circuit.New("ratelimit"),
		limits:  limits,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Check returns (nil, nil) for a class without a configured limit.
func (l *Limiter) Check(ctx context.Context, class EndpointClass, ip string) (*Result, error) {
	limit, ok := l.limits[class]
	if !ok || limit.Requests <= 0 {
		return nil, nil
	}
	k := key(class, ip)

	if l.fallback == nil {
		return l.primary.Allow(ctx, k, limit)
	}

	res, err := l.primary.Allow(ctx, k, limit)
	if err != nil {
		useFallback, change := l.breaker.RecordFailure()
		if change.Opened {
			l.logger.WarnContext(ctx, "rate limit store unavailable, using in-memory fallback",
				"breaker", l.breaker.Name(), "error", err)
		}
		if !useFallback {
			return nil, err
		}
		return l.fallback.Allow(ctx, k, limit)
	}
	usePrimary, change := l.breaker.RecordSuccess()
	if change.Closed {
		l.logger.InfoContext(ctx, "rate limit store recovered", "breaker", l.breaker.Name())
	}
	if !usePrimary {
		return l.fallback.Allow(ctx, k, limit)
	}
	return res, nil
}
