package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"bistro/pkg/platform/audit"
	"bistro/pkg/platform/httputil"
	"bistro/pkg/requestcontext"
)

type Metrics interface {
	IncrementRateLimited(class string)
}

type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event)
}

type Middleware struct {
	limiter *Limiter
	logger  *slog.Logger
	metrics Metrics
	audit   AuditEmitter
}

func NewMiddleware(limiter *Limiter, logger *slog.Logger, metrics Metrics, emitter AuditEmitter) *Middleware {
	return &Middleware{limiter: limiter, logger: logger, metrics: metrics, audit: emitter}
}

// RateLimit limits requests of class per client IP. A limiter error lets the
// request through: these routes must stay reachable when the store is down.
func (m *Middleware) RateLimit(class EndpointClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			result, err := m.limiter.Check(ctx, class, ip)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"error", err,
					"class", class,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}
			if result == nil {
				next.ServeHTTP(w, r)
				return
			}

			addHeaders(w, result)
			if !result.Allowed {
				if m.metrics != nil {
					m.metrics.IncrementRateLimited(string(class))
				}
				if m.audit != nil {
					m.audit.Emit(ctx, audit.Event{
						Action:   audit.ActionRateLimitExceeded,
						Subject:  string(class),
						Decision: "throttled",
					})
				}
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", class,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteJSON(w, http.StatusTooManyRequests, &ExceededResponse{
					Error:      "rate_limit_exceeded",
					Message:    "Too many requests from this IP address. Please try again later.",
					RetryAfter: result.RetryAfter,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addHeaders(w http.ResponseWriter, result *Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
