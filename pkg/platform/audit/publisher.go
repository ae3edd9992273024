// Package audit emits structured audit events. Emission is best-effort: a sink
// failure is logged and never fails the request that produced the event.
package audit

import (
	"context"
	"log/slog"

	"github.com/mssola/useragent"

	"bistro/internal/authz"
	"bistro/pkg/requestcontext"
)

// Publisher accepts audit events.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Enrich fills category, timestamp and request metadata from ctx.
func Enrich(ctx context.Context, event Event) Event {
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.ActorEmail == "" {
		event.ActorEmail = requestcontext.Email(ctx)
	}
	if ua := requestcontext.UserAgent(ctx); ua != "" && event.Browser == "" {
		parsed := useragent.New(ua)
		name, version := parsed.Browser()
		if version != "" {
			name += " " + version
		}
		event.Browser = name
		event.OS = parsed.OS()
	}
	return event
}

// Emitter wraps a Publisher with enrichment and failure logging. A nil
// Emitter, or one without a publisher, drops events silently.
type Emitter struct {
	publisher Publisher
	logger    *slog.Logger
}

func NewEmitter(publisher Publisher, logger *slog.Logger) *Emitter {
	return &Emitter{publisher: publisher, logger: logger}
}

func (e *Emitter) Emit(ctx context.Context, event Event) {
	if e == nil || e.publisher == nil {
		return
	}
	event = Enrich(ctx, event)
	if err := e.publisher.Emit(ctx, event); err != nil && e.logger != nil {
		e.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"request_id", event.RequestID,
			"error", err,
		)
	}
}

// Observe implements authz.Observer: every denied gate decision becomes a
// security event. Allowed decisions are not audited.
func (e *Emitter) Observe(ctx context.Context, d authz.Decision) {
	if d.Allowed {
		return
	}
	reason := ""
	if d.Reason != nil {
		reason = d.Reason.Error()
	}
	e.Emit(ctx, Event{
		Action:     ActionAccessDenied,
		ActorEmail: d.Email,
		Subject:    d.Target,
		Decision:   d.Outcome(),
		Reason:     string(d.Check) + ": " + reason,
	})
}

// LogPublisher writes events to the structured log. It is the sink used when
// no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "audit",
		"category", event.Category,
		"action", event.Action,
		"actor_email", event.ActorEmail,
		"subject", event.Subject,
		"decision", event.Decision,
		"reason", event.Reason,
		"request_id", event.RequestID,
		"client_ip", event.ClientIP,
		"browser", event.Browser,
		"os", event.OS,
	)
	return nil
}
