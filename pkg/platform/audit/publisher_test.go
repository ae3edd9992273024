package audit_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bistro/internal/authz"
	audit "bistro/pkg/platform/audit"
	"bistro/pkg/platform/audit/store/memory"
	"bistro/pkg/requestcontext"
)

const chromeUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func requestCtx() context.Context {
	ctx := context.Background()
	ctx = requestcontext.WithRequestID(ctx, "req-42")
	ctx = requestcontext.WithClientMetadata(ctx, "10.0.0.1", chromeUA)
	ctx = requestcontext.WithTime(ctx, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return requestcontext.WithIdentity(ctx, requestcontext.VerifiedIdentity{Email: "admin@x.com"})
}

func TestEnrich(t *testing.T) {
	event := audit.Enrich(requestCtx(), audit.Event{Action: audit.ActionRolePromoted, Subject: "user-1"})

	assert.Equal(t, audit.CategoryCompliance, event.Category)
	assert.Equal(t, "req-42", event.RequestID)
	assert.Equal(t, "10.0.0.1", event.ClientIP)
	assert.Equal(t, "admin@x.com", event.ActorEmail)
	assert.Contains(t, event.Browser, "Chrome")
	assert.Contains(t, event.OS, "Linux")
	assert.False(t, event.Timestamp.IsZero())
}

func TestUnknownActionIsOperations(t *testing.T) {
	assert.Equal(t, audit.CategoryOperations, audit.Action("something_else").Category())
}

func TestEmitterObserveOnlyDenials(t *testing.T) {
	sink := memory.New()
	emitter := audit.NewEmitter(sink, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	emitter.Observe(requestCtx(), authz.Ownership("a@x.com", "a@x.com"))
	emitter.Observe(requestCtx(), authz.Ownership("a@x.com", "b@x.com"))
	emitter.Observe(requestCtx(), authz.Authenticated("", authz.ErrInvalidCredential))

	events := sink.ByAction(audit.ActionAccessDenied)
	require.Len(t, events, 2)
	assert.Equal(t, "forbidden", events[0].Decision)
	assert.Equal(t, "b@x.com", events[0].Subject)
	assert.Equal(t, audit.CategorySecurity, events[0].Category)
	assert.Equal(t, "unauthenticated", events[1].Decision)
}

type failingPublisher struct{}

func (failingPublisher) Emit(context.Context, audit.Event) error { return errors.New("broker down") }

func TestEmitterSwallowsSinkErrors(t *testing.T) {
	var logs bytes.Buffer
	emitter := audit.NewEmitter(failingPublisher{}, slog.New(slog.NewTextHandler(&logs, nil)))

	emitter.Emit(requestCtx(), audit.Event{Action: audit.ActionUserDeleted})
	assert.Contains(t, logs.String(), "broker down")

	var nilEmitter *audit.Emitter
	assert.NotPanics(t, func() { nilEmitter.Emit(context.Background(), audit.Event{}) })
}

func TestLogPublisher(t *testing.T) {
	var logs bytes.Buffer
	pub := audit.NewLogPublisher(slog.New(slog.NewJSONHandler(&logs, nil)))

	require.NoError(t, pub.Emit(context.Background(), audit.Event{Action: audit.ActionCredentialIssued, ActorEmail: "a@x.com"}))
	assert.Contains(t, logs.String(), `"action":"credential_issued"`)
}
