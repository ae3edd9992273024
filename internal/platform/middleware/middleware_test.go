package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bistro/pkg/requestcontext"
)

type recordedLatency struct {
	method, route string
	status        int
}

type latencyRecorder struct {
	seen []recordedLatency
}

func (l *latencyRecorder) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	l.seen = append(l.seen, recordedLatency{method: method, route: route, status: status})
}

func TestRequestIDMintsAndPropagates(t *testing.T) {
	var inCtx string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		inCtx = requestcontext.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, inCtx)
	assert.Equal(t, inCtx, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "upstream-123", inCtx)
	assert.Equal(t, "upstream-123", rec.Header().Get(RequestIDHeader))
}

func TestRecoveryReturns500(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestLoggerReportsRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	observer := &latencyRecorder{}

	r := chi.NewRouter()
	r.Use(Logger(logger, observer))
	r.Get("/menu/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/menu/abc", nil))

	require.Len(t, observer.seen, 1)
	assert.Equal(t, recordedLatency{method: http.MethodGet, route: "/menu/{id}", status: http.StatusNotFound}, observer.seen[0])
	assert.Contains(t, buf.String(), `"path":"/menu/abc"`)
}
