package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"bistro/internal/authz"
)

func TestObserveDecisions(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Observe(context.Background(), authz.Authenticated("", authz.ErrMissingCredential))
	m.Observe(context.Background(), authz.Admin("a@x.com", "user"))
	m.Observe(context.Background(), authz.Ownership("a@x.com", "a@x.com"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GateDecisions.WithLabelValues("authenticated", "unauthenticated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GateDecisions.WithLabelValues("admin", "forbidden")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GateDecisions.WithLabelValues("ownership", "allowed")))
}

func TestObserveRoleLookup(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRoleLookup(time.Now(), nil)
	m.ObserveRoleLookup(time.Now(), errors.New("db down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoleLookupFailures))
}

func TestObserveHTTPRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveHTTPRequest("GET", "/menu/{id}", 200, 15*time.Millisecond)
	m.ObserveHTTPRequest("GET", "/menu/{id}", 404, time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPDuration))
}
