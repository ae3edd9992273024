package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"bistro/internal/authz"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	GateDecisions      *prometheus.CounterVec
	RoleLookupDuration prometheus.Histogram
	RoleLookupFailures prometheus.Counter
	CredentialsIssued  prometheus.Counter
	RateLimited        *prometheus.CounterVec
	UsersCreated       prometheus.Counter
	HTTPDuration       *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg. Tests pass a fresh
// prometheus.NewRegistry() so collectors never collide across test cases.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bistro_gate_decisions_total",
			Help: "Authorization gate decisions by check and outcome",
		}, []string{"check", "outcome"}),
		RoleLookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bistro_role_lookup_duration_ms",
			Help:    "Latency of role resolution against the user store in milliseconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		}),
		RoleLookupFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bistro_role_lookup_failures_total",
			Help: "Role resolutions that failed because the user store errored",
		}),
		CredentialsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bistro_credentials_issued_total",
			Help: "Total number of credentials issued",
		}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bistro_rate_limited_total",
			Help: "Requests rejected by the rate limiter, by endpoint class",
		}, []string{"class"}),
		UsersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bistro_users_created_total",
			Help: "Total number of users created in the system",
		}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bistro_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.GateDecisions,
			m.RoleLookupDuration,
			m.RoleLookupFailures,
			m.CredentialsIssued,
			m.RateLimited,
			m.UsersCreated,
			m.HTTPDuration,
		)
	}
	return m
}

// Observe implements authz.Observer.
func (m *Metrics) Observe(_ context.Context, d authz.Decision) {
	m.GateDecisions.WithLabelValues(string(d.Check), d.Outcome()).Inc()
}

func (m *Metrics) ObserveRoleLookup(start time.Time, err error) {
	m.RoleLookupDuration.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	if err != nil {
		m.RoleLookupFailures.Inc()
	}
}

func (m *Metrics) IncrementCredentialsIssued() {
	m.CredentialsIssued.Inc()
}

func (m *Metrics) IncrementRateLimited(class string) {
	m.RateLimited.WithLabelValues(class).Inc()
}

// IncrementUsersCreated increments the users created counter by 1
func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

// ObserveHTTPRequest records one served request. route is the chi pattern,
// never the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
