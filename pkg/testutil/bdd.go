package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario walks callers through a handler in Given/When/Then order: Given
// picks whose credential is sent, When sends a request, Then checks the last
// response in a named subtest. The end-to-end feature files use godog instead.
type Scenario struct {
	t       *testing.T
	handler http.Handler
	caller  string
	token   string
	last    *httptest.ResponseRecorder
}

// Check asserts on the response a When step produced.
type Check func(t *testing.T, rr *httptest.ResponseRecorder)

func NewScenario(t *testing.T, handler http.Handler) *Scenario {
	return &Scenario{t: t, handler: handler}
}

// Given switches the caller. An empty token sends requests anonymously.
func (s *Scenario) Given(caller, token string) *Scenario {
	s.t.Helper()
	s.caller, s.token = caller, token
	s.t.Logf("Given %s", caller)
	return s
}

// When sends req as the current caller.
func (s *Scenario) When(desc string, req *http.Request) *Scenario {
	s.t.Helper()
	if s.token != "" {
		WithBearer(req, s.token)
	}
	s.last = DoRequest(s.handler, req)
	s.t.Logf("When %s: %s %s -> %d", desc, req.Method, req.URL.Path, s.last.Code)
	return s
}

func (s *Scenario) Then(desc string, checks ...Check) *Scenario {
	s.t.Helper()
	require.NotNil(s.t, s.last, "Then %q has no response to check", desc)
	rr := s.last
	s.t.Run(s.caller+": "+desc, func(t *testing.T) {
		for _, check := range checks {
			check(t, rr)
		}
	})
	return s
}

func Allowed() Check {
	return func(t *testing.T, rr *httptest.ResponseRecorder) { AssertStatusOK(t, rr) }
}

func Unauthorized() Check {
	return func(t *testing.T, rr *httptest.ResponseRecorder) { AssertUnauthorized(t, rr) }
}

func Forbidden() Check {
	return func(t *testing.T, rr *httptest.ResponseRecorder) { AssertForbidden(t, rr) }
}

// BodyContains checks the raw response body for substr.
func BodyContains(substr string) Check {
	return func(t *testing.T, rr *httptest.ResponseRecorder) {
		t.Helper()
		require.Contains(t, rr.Body.String(), substr)
	}
}
