package ratelimit

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path, token string, headers map[string]string, body any) error
	Email(name string) string
	LastStatus() int
	LastHeader() http.Header
}

// RegisterSteps registers the throttling step definitions for the public
// issuance endpoint.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I request credentials (\d+) times from IP "([^"]*)"$`, steps.requestCredentials)
	ctx.Step(`^at least one request should be rejected with 429$`, steps.someRejected)
	ctx.Step(`^every rejected request should carry a Retry-After header$`, steps.rejectedCarryRetryAfter)
	ctx.Step(`^a credential request from IP "([^"]*)" should succeed$`, steps.otherIPSucceeds)
}

type ratelimitSteps struct {
	tc         TestContext
	statuses   []int
	retryAfter []string
}

func (s *ratelimitSteps) requestCredentials(ctx context.Context, n int, ip string) error {
	s.statuses = s.statuses[:0]
	s.retryAfter = s.retryAfter[:0]
	for i := 0; i < n; i++ {
		body := map[string]any{"email": s.tc.Email("throttle@bistro.test")}
		if err := s.tc.Do("POST", "/jwt", "", map[string]string{"X-Forwarded-For": ip}, body); err != nil {
			return err
		}
		s.statuses = append(s.statuses, s.tc.LastStatus())
		if s.tc.LastStatus() == http.StatusTooManyRequests {
			s.retryAfter = append(s.retryAfter, s.tc.LastHeader().Get("Retry-After"))
		}
	}
	return nil
}

func (s *ratelimitSteps) someRejected(ctx context.Context) error {
	for _, status := range s.statuses {
		if status == http.StatusTooManyRequests {
			return nil
		}
	}
	return fmt.Errorf("no request was throttled: %v", s.statuses)
}

func (s *ratelimitSteps) rejectedCarryRetryAfter(ctx context.Context) error {
	for _, v := range s.retryAfter {
		if v == "" {
			return fmt.Errorf("throttled response without Retry-After")
		}
	}
	return nil
}

func (s *ratelimitSteps) otherIPSucceeds(ctx context.Context, ip string) error {
	body := map[string]any{"email": s.tc.Email("throttle@bistro.test")}
	if err := s.tc.Do("POST", "/jwt", "", map[string]string{"X-Forwarded-For": ip}, body); err != nil {
		return err
	}
	if s.tc.LastStatus() != http.StatusOK {
		return fmt.Errorf("expected 200 from %s, got %d", ip, s.tc.LastStatus())
	}
	return nil
}
