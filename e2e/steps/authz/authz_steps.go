package authz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path, token string, headers map[string]string, body any) error
	Email(name string) string
	LastStatus() int
	LastBody() []byte
	Token(email string) string
	UserID(email string) string
}

// RegisterSteps registers the role and ownership step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authzSteps{tc: tc}

	ctx.Step(`^"([^"]*)" promotes "([^"]*)"$`, steps.promote)
	ctx.Step(`^"([^"]*)" lists the users$`, steps.listUsers)
	ctx.Step(`^"([^"]*)" requests the admin stats$`, steps.adminStats)
	ctx.Step(`^"([^"]*)" checks the admin status of "([^"]*)"$`, steps.adminStatus)

	ctx.Step(`^a payment of ([\d.]+) is recorded for "([^"]*)"$`, steps.recordPayment)
	ctx.Step(`^"([^"]*)" requests the payment history of "([^"]*)"$`, steps.paymentHistory)
	ctx.Step(`^the payment history should have (\d+) entries all belonging to "([^"]*)"$`, steps.historyBelongsTo)
}

type authzSteps struct {
	tc TestContext
}

func (s *authzSteps) token(name string) (string, error) {
	email := s.tc.Email(name)
	token := s.tc.Token(email)
	if token == "" {
		return "", fmt.Errorf("%s has not signed in", email)
	}
	return token, nil
}

func (s *authzSteps) promote(ctx context.Context, actor, target string) error {
	token, err := s.token(actor)
	if err != nil {
		return err
	}
	id := s.tc.UserID(s.tc.Email(target))
	if id == "" {
		return fmt.Errorf("%s is not registered", target)
	}
	return s.tc.Do("PATCH", "/users/admin/"+id, token, nil, nil)
}

func (s *authzSteps) listUsers(ctx context.Context, actor string) error {
	token, err := s.token(actor)
	if err != nil {
		return err
	}
	return s.tc.Do("GET", "/users", token, nil, nil)
}

func (s *authzSteps) adminStats(ctx context.Context, actor string) error {
	token, err := s.token(actor)
	if err != nil {
		return err
	}
	return s.tc.Do("GET", "/admin-stats", token, nil, nil)
}

func (s *authzSteps) adminStatus(ctx context.Context, actor, target string) error {
	token, err := s.token(actor)
	if err != nil {
		return err
	}
	return s.tc.Do("GET", "/users/admin/"+url.PathEscape(s.tc.Email(target)), token, nil, nil)
}

func (s *authzSteps) recordPayment(ctx context.Context, amount, owner string) error {
	price, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return err
	}
	email := s.tc.Email(owner)
	body := map[string]any{
		"email":         email,
		"price":         price,
		"transactionId": "pi_e2e_" + amount,
	}
	if err := s.tc.Do("POST", "/payments", "", nil, body); err != nil {
		return err
	}
	if s.tc.LastStatus() != 200 {
		return fmt.Errorf("record payment: status %d: %s", s.tc.LastStatus(), s.tc.LastBody())
	}
	return nil
}

func (s *authzSteps) paymentHistory(ctx context.Context, actor, owner string) error {
	token, err := s.token(actor)
	if err != nil {
		return err
	}
	return s.tc.Do("GET", "/payments/"+url.PathEscape(s.tc.Email(owner)), token, nil, nil)
}

func (s *authzSteps) historyBelongsTo(ctx context.Context, n int, owner string) error {
	var history []struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(s.tc.LastBody(), &history); err != nil {
		return fmt.Errorf("payment history is not a JSON array: %s", s.tc.LastBody())
	}
	if len(history) != n {
		return fmt.Errorf("expected %d payments, got %d", n, len(history))
	}
	want := s.tc.Email(owner)
	for _, p := range history {
		if p.Email != want {
			return fmt.Errorf("payment for %s returned to %s", p.Email, want)
		}
	}
	return nil
}
