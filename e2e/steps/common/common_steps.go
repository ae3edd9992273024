package common

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path, token string, headers map[string]string, body any) error
	Email(name string) string
	LastStatus() int
	LastBody() []byte
	ResponseField(field string) (any, error)
	Token(email string) string
	SetToken(email, token string)
	SetUserID(email, id string)
}

// RegisterSteps registers sign-in, registration and generic response steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^I sign in as "([^"]*)"$`, steps.signIn)
	ctx.Step(`^I sign in as "([^"]*)" claiming "([^"]*)" is "([^"]*)"$`, steps.signInClaiming)
	ctx.Step(`^"([^"]*)" is registered$`, steps.register)
	ctx.Step(`^I call (GET|POST|PATCH|DELETE) "([^"]*)" without credentials$`, steps.callAnonymous)
	ctx.Step(`^I call (GET|POST|PATCH|DELETE) "([^"]*)" with token "([^"]*)"$`, steps.callWithToken)

	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBe)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) signIn(ctx context.Context, name string) error {
	return s.issue(name, map[string]any{})
}

func (s *commonSteps) signInClaiming(ctx context.Context, name, claim, value string) error {
	return s.issue(name, map[string]any{claim: value})
}

func (s *commonSteps) issue(name string, extra map[string]any) error {
	email := s.tc.Email(name)
	body := map[string]any{"email": email}
	for k, v := range extra {
		body[k] = v
	}
	if err := s.tc.Do("POST", "/jwt", "", nil, body); err != nil {
		return err
	}
	if s.tc.LastStatus() != 200 {
		return fmt.Errorf("sign in as %s: status %d: %s", email, s.tc.LastStatus(), s.tc.LastBody())
	}
	token, err := s.tc.ResponseField("token")
	if err != nil {
		return err
	}
	s.tc.SetToken(email, token.(string))
	return nil
}

func (s *commonSteps) register(ctx context.Context, name string) error {
	email := s.tc.Email(name)
	if err := s.tc.Do("POST", "/users", "", nil, map[string]any{"email": email}); err != nil {
		return err
	}
	if s.tc.LastStatus() != 200 {
		return fmt.Errorf("register %s: status %d: %s", email, s.tc.LastStatus(), s.tc.LastBody())
	}
	var res struct {
		InsertedID *string `json:"insertedId"`
	}
	if err := json.Unmarshal(s.tc.LastBody(), &res); err != nil {
		return err
	}
	if res.InsertedID == nil {
		return fmt.Errorf("register %s: already registered", email)
	}
	s.tc.SetUserID(email, *res.InsertedID)
	return nil
}

func (s *commonSteps) callAnonymous(ctx context.Context, method, path string) error {
	return s.tc.Do(method, path, "", nil, nil)
}

func (s *commonSteps) callWithToken(ctx context.Context, method, path, token string) error {
	return s.tc.Do(method, path, token, nil, nil)
}

func (s *commonSteps) statusShouldBe(ctx context.Context, expected int) error {
	if got := s.tc.LastStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, got, s.tc.LastBody())
	}
	return nil
}

func (s *commonSteps) fieldShouldBe(ctx context.Context, field, expected string) error {
	v, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != expected {
		return fmt.Errorf("expected %s=%q, got %q", field, expected, got)
	}
	return nil
}
