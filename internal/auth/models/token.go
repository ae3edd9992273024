package models

import (
	"encoding/json"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// TokenRequest is the body of POST /jwt: an email plus any attributes the
// client wants echoed in the credential.
type TokenRequest struct {
	Email      string
	Attributes map[string]any
}

func (r *TokenRequest) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if email, ok := raw["email"].(string); ok {
		r.Email = strings.TrimSpace(email)
	}
	delete(raw, "email")
	r.Attributes = raw
	return nil
}

func (r TokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// TokenResult answers POST /jwt.
type TokenResult struct {
	Token string `json:"token"`
}
