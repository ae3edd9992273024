package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoURL"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Name, validation.Length(0, 120)),
		validation.Field(&r.PhotoURL, is.URL),
	)
}

// Normalize trims surrounding whitespace. The email itself is kept
// case-sensitive: it is the identity key compared exactly by the gates.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.PhotoURL = strings.TrimSpace(r.PhotoURL)
}

// RegisterResult answers POST /users. InsertedID is null when the email was
// already registered.
type RegisterResult struct {
	Message      string  `json:"message,omitempty"`
	Acknowledged bool    `json:"acknowledged"`
	InsertedID   *string `json:"insertedId"`
}

// AdminStatus answers GET /users/admin/{email}.
type AdminStatus struct {
	IsAdmin bool `json:"isAdmin"`
}
