package carts

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"bistro/pkg/domain"
)

// Policy decides how cart endpoints are gated.
type Policy string

const (
	// PolicyPublic trusts the email supplied by the client. It is the
	// historical behaviour of the service.
	PolicyPublic Policy = "public"
	// PolicyOwner requires a verified credential whose email owns the cart.
	PolicyOwner Policy = "owner"
)

func ParsePolicy(raw string) (Policy, error) {
	switch Policy(raw) {
	case "", PolicyPublic:
		return PolicyPublic, nil
	case PolicyOwner:
		return PolicyOwner, nil
	default:
		return "", fmt.Errorf("unknown cart access policy %q", raw)
	}
}

// Item is one menu item placed in a user's cart.
type Item struct {
	ID     domain.CartItemID `json:"_id"`
	MenuID domain.MenuItemID `json:"menuId"`
	Email  string            `json:"email"`
	Name   string            `json:"name"`
	Image  string            `json:"image"`
	Price  float64           `json:"price"`
}

// AddRequest is the body of POST /carts.
type AddRequest struct {
	MenuID domain.MenuItemID `json:"menuId"`
	Email  string            `json:"email"`
	Name   string            `json:"name"`
	Image  string            `json:"image"`
	Price  float64           `json:"price"`
}

func (r AddRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MenuID, validation.By(func(any) error {
			if r.MenuID.IsNil() {
				return errors.New("cannot be blank")
			}
			return nil
		})),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Price, validation.Min(0.0)),
	)
}
