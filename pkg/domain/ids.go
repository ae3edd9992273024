package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "bistro/pkg/domain-errors"
)

// Typed record identifiers. Each wraps a UUID so a menu item ID can never be
// passed where a user ID is expected.
type (
	UserID     uuid.UUID
	MenuItemID uuid.UUID
	ReviewID   uuid.UUID
	CartItemID uuid.UUID
	PaymentID  uuid.UUID
)

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id MenuItemID) String() string { return uuid.UUID(id).String() }
func (id ReviewID) String() string   { return uuid.UUID(id).String() }
func (id CartItemID) String() string { return uuid.UUID(id).String() }
func (id PaymentID) String() string  { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id MenuItemID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id CartItemID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs render as plain UUID strings in JSON.
func (id UserID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id MenuItemID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id ReviewID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id CartItemID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id PaymentID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }

func (id *MenuItemID) UnmarshalText(b []byte) error {
	parsed, err := ParseMenuItemID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *CartItemID) UnmarshalText(b []byte) error {
	parsed, err := ParseCartItemID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ReviewID) UnmarshalText(b []byte) error {
	parsed, err := parseUUID(string(b), "review id")
	if err != nil {
		return err
	}
	*id = ReviewID(parsed)
	return nil
}

func (id *PaymentID) UnmarshalText(b []byte) error {
	parsed, err := ParsePaymentID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func NewUserID() UserID         { return UserID(uuid.New()) }
func NewMenuItemID() MenuItemID { return MenuItemID(uuid.New()) }
func NewReviewID() ReviewID     { return ReviewID(uuid.New()) }
func NewCartItemID() CartItemID { return CartItemID(uuid.New()) }
func NewPaymentID() PaymentID   { return PaymentID(uuid.New()) }

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

func ParseMenuItemID(s string) (MenuItemID, error) {
	u, err := parseUUID(s, "menu item id")
	return MenuItemID(u), err
}

func ParseCartItemID(s string) (CartItemID, error) {
	u, err := parseUUID(s, "cart item id")
	return CartItemID(u), err
}

func ParsePaymentID(s string) (PaymentID, error) {
	u, err := parseUUID(s, "payment id")
	return PaymentID(u), err
}

// parseUUID enforces: non-empty, well-formed, non-nil.
func parseUUID(s, what string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	return u, nil
}
