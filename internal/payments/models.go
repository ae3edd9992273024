package payments

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"bistro/internal/storage"
	"bistro/pkg/domain"
)

// Payment is a completed checkout: what was paid, by whom, and which cart
// items it settled.
type Payment struct {
	ID            domain.PaymentID    `json:"_id"`
	Email         string              `json:"email"`
	Price         float64             `json:"price"`
	TransactionID string              `json:"transactionId"`
	Date          time.Time           `json:"date"`
	CartIDs       []domain.CartItemID `json:"cartIds"`
	MenuItemIDs   []domain.MenuItemID `json:"menuItemIds"`
	Status        string              `json:"status"`
}

// RecordRequest is the body of POST /payments.
type RecordRequest struct {
	Email         string              `json:"email"`
	Price         float64             `json:"price"`
	TransactionID string              `json:"transactionId"`
	Date          time.Time           `json:"date"`
	CartIDs       []domain.CartItemID `json:"cartIds"`
	MenuItemIDs   []domain.MenuItemID `json:"menuItemIds"`
	Status        string              `json:"status"`
}

func (r RecordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Price, validation.Required, validation.Min(0.01)),
		validation.Field(&r.TransactionID, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Status, validation.Length(0, 40)),
	)
}

// RecordResult answers POST /payments.
type RecordResult struct {
	PaymentResult storage.InsertResult `json:"paymentResult"`
	DeleteResult  storage.DeleteResult `json:"deleteResult"`
}

// IntentRequest is the body of POST /create-payment-intent. Price is in dollars.
type IntentRequest struct {
	Price float64 `json:"price"`
}

func (r IntentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Price, validation.Required, validation.Min(0.01)),
	)
}

// IntentResult answers POST /create-payment-intent.
type IntentResult struct {
	ClientSecret string `json:"clientSecret"`
}
