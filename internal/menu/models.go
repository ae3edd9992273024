package menu

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"bistro/pkg/domain"
)

// Item is a dish on the menu.
type Item struct {
	ID       domain.MenuItemID `json:"_id"`
	Name     string            `json:"name"`
	Recipe   string            `json:"recipe"`
	Image    string            `json:"image"`
	Category string            `json:"category"`
	Price    float64           `json:"price"`
}

// ItemRequest is the body of POST /menu. PATCH applies the same rules.
type ItemRequest struct {
	Name     string  `json:"name"`
	Recipe   string  `json:"recipe"`
	Image    string  `json:"image"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

func (r ItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Category, validation.Required, validation.Length(1, 60)),
		validation.Field(&r.Image, is.URL),
		validation.Field(&r.Price, validation.Required, validation.Min(0.01)),
	)
}

func (r ItemRequest) toItem(id domain.MenuItemID) *Item {
	return &Item{
		ID:       id,
		Name:     r.Name,
		Recipe:   r.Recipe,
		Image:    r.Image,
		Category: r.Category,
		Price:    r.Price,
	}
}
