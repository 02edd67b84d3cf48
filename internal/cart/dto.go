package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/smartkisan/kisan-backend/pkg/db/models"
	"github.com/smartkisan/kisan-backend/pkg/enums"
)

// CartDTO is the cart as returned by every cart endpoint, totals included.
type CartDTO struct {
	ID         uuid.UUID        `json:"_id"`
	UserID     *string          `json:"user,omitempty"`
	GuestID    *string          `json:"guestId,omitempty"`
	Items      models.CartItems `json:"items"`
	TotalItems int              `json:"totalItems"`
	TotalPrice float64          `json:"totalPrice"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

func FromModel(c *models.Cart) *CartDTO {
	if c == nil {
		return nil
	}
	items := c.Items.Clone()
	return &CartDTO{
		ID:         c.ID,
		UserID:     c.UserID,
		GuestID:    c.GuestID,
		Items:      items,
		TotalItems: items.TotalItems(),
		TotalPrice: items.TotalPrice().InexactFloat64(),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// AddItemInput is the add-to-cart payload. Quantity defaults to 1.
type AddItemInput struct {
	ProductID   string            `json:"productId"`
	ProductType enums.ProductType `json:"productType"`
	Name        string            `json:"name"`
	Price       float64           `json:"price"`
	Image       string            `json:"image"`
	Quantity    *int              `json:"quantity"`
}

type UpdateItemInput struct {
	Quantity *int `json:"quantity" validate:"required"`
}
