package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/smartkisan/kisan-backend/pkg/db/models"
	"github.com/smartkisan/kisan-backend/pkg/enums"
	"github.com/smartkisan/kisan-backend/pkg/types"
)

// OrderDTO is the order payload returned by the order endpoints.
type OrderDTO struct {
	ID              uuid.UUID             `json:"_id"`
	OrderNumber     string                `json:"orderNumber"`
	UserID          *string               `json:"user,omitempty"`
	GuestID         *string               `json:"guestId,omitempty"`
	Items           models.CartItems      `json:"items"`
	TotalAmount     float64               `json:"totalAmount"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   enums.PaymentMethod   `json:"paymentMethod"`
	PaymentStatus   enums.PaymentStatus   `json:"paymentStatus"`
	Status          enums.OrderStatus     `json:"status"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	items := o.Items.Clone()
	if items == nil {
		items = models.CartItems{}
	}
	return &OrderDTO{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		GuestID:         o.GuestID,
		Items:           items,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress.Normalize(),
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// PlaceOrderInput is the order placement payload.
type PlaceOrderInput struct {
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   enums.PaymentMethod   `json:"paymentMethod"`
	IdempotencyKey  string                `json:"-"`
}

// PlaceOrderResult reports whether the order was created by this call or
// found through its idempotency key.
type PlaceOrderResult struct {
	Order    *OrderDTO
	Replayed bool
}

// UpdateStatusInput is the admin status change payload.
type UpdateStatusInput struct {
	Status        enums.OrderStatus    `json:"status" validate:"required"`
	PaymentStatus *enums.PaymentStatus `json:"paymentStatus"`
}
