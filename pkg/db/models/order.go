package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/smartkisan/kisan-backend/pkg/enums"
	"github.com/smartkisan/kisan-backend/pkg/types"
)

// Order is an immutable snapshot of a cart at placement time. Only status
// fields change afterwards.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderNumber     string                `gorm:"column:order_number;not null;uniqueIndex" json:"orderNumber"`
	UserID          *string               `gorm:"column:user_id" json:"user,omitempty"`
	GuestID         *string               `gorm:"column:guest_id" json:"guestId,omitempty"`
	Items           CartItems             `gorm:"column:items;type:jsonb;serializer:json;not null" json:"items"`
	TotalAmount     float64               `gorm:"column:total_amount;not null" json:"totalAmount"`
	ShippingAddress types.ShippingAddress `gorm:"column:shipping_address;type:jsonb" json:"shippingAddress"`
	PaymentMethod   enums.PaymentMethod   `gorm:"column:payment_method;not null;default:'cash_on_delivery'" json:"paymentMethod"`
	PaymentStatus   enums.PaymentStatus   `gorm:"column:payment_status;not null;default:'pending'" json:"paymentStatus"`
	Status          enums.OrderStatus     `gorm:"column:status;not null;default:'pending'" json:"status"`
	IdempotencyKey  *string               `gorm:"column:idempotency_key" json:"-"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
