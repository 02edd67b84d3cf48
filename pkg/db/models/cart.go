package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartkisan/kisan-backend/pkg/enums"
)

// Cart holds the line items of one owner: a user or a guest session.
type Cart struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    *string   `gorm:"column:user_id"`
	GuestID   *string   `gorm:"column:guest_id"`
	Items     CartItems `gorm:"column:items;type:jsonb;serializer:json;not null"`
	Version   int       `gorm:"column:version;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CartItem is one product line. Orders store copies of these.
type CartItem struct {
	ProductID   string            `json:"productId"`
	ProductType enums.ProductType `json:"productType"`
	Name        string            `json:"name"`
	Price       float64           `json:"price"`
	Image       string            `json:"image,omitempty"`
	Quantity    int               `json:"quantity"`
}

type CartItems []CartItem

// Clone returns a deep copy.
func (items CartItems) Clone() CartItems {
	if items == nil {
		return CartItems{}
	}
	out := make(CartItems, len(items))
	copy(out, items)
	return out
}

func (items CartItems) IndexOf(productID string) int {
	for i, item := range items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (items CartItems) TotalItems() int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums price x quantity in decimal to avoid float drift.
func (items CartItems) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2)
}
