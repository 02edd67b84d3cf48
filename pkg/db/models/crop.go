package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartkisan/kisan-backend/pkg/enums"
	"github.com/smartkisan/kisan-backend/pkg/types"
)

var ErrExpiryNotAfterHarvest = errors.New("expiry date must be after harvest date")

// Crop is a produce listing owned by a farmer.
type Crop struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name           string             `gorm:"column:name;not null" json:"name"`
	Description    string             `gorm:"column:description" json:"description,omitempty"`
	Category       enums.CropCategory `gorm:"column:category;not null" json:"category"`
	Variety        string             `gorm:"column:variety" json:"variety,omitempty"`
	FarmerID       uuid.UUID          `gorm:"column:farmer_id;type:uuid;not null;index" json:"farmerId"`
	Quantity       float64            `gorm:"column:quantity;not null" json:"quantity"`
	Unit           enums.CropUnit     `gorm:"column:unit;not null;default:'kg'" json:"unit"`
	Price          float64            `gorm:"column:price;not null" json:"price"`
	PricePerUnit   enums.PriceUnit    `gorm:"column:price_per_unit;not null;default:'kg'" json:"pricePerUnit"`
	Quality        enums.CropQuality  `gorm:"column:quality;not null;default:'standard'" json:"quality"`
	HarvestDate    time.Time          `gorm:"column:harvest_date;not null" json:"harvestDate"`
	ExpiryDate     *time.Time         `gorm:"column:expiry_date" json:"expiryDate,omitempty"`
	Location       types.Location     `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Images         pq.StringArray     `gorm:"column:images;type:text[]" json:"images"`
	Certifications pq.StringArray     `gorm:"column:certifications;type:text[]" json:"certifications"`
	Status         enums.CropStatus   `gorm:"column:status;not null;default:'available'" json:"status"`
	IsActive       bool               `gorm:"column:is_active;not null;default:true" json:"isActive"`
	Views          int                `gorm:"column:views;not null;default:0" json:"views"`
	Inquiries      int                `gorm:"column:inquiries;not null;default:0" json:"inquiries"`
	Featured       bool               `gorm:"column:featured;not null;default:false" json:"featured"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// BeforeSave enforces the harvest/expiry ordering and expires stale listings.
func (c *Crop) BeforeSave(_ *gorm.DB) error {
	if err := c.ValidateDates(); err != nil {
		return err
	}
	c.ApplyExpiry(time.Now().UTC())
	return nil
}

func (c *Crop) ValidateDates() error {
	if c.ExpiryDate != nil && !c.ExpiryDate.After(c.HarvestDate) {
		return ErrExpiryNotAfterHarvest
	}
	return nil
}

// ApplyExpiry moves an available crop past its expiry date to expired.
func (c *Crop) ApplyExpiry(now time.Time) {
	if c.Status == enums.CropStatusAvailable && c.ExpiryDate != nil && c.ExpiryDate.Before(now) {
		c.Status = enums.CropStatusExpired
	}
}

func (c Crop) DaysSinceHarvest(now time.Time) int {
	return int(now.Sub(c.HarvestDate).Hours() / 24)
}

// PricePerKg converts the quoted price to a per-kilogram price.
func (c Crop) PricePerKg() float64 {
	per := decimal.NewFromFloat(c.Price).Div(decimal.NewFromInt(c.PricePerUnit.Kilograms()))
	return per.Round(2).InexactFloat64()
}

func (c Crop) IsFresh(now time.Time) bool {
	return c.DaysSinceHarvest(now) <= c.Category.FreshnessDays()
}
