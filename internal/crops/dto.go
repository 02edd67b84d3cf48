package crops

import (
	"time"

	"github.com/google/uuid"

	"github.com/smartkisan/kisan-backend/internal/users"
	"github.com/smartkisan/kisan-backend/pkg/db/models"
	"github.com/smartkisan/kisan-backend/pkg/enums"
	"github.com/smartkisan/kisan-backend/pkg/pagination"
	"github.com/smartkisan/kisan-backend/pkg/types"
)

// CropDTO is a listing with its derived fields and owner summary.
type CropDTO struct {
	ID               uuid.UUID          `json:"_id"`
	Name             string             `json:"name"`
	Description      string             `json:"description,omitempty"`
	Category         enums.CropCategory `json:"category"`
	Variety          string             `json:"variety,omitempty"`
	FarmerID         uuid.UUID          `json:"farmerId"`
	Farmer           *users.Summary     `json:"farmer,omitempty"`
	Quantity         float64            `json:"quantity"`
	Unit             enums.CropUnit     `json:"unit"`
	Price            float64            `json:"price"`
	PricePerUnit     enums.PriceUnit    `json:"pricePerUnit"`
	Quality          enums.CropQuality  `json:"quality"`
	HarvestDate      time.Time          `json:"harvestDate"`
	ExpiryDate       *time.Time         `json:"expiryDate,omitempty"`
	Location         types.Location     `json:"location"`
	Images           []string           `json:"images"`
	Certifications   []string           `json:"certifications"`
	Status           enums.CropStatus   `json:"status"`
	IsActive         bool               `json:"isActive"`
	Views            int                `json:"views"`
	Inquiries        int                `json:"inquiries"`
	Featured         bool               `json:"featured"`
	DaysSinceHarvest int                `json:"daysSinceHarvest"`
	PricePerKg       float64            `json:"pricePerKg"`
	IsFresh          bool               `json:"isFresh"`
	Distance         *float64           `json:"distance,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// FromModel maps a crop and computes the derived fields as of now.
func FromModel(c *models.Crop, now time.Time) *CropDTO {
	if c == nil {
		return nil
	}
	return &CropDTO{
		ID:               c.ID,
		Name:             c.Name,
		Description:      c.Description,
		Category:         c.Category,
		Variety:          c.Variety,
		FarmerID:         c.FarmerID,
		Quantity:         c.Quantity,
		Unit:             c.Unit,
		Price:            c.Price,
		PricePerUnit:     c.PricePerUnit,
		Quality:          c.Quality,
		HarvestDate:      c.HarvestDate,
		ExpiryDate:       c.ExpiryDate,
		Location:         c.Location,
		Images:           append([]string{}, c.Images...),
		Certifications:   append([]string{}, c.Certifications...),
		Status:           c.Status,
		IsActive:         c.IsActive,
		Views:            c.Views,
		Inquiries:        c.Inquiries,
		Featured:         c.Featured,
		DaysSinceHarvest: c.DaysSinceHarvest(now),
		PricePerKg:       c.PricePerKg(),
		IsFresh:          c.IsFresh(now),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// CreateCropInput is the validated create payload. Dates accept RFC 3339
// timestamps or plain YYYY-MM-DD dates.
type CreateCropInput struct {
	Name           string             `json:"name" validate:"required,max=100"`
	Description    string             `json:"description" validate:"max=1000"`
	Category       enums.CropCategory `json:"category" validate:"required"`
	Variety        string             `json:"variety"`
	Quantity       float64            `json:"quantity" validate:"gte=0"`
	Unit           enums.CropUnit     `json:"unit"`
	Price          float64            `json:"price" validate:"gte=0"`
	PricePerUnit   enums.PriceUnit    `json:"pricePerUnit"`
	Quality        enums.CropQuality  `json:"quality"`
	HarvestDate    string             `json:"harvestDate" validate:"required"`
	ExpiryDate     *string            `json:"expiryDate"`
	Location       *types.Location    `json:"location" validate:"required"`
	Images         []string           `json:"images"`
	Certifications []string           `json:"certifications"`
	Status         enums.CropStatus   `json:"status"`
	Featured       bool               `json:"featured"`
}

// UpdateCropInput is a partial update. Nil fields are left unchanged and
// the owner cannot be changed.
type UpdateCropInput struct {
	Name           *string             `json:"name" validate:"omitempty,max=100"`
	Description    *string             `json:"description" validate:"omitempty,max=1000"`
	Category       *enums.CropCategory `json:"category"`
	Variety        *string             `json:"variety"`
	Quantity       *float64            `json:"quantity" validate:"omitempty,gte=0"`
	Unit           *enums.CropUnit     `json:"unit"`
	Price          *float64            `json:"price" validate:"omitempty,gte=0"`
	PricePerUnit   *enums.PriceUnit    `json:"pricePerUnit"`
	Quality        *enums.CropQuality  `json:"quality"`
	HarvestDate    *string             `json:"harvestDate"`
	ExpiryDate     *string             `json:"expiryDate"`
	Location       *types.Location     `json:"location"`
	Images         *[]string           `json:"images"`
	Certifications *[]string           `json:"certifications"`
	Status         *enums.CropStatus   `json:"status"`
	IsActive       *bool               `json:"isActive"`
	Featured       *bool               `json:"featured"`
}

// ListFilters narrows the public listing.
type ListFilters struct {
	Category *enums.CropCategory
	Status   *enums.CropStatus
	FarmerID *uuid.UUID
	Featured *bool
	Query    string
}

// Near restricts results to MaxDistance metres around Point.
type Near struct {
	Point       types.Location
	MaxDistance float64
}

type ListInput struct {
	Filters    ListFilters
	Near       *Near
	Pagination pagination.Params
}

type ListResult struct {
	Crops      []CropDTO `json:"crops"`
	NextCursor string    `json:"nextCursor,omitempty"`
}
