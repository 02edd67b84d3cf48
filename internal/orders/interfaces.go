package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartkisan/kisan-backend/internal/cart"
	"github.com/smartkisan/kisan-backend/pkg/db/models"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByIDForOwner(ctx context.Context, id uuid.UUID, owner cart.Owner) (*models.Order, error)
	FindByIdempotencyKey(ctx context.Context, owner cart.Owner, key string) (*models.Order, error)
	ListByOwner(ctx context.Context, owner cart.Owner) ([]models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CartStore hands out cart repositories bound to the placement transaction.
type CartStore interface {
	WithTx(tx *gorm.DB) cart.CartRepository
}

// CropCatalog re-prices crop lines inside the placement transaction.
type CropCatalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Crop, error)
}

// CatalogBinder binds the crop catalog to a transaction.
type CatalogBinder func(tx *gorm.DB) CropCatalog
