package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartkisan/kisan-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByOwner(ctx context.Context, owner Owner) (*models.Cart, error)
	FindByOwnerForUpdate(ctx context.Context, owner Owner) (*models.Cart, error)
	GetOrCreate(ctx context.Context, owner Owner) (*models.Cart, error)
	UpdateItems(ctx context.Context, cartID uuid.UUID, expectedVersion int, items models.CartItems) (bool, error)
}

// CropCatalog resolves the authoritative price of crop lines.
type CropCatalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Crop, error)
}
