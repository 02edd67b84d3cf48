package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartkisan/kisan-backend/pkg/db"
	"github.com/smartkisan/kisan-backend/pkg/db/models"
)

// Repository persists carts. Item writes are compare-and-swap on version.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) FindByOwner(ctx context.Context, owner Owner) (*models.Cart, error) {
	return r.find(r.db.WithContext(ctx), owner)
}

// FindByOwnerForUpdate locks the cart row until the surrounding
// transaction ends. SQLite ignores the lock clause.
func (r *Repository) FindByOwnerForUpdate(ctx context.Context, owner Owner) (*models.Cart, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), owner)
}

func (r *Repository) find(q *gorm.DB, owner Owner) (*models.Cart, error) {
	column, value := owner.Column()
	var cart models.Cart
	if err := q.Where(column+" = ?", value).First(&cart).Error; err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = models.CartItems{}
	}
	return &cart, nil
}

// GetOrCreate returns the owner's cart, inserting an empty one when absent.
// A concurrent insert for the same owner resolves to the winner's row.
func (r *Repository) GetOrCreate(ctx context.Context, owner Owner) (*models.Cart, error) {
	cart, err := r.FindByOwner(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !db.IsNotFound(err) {
		return nil, err
	}

	cart = &models.Cart{ID: uuid.New(), Items: models.CartItems{}}
	if owner.IsUser() {
		cart.UserID = &owner.UserID
	} else {
		cart.GuestID = &owner.GuestID
	}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return r.FindByOwner(ctx, owner)
		}
		return nil, err
	}
	return cart, nil
}

// UpdateItems replaces the items when the stored version still equals
// expectedVersion and bumps it. It reports false when another writer won.
func (r *Repository) UpdateItems(ctx context.Context, cartID uuid.UUID, expectedVersion int, items models.CartItems) (bool, error) {
	if items == nil {
		items = models.CartItems{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return false, fmt.Errorf("encode cart items: %w", err)
	}
	res := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND version = ?", cartID, expectedVersion).
		UpdateColumns(map[string]any{
			"items":      string(payload),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// StaleGuestCart is the projection scanned by the cleanup job.
type StaleGuestCart struct {
	ID    uuid.UUID
	Items models.CartItems `gorm:"serializer:json"`
}

// ListStaleGuestCarts pages through guest carts untouched since cutoff.
func (r *Repository) ListStaleGuestCarts(ctx context.Context, cutoff time.Time, limit, offset int) ([]StaleGuestCart, error) {
	var rows []StaleGuestCart
	err := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Select("id", "items").
		Where("guest_id IS NOT NULL AND updated_at < ?", cutoff).
		Order("updated_at ASC").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

// DeleteStaleGuestCarts removes the listed carts that are still guest
// carts, untouched since cutoff and empty. Rows written after they were
// listed are skipped.
func (r *Repository) DeleteStaleGuestCarts(ctx context.Context, ids []uuid.UUID, cutoff time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Where("guest_id IS NOT NULL AND updated_at < ? AND items = '[]'", cutoff).
		Delete(&models.Cart{})
	return res.RowsAffected, res.Error
}
