package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartkisan/kisan-backend/internal/cart"
	"github.com/smartkisan/kisan-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository returns a repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForOwner matches on id and owner together so one owner can never
// read another's order.
func (r *repository) FindByIDForOwner(ctx context.Context, id uuid.UUID, owner cart.Owner) (*models.Order, error) {
	column, value := owner.Column()
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND "+column+" = ?", id, value).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByIdempotencyKey(ctx context.Context, owner cart.Owner, key string) (*models.Order, error) {
	column, value := owner.Column()
	var order models.Order
	err := r.db.WithContext(ctx).
		Where(column+" = ? AND idempotency_key = ?", value, key).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByOwner(ctx context.Context, owner cart.Owner) ([]models.Order, error) {
	column, value := owner.Column()
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where(column+" = ?", value).
		Order("created_at DESC").
		Order("order_number DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}
