package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartkisan/kisan-backend/internal/cart"
	"github.com/smartkisan/kisan-backend/pkg/db"
	"github.com/smartkisan/kisan-backend/pkg/db/models"
	"github.com/smartkisan/kisan-backend/pkg/enums"
	pkgerrors "github.com/smartkisan/kisan-backend/pkg/errors"
)

const (
	maxNumberAttempts    = 3
	maxIdempotencyKeyLen = 255

	MsgCartEmpty     = "Cart is empty"
	MsgOrderNotFound = "Order not found"
)

// Service defines order placement, owner reads and admin status changes.
type Service interface {
	Place(ctx context.Context, owner cart.Owner, input PlaceOrderInput) (*PlaceOrderResult, error)
	List(ctx context.Context, owner cart.Owner) ([]OrderDTO, error)
	Get(ctx context.Context, owner cart.Owner, id string) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, id string, input UpdateStatusInput) (*OrderDTO, error)
}

// ServiceParams wires the order service.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Carts   CartStore
	Catalog CatalogBinder
	Now     func() time.Time
	// NewNumber overrides order number generation.
	NewNumber func(time.Time) string
}

type service struct {
	repo      Repository
	tx        txRunner
	carts     CartStore
	catalog   CatalogBinder
	now       func() time.Time
	newNumber func(time.Time) string
}

// NewService builds the order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("crop catalog required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	newNumber := params.NewNumber
	if newNumber == nil {
		newNumber = NewOrderNumber
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		carts:     params.Carts,
		catalog:   params.Catalog,
		now:       now,
		newNumber: newNumber,
	}, nil
}

// Place snapshots the owner's cart into a new order and empties the cart in
// one transaction. A repeated idempotency key returns the existing order.
func (s *service) Place(ctx context.Context, owner cart.Owner, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = enums.PaymentMethodCashOnDelivery
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "Payment method %s is not supported", input.PaymentMethod)
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key is too long")
	}

	if key != "" {
		existing, err := s.findReplay(ctx, owner, key)
		if err != nil || existing != nil {
			return existing, err
		}
	}

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		order, err := s.placeOnce(ctx, owner, input, key)
		if err == nil {
			return &PlaceOrderResult{Order: FromModel(order)}, nil
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		if db.IsUniqueViolation(err, "order_number") {
			continue
		}
		if key != "" && db.IsUniqueViolation(err, "idempotency_key") {
			existing, findErr := s.findReplay(ctx, owner, key)
			if findErr != nil || existing != nil {
				return existing, findErr
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "place order")
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "Could not allocate a unique order number")
}

func (s *service) findReplay(ctx context.Context, owner cart.Owner, key string) (*PlaceOrderResult, error) {
	existing, err := s.repo.FindByIdempotencyKey(ctx, owner, key)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order by idempotency key")
	}
	return &PlaceOrderResult{Order: FromModel(existing), Replayed: true}, nil
}

// placeOnce returns raw database errors from the insert so the caller can
// recognise unique violations.
func (s *service) placeOnce(ctx context.Context, owner cart.Owner, input PlaceOrderInput, key string) (*models.Order, error) {
	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		c, err := carts.FindByOwnerForUpdate(ctx, owner)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeBadRequest, MsgCartEmpty)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		if len(c.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeBadRequest, MsgCartEmpty)
		}

		items, err := reprice(ctx, s.catalog(tx), c.Items.Clone())
		if err != nil {
			return err
		}

		order := &models.Order{
			ID:              uuid.New(),
			OrderNumber:     s.newNumber(s.now()),
			Items:           items,
			TotalAmount:     items.TotalPrice().Round(2).InexactFloat64(),
			ShippingAddress: input.ShippingAddress.Normalize(),
			PaymentMethod:   input.PaymentMethod,
			PaymentStatus:   enums.PaymentStatusPending,
			Status:          enums.OrderStatusPending,
		}
		if owner.IsUser() {
			order.UserID = &owner.UserID
		} else {
			order.GuestID = &owner.GuestID
		}
		if key != "" {
			order.IdempotencyKey = &key
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}

		ok, err := carts.UpdateItems(ctx, c.ID, c.Version, models.CartItems{})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, "Cart was modified while placing the order, please retry")
		}
		created = order
		return nil
	})
	return created, err
}

// reprice applies current catalog prices to crop lines that reference a
// stored crop. Lines for sample catalogs keep their cart price.
func reprice(ctx context.Context, catalog CropCatalog, items models.CartItems) (models.CartItems, error) {
	for i := range items {
		if items[i].ProductType != enums.ProductTypeCrop {
			continue
		}
		cropID, err := uuid.Parse(items[i].ProductID)
		if err != nil {
			continue
		}
		crop, err := catalog.FindByID(ctx, cropID)
		if err != nil {
			if db.IsNotFound(err) {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load crop")
		}
		if crop.Status != enums.CropStatusAvailable || !crop.IsActive {
			return nil, pkgerrors.Newf(pkgerrors.CodeBadRequest, "Crop %s is no longer available", crop.Name)
		}
		items[i].Price = crop.Price
	}
	return items, nil
}

func (s *service) List(ctx context.Context, owner cart.Owner) ([]OrderDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, owner cart.Owner, id string) (*OrderDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	orderID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, MsgOrderNotFound)
	}
	order, err := s.repo.FindByIDForOwner(ctx, orderID, owner)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, MsgOrderNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return FromModel(order), nil
}

// UpdateStatus moves an order along the fulfilment lifecycle. Setting the
// current status again is a no-op.
func (s *service) UpdateStatus(ctx context.Context, id string, input UpdateStatusInput) (*OrderDTO, error) {
	orderID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, MsgOrderNotFound)
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "Order status %s is not supported", input.Status)
	}
	if input.PaymentStatus != nil && !input.PaymentStatus.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "Payment status %s is not supported", *input.PaymentStatus)
	}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, MsgOrderNotFound)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}

		updates := map[string]any{}
		if order.Status != input.Status {
			if !order.Status.CanTransitionTo(input.Status) {
				return pkgerrors.Newf(pkgerrors.CodeStateConflict, "Cannot change order status from %s to %s", order.Status, input.Status)
			}
			updates["status"] = input.Status
			order.Status = input.Status
		}
		if input.PaymentStatus != nil && order.PaymentStatus != *input.PaymentStatus {
			if !order.PaymentStatus.CanTransitionTo(*input.PaymentStatus) {
				return pkgerrors.Newf(pkgerrors.CodeStateConflict, "Cannot change payment status from %s to %s", order.PaymentStatus, *input.PaymentStatus)
			}
			updates["payment_status"] = *input.PaymentStatus
			order.PaymentStatus = *input.PaymentStatus
		}
		if len(updates) > 0 {
			order.UpdatedAt = s.now().UTC()
			updates["updated_at"] = order.UpdatedAt
			if err := repo.UpdateStatus(ctx, order.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
			}
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}
