package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/smartkisan/kisan-backend/pkg/db"
	"github.com/smartkisan/kisan-backend/pkg/db/models"
	"github.com/smartkisan/kisan-backend/pkg/enums"
	pkgerrors "github.com/smartkisan/kisan-backend/pkg/errors"
)

const (
	maxVersionRetries = 3

	// MaxLineQuantity caps a single cart line.
	MaxLineQuantity = 10000

	MsgCartNotFound     = "Cart not found"
	MsgItemNotFound     = "Item not found in cart"
	msgCartConflict     = "Cart was modified by another request, please retry"
	msgCropNotAvailable = "Crop is not available"
)

var msgQuantityTooLarge = fmt.Sprintf("Quantity cannot exceed %d", MaxLineQuantity)

// Service exposes cart operations for one owner at a time.
type Service interface {
	Get(ctx context.Context, owner Owner) (*CartDTO, error)
	Add(ctx context.Context, owner Owner, input AddItemInput) (*CartDTO, error)
	Update(ctx context.Context, owner Owner, productID string, quantity int) (*CartDTO, error)
	Remove(ctx context.Context, owner Owner, productID string) (*CartDTO, error)
	Clear(ctx context.Context, owner Owner) (*CartDTO, error)
}

type service struct {
	repo    CartRepository
	catalog CropCatalog
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, catalog CropCatalog) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("crop catalog required")
	}
	return &service{repo: repo, catalog: catalog}, nil
}

func (s *service) Get(ctx context.Context, owner Owner) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	cart, err := s.repo.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return FromModel(cart), nil
}

// Add appends a line or increases the quantity of an existing one.
func (s *service) Add(ctx context.Context, owner Owner, input AddItemInput) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	line, err := s.resolveLine(ctx, input)
	if err != nil {
		return nil, err
	}

	cart, err := s.mutate(ctx, owner, true, func(items models.CartItems) (models.CartItems, error) {
		if idx := items.IndexOf(line.ProductID); idx >= 0 {
			if items[idx].Quantity > MaxLineQuantity-line.Quantity {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, msgQuantityTooLarge)
			}
			items[idx].Quantity += line.Quantity
			return items, nil
		}
		return append(items, line), nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(cart), nil
}

// Update sets the exact quantity of an existing line. Zero removes it.
func (s *service) Update(ctx context.Context, owner Owner, productID string, quantity int) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Quantity cannot be negative")
	}
	if quantity > MaxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgQuantityTooLarge)
	}

	cart, err := s.mutate(ctx, owner, false, func(items models.CartItems) (models.CartItems, error) {
		idx := items.IndexOf(productID)
		if idx < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, MsgItemNotFound)
		}
		if quantity == 0 {
			return append(items[:idx], items[idx+1:]...), nil
		}
		items[idx].Quantity = quantity
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(cart), nil
}

// Remove drops the line for productID. Missing lines are not an error.
func (s *service) Remove(ctx context.Context, owner Owner, productID string) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	cart, err := s.mutate(ctx, owner, false, func(items models.CartItems) (models.CartItems, error) {
		out := items[:0]
		for _, item := range items {
			if item.ProductID != productID {
				out = append(out, item)
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(cart), nil
}

func (s *service) Clear(ctx context.Context, owner Owner) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	cart, err := s.mutate(ctx, owner, false, func(models.CartItems) (models.CartItems, error) {
		return models.CartItems{}, nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(cart), nil
}

// mutate runs a read-modify-write on the owner's items, retrying when a
// concurrent writer bumps the version first.
func (s *service) mutate(ctx context.Context, owner Owner, create bool, fn func(models.CartItems) (models.CartItems, error)) (*models.Cart, error) {
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		cart, err := s.load(ctx, owner, create)
		if err != nil {
			return nil, err
		}

		next, err := fn(cart.Items.Clone())
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = models.CartItems{}
		}

		ok, err := s.repo.UpdateItems(ctx, cart.ID, cart.Version, next)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart")
		}
		if ok {
			cart.Items = next
			cart.Version++
			return cart, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, msgCartConflict)
}

func (s *service) load(ctx context.Context, owner Owner, create bool) (*models.Cart, error) {
	if create {
		cart, err := s.repo.GetOrCreate(ctx, owner)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		return cart, nil
	}
	cart, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, MsgCartNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return cart, nil
}

// resolveLine validates the payload and applies catalog pricing to crops
// that exist server side. Other product types keep the client price.
func (s *service) resolveLine(ctx context.Context, input AddItemInput) (models.CartItem, error) {
	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}

	var msgs []string
	productID := strings.TrimSpace(input.ProductID)
	if productID == "" {
		msgs = append(msgs, "Please provide productId")
	}
	if !input.ProductType.IsValid() {
		msgs = append(msgs, fmt.Sprintf("Product type %s is not supported", input.ProductType))
	}
	if input.Price < 0 {
		msgs = append(msgs, "Price cannot be negative")
	}
	switch {
	case quantity < 1:
		msgs = append(msgs, "Quantity must be at least 1")
	case quantity > MaxLineQuantity:
		msgs = append(msgs, msgQuantityTooLarge)
	}
	if len(msgs) > 0 {
		return models.CartItem{}, pkgerrors.New(pkgerrors.CodeValidation, strings.Join(msgs, ", ")).WithDetails(msgs)
	}

	line := models.CartItem{
		ProductID:   productID,
		ProductType: input.ProductType,
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price,
		Image:       strings.TrimSpace(input.Image),
		Quantity:    quantity,
	}

	if line.ProductType == enums.ProductTypeCrop {
		if cropID, err := uuid.Parse(productID); err == nil {
			crop, err := s.catalog.FindByID(ctx, cropID)
			switch {
			case err == nil:
				if crop.Status != enums.CropStatusAvailable || !crop.IsActive {
					return models.CartItem{}, pkgerrors.New(pkgerrors.CodeBadRequest, msgCropNotAvailable)
				}
				line.ProductID = crop.ID.String()
				line.Price = crop.Price
				line.Name = crop.Name
				if line.Image == "" && len(crop.Images) > 0 {
					line.Image = crop.Images[0]
				}
			case !db.IsNotFound(err):
				return models.CartItem{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load crop")
			}
		}
	}

	if line.Name == "" {
		return models.CartItem{}, pkgerrors.New(pkgerrors.CodeValidation, "Please provide product name")
	}
	return line, nil
}
