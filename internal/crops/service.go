package crops

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/smartkisan/kisan-backend/internal/users"
	pkgAuth "github.com/smartkisan/kisan-backend/pkg/auth"
	"github.com/smartkisan/kisan-backend/pkg/db"
	"github.com/smartkisan/kisan-backend/pkg/db/models"
	"github.com/smartkisan/kisan-backend/pkg/enums"
	pkgerrors "github.com/smartkisan/kisan-backend/pkg/errors"
	"github.com/smartkisan/kisan-backend/pkg/pagination"
	"github.com/smartkisan/kisan-backend/pkg/types"
)

const (
	DefaultMaxDistanceMeters = 10000

	msgCropNotFound     = "Crop not found"
	msgNotAuthorizedPut = "Not authorized to update this crop"
	msgNotAuthorizedDel = "Not authorized to delete this crop"
	msgResourceNotFound = "Resource not found"
)

// Service manages crop listings.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Get(ctx context.Context, id string) (*CropDTO, error)
	Create(ctx context.Context, actor pkgAuth.Identity, input CreateCropInput) (*CropDTO, error)
	Update(ctx context.Context, actor pkgAuth.Identity, id string, input UpdateCropInput) (*CropDTO, error)
	Delete(ctx context.Context, actor pkgAuth.Identity, id string) error
}

type cropRepository interface {
	Create(ctx context.Context, crop *models.Crop) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Crop, error)
	Save(ctx context.Context, crop *models.Crop) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, input ListInput) ([]ListedCrop, string, error)
}

type ownerDirectory interface {
	FindSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]users.Summary, error)
}

type ServiceParams struct {
	Repo  cropRepository
	Users ownerDirectory
	Now   func() time.Time
}

type service struct {
	repo  cropRepository
	users ownerDirectory
	now   func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("crop repository is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user directory is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, users: params.Users, now: now}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Near != nil {
		if err := input.Near.Point.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location")
		}
		if math.IsNaN(input.Near.MaxDistance) || input.Near.MaxDistance <= 0 {
			input.Near.MaxDistance = DefaultMaxDistanceMeters
		}
	}

	if _, err := pagination.ParseCursor(input.Pagination.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list crops")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.Crop.FarmerID)
	}
	owners, err := s.users.FindSummaries(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load farmers")
	}

	now := s.now().UTC()
	out := make([]CropDTO, 0, len(rows))
	for i := range rows {
		dto := FromModel(&rows[i].Crop, now)
		dto.Distance = rows[i].Distance
		if owner, ok := owners[dto.FarmerID]; ok {
			owner.Phone = ""
			dto.Farmer = &owner
		}
		out = append(out, *dto)
	}
	return &ListResult{Crops: out, NextCursor: next}, nil
}

// Get returns one crop and counts the view.
func (s *service) Get(ctx context.Context, id string) (*CropDTO, error) {
	crop, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementViews(ctx, crop.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count view")
	}
	crop.Views++

	dto := FromModel(crop, s.now().UTC())
	owners, err := s.users.FindSummaries(ctx, []uuid.UUID{crop.FarmerID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load farmer")
	}
	if owner, ok := owners[crop.FarmerID]; ok {
		dto.Farmer = &owner
	}
	return dto, nil
}

func (s *service) Create(ctx context.Context, actor pkgAuth.Identity, input CreateCropInput) (*CropDTO, error) {
	farmerID, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Demo user cannot manage crops")
	}

	harvest, err := parseDate("harvestDate", input.HarvestDate)
	if err != nil {
		return nil, err
	}
	crop := &models.Crop{
		Name:           strings.TrimSpace(input.Name),
		Description:    strings.TrimSpace(input.Description),
		Category:       input.Category,
		Variety:        strings.TrimSpace(input.Variety),
		FarmerID:       farmerID,
		Quantity:       input.Quantity,
		Unit:           defaultIfEmpty(input.Unit, enums.CropUnitKg),
		Price:          input.Price,
		PricePerUnit:   defaultIfEmpty(input.PricePerUnit, enums.PriceUnitKg),
		Quality:        defaultIfEmpty(input.Quality, enums.CropQualityStandard),
		HarvestDate:    harvest,
		Images:         pq.StringArray(append([]string{}, input.Images...)),
		Certifications: pq.StringArray(append([]string{}, input.Certifications...)),
		Status:         defaultIfEmpty(input.Status, enums.CropStatusAvailable),
		IsActive:       true,
		Featured:       input.Featured,
	}
	if input.ExpiryDate != nil && strings.TrimSpace(*input.ExpiryDate) != "" {
		expiry, err := parseDate("expiryDate", *input.ExpiryDate)
		if err != nil {
			return nil, err
		}
		crop.ExpiryDate = &expiry
	}
	if input.Location != nil {
		crop.Location = *input.Location
	}

	if err := validateCrop(crop); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, crop); err != nil {
		return nil, mapSaveError(err, "create crop")
	}
	return FromModel(crop, s.now().UTC()), nil
}

func (s *service) Update(ctx context.Context, actor pkgAuth.Identity, id string, input UpdateCropInput) (*CropDTO, error) {
	crop, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, crop) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, msgNotAuthorizedPut)
	}

	if err := applyUpdate(crop, input); err != nil {
		return nil, err
	}
	if err := validateCrop(crop); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, crop); err != nil {
		return nil, mapSaveError(err, "update crop")
	}
	return FromModel(crop, s.now().UTC()), nil
}

func (s *service) Delete(ctx context.Context, actor pkgAuth.Identity, id string) error {
	crop, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(actor, crop) {
		return pkgerrors.New(pkgerrors.CodeForbidden, msgNotAuthorizedDel)
	}
	if err := s.repo.Delete(ctx, crop.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete crop")
	}
	return nil
}

func (s *service) load(ctx context.Context, rawID string) (*models.Crop, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgResourceNotFound)
	}
	crop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgCropNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load crop")
	}
	return crop, nil
}

func canManage(actor pkgAuth.Identity, crop *models.Crop) bool {
	return actor.IsAdmin() || actor.ID == crop.FarmerID.String()
}

func applyUpdate(crop *models.Crop, in UpdateCropInput) error {
	if in.Name != nil {
		crop.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		crop.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		crop.Category = *in.Category
	}
	if in.Variety != nil {
		crop.Variety = strings.TrimSpace(*in.Variety)
	}
	if in.Quantity != nil {
		crop.Quantity = *in.Quantity
	}
	if in.Unit != nil {
		crop.Unit = *in.Unit
	}
	if in.Price != nil {
		crop.Price = *in.Price
	}
	if in.PricePerUnit != nil {
		crop.PricePerUnit = *in.PricePerUnit
	}
	if in.Quality != nil {
		crop.Quality = *in.Quality
	}
	if in.HarvestDate != nil {
		harvest, err := parseDate("harvestDate", *in.HarvestDate)
		if err != nil {
			return err
		}
		crop.HarvestDate = harvest
	}
	if in.ExpiryDate != nil {
		if strings.TrimSpace(*in.ExpiryDate) == "" {
			crop.ExpiryDate = nil
		} else {
			expiry, err := parseDate("expiryDate", *in.ExpiryDate)
			if err != nil {
				return err
			}
			crop.ExpiryDate = &expiry
		}
	}
	if in.Location != nil {
		crop.Location = *in.Location
	}
	if in.Images != nil {
		crop.Images = pq.StringArray(append([]string{}, (*in.Images)...))
	}
	if in.Certifications != nil {
		crop.Certifications = pq.StringArray(append([]string{}, (*in.Certifications)...))
	}
	if in.Status != nil {
		crop.Status = *in.Status
	}
	if in.IsActive != nil {
		crop.IsActive = *in.IsActive
	}
	if in.Featured != nil {
		crop.Featured = *in.Featured
	}
	return nil
}

// validateCrop applies the schema rules shared by create and update. All
// violations are reported together.
func validateCrop(c *models.Crop) error {
	var msgs []string
	if c.Name == "" {
		msgs = append(msgs, "Please provide crop name")
	}
	if len([]rune(c.Name)) > 100 {
		msgs = append(msgs, "Crop name cannot be more than 100 characters")
	}
	if len([]rune(c.Description)) > 1000 {
		msgs = append(msgs, "Description cannot be more than 1000 characters")
	}
	if !c.Category.IsValid() {
		msgs = append(msgs, "Please provide a valid crop category")
	}
	if c.Quantity < 0 {
		msgs = append(msgs, "Quantity cannot be negative")
	}
	if !c.Unit.IsValid() {
		msgs = append(msgs, fmt.Sprintf("Unit %s is not supported", c.Unit))
	}
	if c.Price < 0 {
		msgs = append(msgs, "Price cannot be negative")
	}
	if !c.PricePerUnit.IsValid() {
		msgs = append(msgs, fmt.Sprintf("Price unit %s is not supported", c.PricePerUnit))
	}
	if !c.Quality.IsValid() {
		msgs = append(msgs, fmt.Sprintf("Quality %s is not supported", c.Quality))
	}
	if !c.Status.IsValid() {
		msgs = append(msgs, fmt.Sprintf("Status %s is not supported", c.Status))
	}
	for _, cert := range c.Certifications {
		if !enums.Certification(cert).IsValid() {
			msgs = append(msgs, fmt.Sprintf("Certification %s is not supported", cert))
		}
	}
	if err := c.Location.Validate(); err != nil {
		msgs = append(msgs, capitalize(err.Error()))
	}
	if err := c.ValidateDates(); err != nil {
		msgs = append(msgs, capitalize(err.Error()))
	}
	if len(msgs) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, strings.Join(msgs, ", ")).WithDetails(msgs)
}

func mapSaveError(err error, action string) error {
	if errors.Is(err, models.ErrExpiryNotAfterHarvest) {
		return pkgerrors.New(pkgerrors.CodeValidation, capitalize(err.Error()))
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

var dateLayouts = []string{time.RFC3339Nano, time.DateOnly}

func parseDate(field, raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, pkgerrors.Newf(pkgerrors.CodeValidation, "Invalid %s %q", field, raw)
}

func defaultIfEmpty[T ~string](value, fallback T) T {
	if value == "" {
		return fallback
	}
	return value
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// NearFrom builds a proximity clause from raw coordinates.
func NearFrom(lng, lat, maxDistance float64) *Near {
	return &Near{Point: types.Location{Lng: lng, Lat: lat}, MaxDistance: maxDistance}
}
