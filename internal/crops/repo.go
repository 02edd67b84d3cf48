package crops

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartkisan/kisan-backend/pkg/db/models"
	"github.com/smartkisan/kisan-backend/pkg/enums"
	"github.com/smartkisan/kisan-backend/pkg/pagination"
)

// maxNearbyCandidates caps the rows pulled from the bounding box before the
// exact distance filter runs.
const maxNearbyCandidates = 1000

// Repository exposes crop persistence operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, crop *models.Crop) error {
	if crop.ID == uuid.Nil {
		crop.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(crop).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Crop, error) {
	var crop models.Crop
	if err := r.db.WithContext(ctx).First(&crop, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &crop, nil
}

// Save writes every column and runs the save hook.
func (r *Repository) Save(ctx context.Context, crop *models.Crop) error {
	return r.db.WithContext(ctx).Save(crop).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Crop{}).Error
}

// IncrementViews bumps the view counter without touching updated_at.
func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Crop{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// ExpireStale marks available crops past their expiry date as expired and
// returns the number of rows changed.
func (r *Repository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Crop{}).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date < ?", enums.CropStatusAvailable, now).
		UpdateColumns(map[string]any{"status": enums.CropStatusExpired, "updated_at": now})
	return res.RowsAffected, res.Error
}

// ListedCrop is a listing row plus its distance when searched by proximity.
type ListedCrop struct {
	Crop     models.Crop
	Distance *float64
}

// List returns active crops newest first. With a Near clause results are
// ordered by distance instead and no cursor is produced.
func (r *Repository) List(ctx context.Context, input ListInput) ([]ListedCrop, string, error) {
	qb := r.db.WithContext(ctx).Model(&models.Crop{}).Where("is_active = ?", true)

	f := input.Filters
	if f.Category != nil {
		qb = qb.Where("category = ?", *f.Category)
	}
	if f.Status != nil {
		qb = qb.Where("status = ?", *f.Status)
	}
	if f.FarmerID != nil {
		qb = qb.Where("farmer_id = ?", *f.FarmerID)
	}
	if f.Featured != nil {
		qb = qb.Where("featured = ?", *f.Featured)
	}
	if search := strings.TrimSpace(f.Query); search != "" {
		qb = qb.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	if input.Near != nil {
		return r.listNear(qb, *input.Near, pagination.NormalizeLimit(input.Pagination.Limit))
	}

	pageSize := pagination.NormalizeLimit(input.Pagination.Limit)
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Crop
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(pagination.LimitWithBuffer(pageSize)).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	out := make([]ListedCrop, 0, len(rows))
	for _, row := range rows {
		out = append(out, ListedCrop{Crop: row})
	}
	return out, nextCursor, nil
}

func (r *Repository) listNear(qb *gorm.DB, near Near, limit int) ([]ListedCrop, string, error) {
	box := near.Point.BoundingBox(near.MaxDistance)
	qb = qb.Where("location_lat BETWEEN ? AND ?", box.MinLat, box.MaxLat)
	lngClauses := make([]string, 0, len(box.Lng))
	lngArgs := make([]any, 0, 2*len(box.Lng))
	for _, rng := range box.Lng {
		lngClauses = append(lngClauses, "location_lng BETWEEN ? AND ?")
		lngArgs = append(lngArgs, rng.Min, rng.Max)
	}
	qb = qb.Where("("+strings.Join(lngClauses, " OR ")+")", lngArgs...)

	var rows []models.Crop
	if err := qb.Order("created_at DESC").Limit(maxNearbyCandidates).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	out := make([]ListedCrop, 0, len(rows))
	for _, row := range rows {
		d := near.Point.DistanceMeters(row.Location)
		if d > near.MaxDistance {
			continue
		}
		out = append(out, ListedCrop{Crop: row, Distance: &d})
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].Distance < *out[j].Distance })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, "", nil
}
