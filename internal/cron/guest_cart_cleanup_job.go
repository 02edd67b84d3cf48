package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/smartkisan/kisan-backend/internal/cart"
	"github.com/smartkisan/kisan-backend/pkg/logger"
	"github.com/smartkisan/kisan-backend/pkg/metrics"
)

const (
	guestCartCleanupJobName = "guest-cart-cleanup"
	defaultGuestCartTTL     = 30 * 24 * time.Hour
	guestCartPageSize       = 500
	guestCartDeleteChunk    = 100
)

type GuestCartCleanupJobParams struct {
	Logger   *logger.Logger
	Carts    guestCartStore
	Metrics  *metrics.CronJobMetrics
	TTL      time.Duration
	PageSize int
}

type guestCartStore interface {
	ListStaleGuestCarts(ctx context.Context, cutoff time.Time, limit, offset int) ([]cart.StaleGuestCart, error)
	DeleteStaleGuestCarts(ctx context.Context, ids []uuid.UUID, cutoff time.Time) (int64, error)
}

// NewGuestCartCleanupJob purges empty guest carts untouched for longer than TTL.
// Carts that still hold items are kept.
func NewGuestCartCleanupJob(params GuestCartCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultGuestCartTTL
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = guestCartPageSize
	}
	return &guestCartCleanupJob{
		logg:     params.Logger,
		carts:    params.Carts,
		metrics:  params.Metrics,
		ttl:      ttl,
		pageSize: pageSize,
		now:      time.Now,
	}, nil
}

type guestCartCleanupJob struct {
	logg     *logger.Logger
	carts    guestCartStore
	metrics  *metrics.CronJobMetrics
	ttl      time.Duration
	pageSize int
	now      func() time.Time
}

func (j *guestCartCleanupJob) Name() string { return guestCartCleanupJobName }

func (j *guestCartCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)

	var empty []uuid.UUID
	scanned := 0
	for offset := 0; ; offset += j.pageSize {
		page, err := j.carts.ListStaleGuestCarts(ctx, cutoff, j.pageSize, offset)
		if err != nil {
			return fmt.Errorf("list stale guest carts: %w", err)
		}
		for _, row := range page {
			if len(row.Items) == 0 {
				empty = append(empty, row.ID)
			}
		}
		scanned += len(page)
		if len(page) < j.pageSize {
			break
		}
	}

	var (
		deleted int64
		errs    error
	)
	for start := 0; start < len(empty); start += guestCartDeleteChunk {
		end := min(start+guestCartDeleteChunk, len(empty))
		n, err := j.carts.DeleteStaleGuestCarts(ctx, empty[start:end], cutoff)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete guest carts %d-%d: %w", start, end, err))
			continue
		}
		deleted += n
	}
	j.metrics.AddAffected(guestCartCleanupJobName, deleted)

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":        cutoff,
		"carts_scanned": scanned,
		"carts_deleted": deleted,
	})
	if errs != nil {
		return errs
	}
	j.logg.Info(logCtx, "guest cart cleanup complete")
	return nil
}
