package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/smartkisan/kisan-backend/pkg/logger"
	"github.com/smartkisan/kisan-backend/pkg/metrics"
)

const cropExpiryJobName = "crop-expiry"

type CropExpiryJobParams struct {
	Logger  *logger.Logger
	Crops   cropExpirer
	Metrics *metrics.CronJobMetrics
}

type cropExpirer interface {
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// NewCropExpiryJob marks available crops whose expiry date has passed as expired.
func NewCropExpiryJob(params CropExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Crops == nil {
		return nil, fmt.Errorf("crop repository required")
	}
	return &cropExpiryJob{
		logg:    params.Logger,
		crops:   params.Crops,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

type cropExpiryJob struct {
	logg    *logger.Logger
	crops   cropExpirer
	metrics *metrics.CronJobMetrics
	now     func() time.Time
}

func (j *cropExpiryJob) Name() string { return cropExpiryJobName }

func (j *cropExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	expired, err := j.crops.ExpireStale(ctx, now)
	if err != nil {
		return fmt.Errorf("crop expiry: %w", err)
	}
	j.metrics.AddAffected(cropExpiryJobName, expired)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"as_of":         now,
		"crops_expired": expired,
	})
	j.logg.Info(logCtx, "crop expiry complete")
	return nil
}
