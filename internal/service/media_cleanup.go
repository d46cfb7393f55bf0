package service

import (
	"context"
	"fmt"
	"time"

	"bitwise74/codedrop/internal/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Expirer interface {
	ExpireOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

// MediaCleanup schedules a sweep that removes media older than retention.
// The caller owns the returned cron and should Stop it on shutdown.
func MediaCleanup(schedule string, retention time.Duration, e Expirer) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		SweepExpiredMedia(ctx, retention, e)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q, %w", schedule, err)
	}

	zap.L().Debug("Media cleanup attached", zap.String("schedule", schedule), zap.Duration("retention", retention))

	c.Start()
	return c, nil
}

// SweepExpiredMedia runs a single pass of the cleanup
func SweepExpiredMedia(ctx context.Context, retention time.Duration, e Expirer) int64 {
	n, err := e.ExpireOlderThan(ctx, retention)
	if err != nil {
		zap.L().Error("Failed to clean up expired media", zap.Error(err))
		return 0
	}

	if n > 0 {
		metrics.MediaExpiredTotal.Add(float64(n))
		zap.L().Info("Expired media removed", zap.Int64("count", n))
	}

	return n
}
