package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/zambezi-erp/zambezi-erp/internal/fx"
	jobmetrics "github.com/zambezi-erp/zambezi-erp/internal/jobs"
)

const fxWarmupTimeout = 2 * time.Minute

// FXWarmupJob pre-loads the exchange rate cache so the first currency
// switch after a restart does not pay the storage round trip.
type FXWarmupJob struct {
	FX      *fx.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewFXWarmupJob wires dependencies for the warmup handler.
func NewFXWarmupJob(fxSvc *fx.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *FXWarmupJob {
	return &FXWarmupJob{FX: fxSvc, Logger: logger, Metrics: metrics}
}

// Handle processes rate cache warmup tasks.
func (j *FXWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.FX == nil {
		return errors.New("fx warmup: handler not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, fxWarmupTimeout)
	defer cancel()

	tracker := j.metrics().Track(TaskFXWarmup)
	warmed, err := j.FX.WarmCache(ctx)
	if err != nil {
		j.logger().Error("fx cache warmup failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.logger().Info("fx cache warmed", slog.Int("rates", warmed))
	return tracker.End(nil)
}

func (j *FXWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *FXWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
