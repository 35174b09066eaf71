package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/zambezi-erp/zambezi-erp/internal/crm"
	jobmetrics "github.com/zambezi-erp/zambezi-erp/internal/jobs"
)

const dashboardWarmupTimeout = 2 * time.Minute

// CRMDashboardWarmupJob rebuilds the dashboard snapshot ahead of traffic.
type CRMDashboardWarmupJob struct {
	CRM     *crm.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewCRMDashboardWarmupJob wires dependencies for the warmup handler.
func NewCRMDashboardWarmupJob(crmSvc *crm.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *CRMDashboardWarmupJob {
	return &CRMDashboardWarmupJob{CRM: crmSvc, Logger: logger, Metrics: metrics}
}

// Handle processes dashboard warmup tasks.
func (j *CRMDashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.CRM == nil {
		return errors.New("crm dashboard warmup: handler not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, dashboardWarmupTimeout)
	defer cancel()

	tracker := j.metrics().Track(TaskCRMDashboardWarmup)
	if err := j.CRM.WarmDashboard(ctx); err != nil {
		j.logger().Error("crm dashboard warmup failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.logger().Info("crm dashboard warmed")
	return tracker.End(nil)
}

func (j *CRMDashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *CRMDashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
