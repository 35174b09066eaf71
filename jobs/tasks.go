package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskFXWarmup pre-loads the exchange rate cache from storage.
	TaskFXWarmup = "fx:warm_cache"
	// TaskCRMDashboardWarmup rebuilds the CRM dashboard snapshot.
	TaskCRMDashboardWarmup = "crm:dashboard_warmup"
)

// NewFXWarmupTask constructs the rate cache warmup task.
func NewFXWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskFXWarmup, nil)
}

// NewCRMDashboardWarmupTask constructs the dashboard warmup task.
func NewCRMDashboardWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskCRMDashboardWarmup, nil)
}
