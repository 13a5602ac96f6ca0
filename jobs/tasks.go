package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportWarmup pre-computes report caches after data changes.
	TaskReportWarmup = "report:warmup"
)

// ReportWarmupPayload describes why a warmup was requested.
type ReportWarmupPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewReportWarmupTask constructs an Asynq task for report warmup.
func NewReportWarmupTask(payload ReportWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}
