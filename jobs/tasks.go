package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRetentionSweep triggers the periodic content retention sweep.
	TaskRetentionSweep = "retention:sweep"
)

// RetentionSweepPayload carries scheduling metadata.
type RetentionSweepPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewRetentionSweepTask constructs an Asynq task for the retention sweep.
func NewRetentionSweepTask(at time.Time) (*asynq.Task, error) {
	payload := RetentionSweepPayload{ScheduledFor: at}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRetentionSweep, body, asynq.Queue(QueueDefault)), nil
}
