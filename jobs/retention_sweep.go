package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/pressroom/pressroom/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Sweeper prunes secondary structures left behind by expired content. Redis
// already removes the records themselves at their retention deadline; the
// sweep only cleans up the publish index and any orphaned engagement keys.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// RetentionSweepJob runs the periodic retention sweep.
type RetentionSweepJob struct {
	Sweeper Sweeper
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewRetentionSweepJob initialises the retention sweep handler.
func NewRetentionSweepJob(sweeper Sweeper, logger *slog.Logger, metrics *jobmetrics.Metrics) *RetentionSweepJob {
	return &RetentionSweepJob{
		Sweeper: sweeper,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one sweep pass.
func (j *RetentionSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Sweeper == nil {
		return errors.New("retention sweep: handler not configured")
	}
	var payload RetentionSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := j.now()
	tracker := j.metrics().Track(TaskRetentionSweep)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting retention sweep")

	pruned, err := j.Sweeper.SweepExpired(ctx)
	if err != nil {
		resultErr = err
		logger.Error("sweep failed", slog.Any("error", err))
		return resultErr
	}
	if pruned > 0 {
		j.metrics().AddExpired(pruned)
	}

	logger.Info("completed retention sweep",
		slog.Int("pruned", pruned),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *RetentionSweepJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskRetentionSweep))
	}
	return slog.Default().With(slog.String("job", TaskRetentionSweep))
}

func (j *RetentionSweepJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *RetentionSweepJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
