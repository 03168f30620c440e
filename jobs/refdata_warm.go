package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/finsight-vn/finsight/internal/jobs"
)

// RefdataWarmPayload configures a cache warm-up run.
type RefdataWarmPayload struct {
	Reason string `json:"reason"`
}

// RefdataWarmer describes the behaviour required to rebuild the cached
// reference data.
type RefdataWarmer interface {
	Warm(ctx context.Context) error
}

// RefdataWarmJob preloads the reference-data cache so the first dashboard
// request after an invalidation does not pay the Postgres round trips.
type RefdataWarmJob struct {
	Service RefdataWarmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewRefdataWarmJob constructs the job handler.
func NewRefdataWarmJob(service RefdataWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *RefdataWarmJob {
	return &RefdataWarmJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// NewRefdataWarmTask creates an Asynq task for warming the reference cache.
func NewRefdataWarmTask(reason string) (*asynq.Task, error) {
	if reason == "" {
		reason = "scheduled"
	}
	body, err := json.Marshal(RefdataWarmPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRefdataWarm, body, asynq.Queue(QueueDefault)), nil
}

// Handle executes the warm-up job.
func (j *RefdataWarmJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("refdata warm: dependencies not configured")
	}
	var payload RefdataWarmPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskRefdataWarm)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := j.now()
	if err := j.Service.Warm(ctx); err != nil {
		resultErr = err
		j.log().Error("warm reference cache", slog.String("reason", payload.Reason), slog.Any("error", err))
		return resultErr
	}
	j.log().Info("reference cache warmed",
		slog.String("reason", payload.Reason),
		slog.Duration("elapsed", j.now().Sub(start)))
	return resultErr
}

func (j *RefdataWarmJob) metrics() *jobmetrics.Metrics {
	if j == nil {
		return nil
	}
	return j.Metrics
}

func (j *RefdataWarmJob) log() *slog.Logger {
	if j == nil || j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}

func (j *RefdataWarmJob) now() time.Time {
	if j == nil || j.clock == nil {
		return time.Now().UTC()
	}
	return j.clock()
}
