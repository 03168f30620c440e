package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/finsight-vn/finsight/internal/jobs"
)

// CacheBumpPayload names the upstream event that made cached data stale.
type CacheBumpPayload struct {
	Source string `json:"source"`
}

// CacheBumper invalidates the versioned reference cache.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// CacheBumpJob rolls the cache version forward after an upstream data load,
// then queues a warm-up so readers hit fresh entries instead of cold misses.
type CacheBumpJob struct {
	Cache   CacheBumper
	Warmups WarmupEnqueuer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// WarmupEnqueuer schedules a follow-up cache warm.
type WarmupEnqueuer interface {
	EnqueueRefdataWarm(ctx context.Context, reason string) (*asynq.TaskInfo, error)
}

// NewCacheBumpJob constructs the job handler. The enqueuer may be nil; the
// bump then happens without a follow-up warm.
func NewCacheBumpJob(cache CacheBumper, warmups WarmupEnqueuer, logger *slog.Logger, metrics *jobmetrics.Metrics) *CacheBumpJob {
	return &CacheBumpJob{Cache: cache, Warmups: warmups, Logger: logger, Metrics: metrics}
}

// NewCacheBumpTask creates an Asynq task for invalidating the reference cache.
func NewCacheBumpTask(source string) (*asynq.Task, error) {
	if source == "" {
		source = "manual"
	}
	body, err := json.Marshal(CacheBumpPayload{Source: source})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCacheBump, body, asynq.Queue(QueueDefault)), nil
}

// Handle executes the cache bump job.
func (j *CacheBumpJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Cache == nil {
		return errors.New("cache bump: dependencies not configured")
	}
	var payload CacheBumpPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskCacheBump)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if err := j.Cache.Bump(ctx); err != nil {
		resultErr = err
		j.log().Error("bump cache version", slog.String("source", payload.Source), slog.Any("error", err))
		return resultErr
	}
	j.log().Info("cache version bumped", slog.String("source", payload.Source))

	if j.Warmups != nil {
		if _, err := j.Warmups.EnqueueRefdataWarm(ctx, "cache-bump:"+payload.Source); err != nil {
			j.log().Warn("enqueue warm after bump", slog.Any("error", err))
		}
	}
	return resultErr
}

func (j *CacheBumpJob) metrics() *jobmetrics.Metrics {
	if j == nil {
		return nil
	}
	return j.Metrics
}

func (j *CacheBumpJob) log() *slog.Logger {
	if j == nil || j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
