package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeBumper struct {
	calls int
	err   error
}

func (f *fakeBumper) Bump(ctx context.Context) error {
	f.calls++
	return f.err
}

type fakeEnqueuer struct {
	reasons []string
	err     error
}

func (f *fakeEnqueuer) EnqueueRefdataWarm(ctx context.Context, reason string) (*asynq.TaskInfo, error) {
	f.reasons = append(f.reasons, reason)
	return nil, f.err
}

func TestCacheBumpJobBumpsAndQueuesWarm(t *testing.T) {
	bumper := &fakeBumper{}
	enqueuer := &fakeEnqueuer{}
	job := NewCacheBumpJob(bumper, enqueuer, nil, nil)

	task, err := NewCacheBumpTask("nightly-load")
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 1, bumper.calls)
	require.Equal(t, []string{"cache-bump:nightly-load"}, enqueuer.reasons)
}

func TestCacheBumpJobFailedBumpSkipsWarm(t *testing.T) {
	bumper := &fakeBumper{err: errors.New("redis down")}
	enqueuer := &fakeEnqueuer{}
	job := NewCacheBumpJob(bumper, enqueuer, nil, nil)

	task, err := NewCacheBumpTask("")
	require.NoError(t, err)

	require.Error(t, job.Handle(context.Background(), task))
	require.Empty(t, enqueuer.reasons)
}

func TestCacheBumpJobWarmEnqueueFailureIsNotFatal(t *testing.T) {
	job := NewCacheBumpJob(&fakeBumper{}, &fakeEnqueuer{err: errors.New("queue full")}, nil, nil)

	task, err := NewCacheBumpTask("manual")
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
}
