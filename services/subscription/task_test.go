package subscription

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

type hookRecorder struct {
	hooks []fx.Hook
}

func (r *hookRecorder) Append(h fx.Hook) {
	r.hooks = append(r.hooks, h)
}

type enqueuerStub struct {
	calls atomic.Int32
}

func (e *enqueuerStub) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	e.calls.Add(1)
	return &asynq.TaskInfo{}, nil
}

func TestPlanSyncSchedulerSurvivesStartTimeout(t *testing.T) {
	enq := &enqueuerStub{}
	s := &Scheduler{enqueuer: enq, every: 10 * time.Millisecond}

	lc := &hookRecorder{}
	StartScheduler(lc, s)
	require.Len(t, lc.hooks, 1)

	startCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, lc.hooks[0].OnStart(startCtx))

	// ticks must keep firing well past the start context deadline
	require.Eventually(t, func() bool {
		return enq.calls.Load() >= 5
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, lc.hooks[0].OnStop(context.Background()))
	time.Sleep(50 * time.Millisecond)
	settled := enq.calls.Load()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, settled, enq.calls.Load())
}
