package device

import (
	"context"
	"time"

	pkgtask "swarmrewards/pkg/task"
	"swarmrewards/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func RegisterWorker(mux *asynq.ServeMux, svc *Service) {
	mux.HandleFunc(taskname.UptimeDailyReset, svc.HandleDailyResetTask)
}

func (s *Service) HandleDailyResetTask(ctx context.Context, t *asynq.Task) error {
	start := time.Now()
	zap.L().Info("Processing daily uptime reset")

	if err := s.DailyReset(ctx); err != nil {
		zap.L().Error("daily uptime reset failed", zap.Error(err))
		return err
	}

	zap.L().Info("Finished daily uptime reset", zap.Duration("duration", time.Since(start)))
	return nil
}

type Scheduler struct {
	enqueuer pkgtask.Enqueuer
}

func NewScheduler(enqueuer pkgtask.Enqueuer) *Scheduler {
	return &Scheduler{enqueuer: enqueuer}
}

func StartScheduler(lc fx.Lifecycle, s *Scheduler) {
	// the OnStart context only lives for the start timeout, so the loop
	// runs on its own context cancelled at shutdown
	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go s.run(runCtx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

// run enqueues the reset job at every 00:00 UTC boundary.
func (s *Scheduler) run(ctx context.Context) {
	zap.L().Info("[Scheduler] started daily uptime reset scheduler")

	for {
		now := time.Now().UTC()
		next := nextRunTime(now, 0, 0)

		sleepDuration := next.Sub(now)
		zap.L().Info("[Scheduler] next run scheduled",
			zap.Time("next_run", next),
			zap.Duration("sleep_for", sleepDuration),
		)
		select {
		case <-time.After(sleepDuration):
			if _, err := s.enqueuer.Enqueue(
				asynq.NewTask(taskname.UptimeDailyReset, nil),
				asynq.Queue("low"),
			); err != nil {
				zap.L().Error("[Scheduler] failed to enqueue daily reset", zap.Error(err))
			}
		case <-ctx.Done():
			zap.L().Warn("[Scheduler] stopped")
			return
		}
	}
}

func nextRunTime(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
