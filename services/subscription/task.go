package subscription

import (
	"context"
	"time"

	"swarmrewards/pkg/config"
	pkgtask "swarmrewards/pkg/task"
	"swarmrewards/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func RegisterWorker(mux *asynq.ServeMux, svc *Service) {
	mux.HandleFunc(taskname.PlanSync, svc.HandlePlanSyncTask)
}

func (s *Service) HandlePlanSyncTask(ctx context.Context, t *asynq.Task) error {
	start := time.Now()
	zap.L().Info("Processing plan sync")

	if err := s.SyncPlans(ctx); err != nil {
		zap.L().Error("plan sync failed", zap.Error(err))
		return err
	}

	zap.L().Info("Finished plan sync", zap.Duration("duration", time.Since(start)))
	return nil
}

type Scheduler struct {
	enqueuer pkgtask.Enqueuer
	every    time.Duration
}

func NewScheduler(enqueuer pkgtask.Enqueuer, cfg *config.Config) *Scheduler {
	every := cfg.Worker.PlanSyncEvery
	if every <= 0 {
		every = 15 * time.Minute
	}
	return &Scheduler{enqueuer: enqueuer, every: every}
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

func (s *Scheduler) run(ctx context.Context) {
	zap.L().Info("[Scheduler] started plan sync scheduler", zap.Duration("every", s.every))

	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.enqueuer.Enqueue(
				asynq.NewTask(taskname.PlanSync, nil),
				asynq.Queue("low"),
			); err != nil {
				zap.L().Error("[Scheduler] failed to enqueue plan sync", zap.Error(err))
			}
		case <-ctx.Done():
			zap.L().Warn("[Scheduler] stopped")
			return
		}
	}
}
