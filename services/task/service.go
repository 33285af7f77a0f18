package task

import (
	"context"
	"fmt"
	"math"
	"time"

	"swarmrewards/pkg/errutil"
	pkgtask "swarmrewards/pkg/task"
	"swarmrewards/services/account"
	"swarmrewards/services/earning"
	"swarmrewards/services/referral"
	"swarmrewards/services/stats"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	earnings *earning.Service
	stats    *stats.Service
	enqueuer pkgtask.Enqueuer
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node

	Earnings *earning.Service
	Stats    *stats.Service

	Enqueuer pkgtask.Enqueuer `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,

		earnings: p.Earnings,
		stats:    p.Stats,
		enqueuer: p.Enqueuer,
	}
}

// Complete rewards a finished compute task. Validation rejects non-integer
// or out-of-range amounts before anything is written; a rejected amount
// above the ceiling is logged as a possible forged report.
func (s *Service) Complete(ctx context.Context, p CompleteParams) (*CompleteResult, error) {
	if p.TaskID == "" {
		return nil, errutil.ValidationFailed("task_id is required", nil)
	}
	if p.Amount != math.Trunc(p.Amount) || p.Amount < 1 {
		return nil, errutil.ValidationFailed("amount must be a positive integer", nil)
	}
	if p.Amount > MaxRewardPerTask {
		zap.L().Warn("task reward exceeds ceiling, possible forged report",
			zap.String("user_id", p.UserID),
			zap.String("task_id", p.TaskID),
			zap.Float64("amount", p.Amount),
		)
		return nil, errutil.ValidationFailed(fmt.Sprintf("amount must not exceed %d", MaxRewardPerTask), nil)
	}

	meta := datatypes.JSON(fmt.Sprintf(
		`{"task_id":%q,"task_type":%q,"hardware_tier":%q,"multiplier":%g}`,
		p.TaskID, p.TaskType, p.HardwareTier, p.Multiplier,
	))

	created, err := s.earnings.Track(ctx, earning.TrackParams{
		UserID:      p.UserID,
		Amount:      p.Amount,
		Source:      earning.SourceTask,
		ReferenceID: fmt.Sprintf("task:%s", p.TaskID),
		Description: fmt.Sprintf("Task completion: %s", orUnknown(p.TaskType)),
		Metadata:    meta,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, errutil.Conflict("task already rewarded", nil)
	}

	res := s.db.WithContext(ctx).Model(&account.Account{}).
		Where("user_id = ?", p.UserID).
		Updates(map[string]any{
			"tasks_completed": gorm.Expr("tasks_completed + 1"),
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}

	if statID := stats.StatIDForTaskType(p.TaskType); statID != "" {
		if err := s.stats.Increment(ctx, statID, 1); err != nil {
			zap.L().Error("failed to bump task counter",
				zap.String("stat_id", statID),
				zap.Error(err),
			)
		}
	}

	s.enqueueRoyalty(p)

	var acct account.Account
	if err := s.db.WithContext(ctx).Where("user_id = ?", p.UserID).First(&acct).Error; err != nil {
		return nil, err
	}

	return &CompleteResult{
		UnclaimedRewardDelta: p.Amount,
		TotalUnclaimed:       acct.UnclaimedReward,
		TaskCount:            acct.TasksCompleted,
	}, nil
}

// enqueueRoyalty hands the cascade to the worker. The reward above is
// already committed, so a queue failure only costs the ancestors their
// royalty and is logged, never propagated.
func (s *Service) enqueueRoyalty(p CompleteParams) {
	if s.enqueuer == nil {
		zap.L().Warn("no enqueuer configured, skipping royalty cascade",
			zap.String("task_id", p.TaskID),
		)
		return
	}

	t, err := referral.NewRoyaltyTask(referral.RoyaltyPayload{
		UserID: p.UserID,
		TaskID: p.TaskID,
		Amount: p.Amount,
	})
	if err != nil {
		zap.L().Error("failed to build royalty task", zap.Error(err))
		return
	}

	if _, err := s.enqueuer.Enqueue(t, asynq.Queue("default"), asynq.MaxRetry(5)); err != nil {
		zap.L().Error("failed to enqueue royalty cascade",
			zap.String("task_id", p.TaskID),
			zap.Error(err),
		)
	}
}

func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	var acct account.Account
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&acct).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errutil.NotFound("account not found", nil)
		}
		return nil, err
	}

	var earned float64
	if err := s.db.WithContext(ctx).Model(&earning.EarningRecord{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND source = ?", userID, earning.SourceTask).
		Scan(&earned).Error; err != nil {
		return nil, err
	}

	return &Stats{
		TotalTasks:    acct.TasksCompleted,
		TotalEarnings: earned,
	}, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
