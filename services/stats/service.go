package stats

import (
	"context"
	"math"
	"time"

	"swarmrewards/pkg/errutil"
	"swarmrewards/services/account"
	"swarmrewards/services/earning"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db *gorm.DB
}

type ServiceParams struct {
	fx.In
	DB *gorm.DB
}

func NewService(p ServiceParams) *Service {
	return &Service{db: p.DB}
}

// Increment bumps a global counter with a single atomic upsert. Two callers
// racing on the same stat_id both land their delta.
func (s *Service) Increment(ctx context.Context, statID string, delta int64) error {
	if statID == "" {
		return errutil.BadRequest("stat_id is required", nil)
	}
	if delta <= 0 {
		return nil
	}

	now := time.Now()
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stat_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"count":      gorm.Expr("count + ?", delta),
			"updated_at": now,
		}),
	}).Create(&GlobalStat{
		StatID:    statID,
		Count:     delta,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
}

// RecordTaskCounts applies a node's reported per-type counts to the global
// counters. Each counter is independent; a failed one is logged and the
// rest still land.
func (s *Service) RecordTaskCounts(ctx context.Context, counts TaskCounts) {
	updates := []struct {
		statID string
		delta  int64
	}{
		{StatTotal3DTasks, counts.ThreeD},
		{StatTotalVideoTasks, counts.Video},
		{StatTotalTextTasks, counts.Text},
		{StatTotalImageTasks, counts.Image},
	}

	for _, u := range updates {
		if u.delta <= 0 {
			continue
		}
		if err := s.Increment(ctx, u.statID, u.delta); err != nil {
			zap.L().Error("failed to bump global stat",
				zap.String("stat_id", u.statID),
				zap.Int64("delta", u.delta),
				zap.Error(err),
			)
		}
	}
}

func (s *Service) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	var globalSP float64
	if err := s.db.WithContext(ctx).Model(&earning.LedgerTotal{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&globalSP).Error; err != nil {
		return nil, err
	}

	var totalUsers int64
	if err := s.db.WithContext(ctx).Model(&account.Account{}).
		Count(&totalUsers).Error; err != nil {
		return nil, err
	}

	var counters []GlobalStat
	if err := s.db.WithContext(ctx).
		Where("stat_id IN ?", []string{
			StatTotal3DTasks,
			StatTotalVideoTasks,
			StatTotalTextTasks,
			StatTotalImageTasks,
		}).
		Find(&counters).Error; err != nil {
		return nil, err
	}

	var compute float64
	var totalTasks int64
	for _, stat := range counters {
		totalTasks += stat.Count
		compute += float64(stat.Count) * computeMultipliers[stat.StatID]
	}

	return &Snapshot{
		GlobalSP:               round2(globalSP),
		TotalUsers:             totalUsers,
		GlobalComputeGenerated: round2(compute),
		TotalTasks:             totalTasks,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
