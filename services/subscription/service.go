package subscription

import (
	"context"
	"time"

	"swarmrewards/pkg/errutil"
	"swarmrewards/services/account"
	"swarmrewards/services/device"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// window of account activity the sync worker reconciles
	activeWindow  = 2 * time.Hour
	syncBatchSize = 50
)

type Service struct {
	db *gorm.DB

	accounts *account.Service
	devices  *device.Service
	source   PlanSource
}

type ServiceParams struct {
	fx.In
	DB *gorm.DB

	Accounts *account.Service
	Devices  *device.Service

	Source PlanSource `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db: p.DB,

		accounts: p.Accounts,
		devices:  p.Devices,
		source:   p.Source,
	}
}

func (s *Service) Current(ctx context.Context, userID string) (*Subscription, error) {
	acct, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan := account.NormalizePlan(acct.Plan)
	limits := account.LimitsFor(plan)

	return &Subscription{
		PlanName:         string(plan),
		Status:           "active",
		MaxUptime:        limits.MaxUptimeSeconds,
		MaxDailyEarnings: limits.MaxDailyEarnings,
	}, nil
}

// Upgrade moves the account onto a new plan and synchronously restores
// every owned device to the new ceiling.
func (s *Service) Upgrade(ctx context.Context, userID, rawPlan string) (*Subscription, error) {
	switch rawPlan {
	case string(account.PlanFree), string(account.PlanBasic),
		string(account.PlanUltimate), string(account.PlanEnterprise),
		"elite", "pro":
	default:
		return nil, errutil.ValidationFailed("unknown plan", nil)
	}

	plan := account.NormalizePlan(rawPlan)

	res := s.db.WithContext(ctx).Model(&account.Account{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"plan":       string(plan),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errutil.NotFound("account not found", nil)
	}

	reset, err := s.devices.ResetToTierCeiling(ctx, userID, plan)
	if err != nil {
		zap.L().Error("failed to reset devices after upgrade",
			zap.String("user_id", userID),
			zap.String("plan", string(plan)),
			zap.Error(err),
		)
		return nil, err
	}

	zap.L().Info("plan upgraded",
		zap.String("user_id", userID),
		zap.String("plan", string(plan)),
		zap.Int64("devices_reset", reset),
	)

	limits := account.LimitsFor(plan)
	return &Subscription{
		PlanName:         string(plan),
		Status:           "active",
		MaxUptime:        limits.MaxUptimeSeconds,
		MaxDailyEarnings: limits.MaxDailyEarnings,
	}, nil
}

// SyncPlans reconciles recently active accounts against the plan source.
// One bad account is logged and skipped, the batch keeps going.
func (s *Service) SyncPlans(ctx context.Context) error {
	if s.source == nil {
		zap.L().Warn("no plan source configured, skipping plan sync")
		return nil
	}

	cutoff := time.Now().Add(-activeWindow)

	var accts []account.Account
	if err := s.db.WithContext(ctx).Model(&account.Account{}).
		Where("last_login_at > ?", cutoff).
		Limit(syncBatchSize).
		Find(&accts).Error; err != nil {
		return err
	}

	var synced, failed int
	for _, acct := range accts {
		want, err := s.source.PlanFor(ctx, acct.UserID)
		if err != nil {
			failed++
			zap.L().Error("plan source lookup failed",
				zap.String("user_id", acct.UserID),
				zap.Error(err),
			)
			continue
		}

		if want == account.NormalizePlan(acct.Plan) {
			continue
		}

		if _, err := s.Upgrade(ctx, acct.UserID, string(want)); err != nil {
			failed++
			zap.L().Error("plan sync update failed",
				zap.String("user_id", acct.UserID),
				zap.String("plan", string(want)),
				zap.Error(err),
			)
			continue
		}
		synced++
	}

	zap.L().Info("plan sync finished",
		zap.Int("accounts_checked", len(accts)),
		zap.Int("accounts_synced", synced),
		zap.Int("accounts_failed", failed),
	)
	return nil
}
