package referral

import (
	"context"
	"fmt"
	"time"

	"swarmrewards/pkg/errutil"
	"swarmrewards/pkg/repository"
	"swarmrewards/services/account"
	"swarmrewards/services/earning"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	edge repository.Repository[ReferralEdge]

	accounts *account.Service
	earnings *earning.Service
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node

	Accounts *account.Service
	Earnings *earning.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,

		edge: repository.ProvideStore[ReferralEdge](p.DB),

		accounts: p.Accounts,
		earnings: p.Earnings,
	}
}

func (s *Service) VerifyCode(ctx context.Context, code string) (*VerifyResult, error) {
	referrer, err := s.accounts.GetByReferralCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		return &VerifyResult{Valid: false}, nil
	}

	return &VerifyResult{
		Valid: true,
		Referrer: &Referrer{
			UserID:   referrer.UserID,
			Username: referrer.Username,
		},
	}, nil
}

// UseCode redeems a referral code for userID. The edge is immutable once
// created; the unique index on referred_id makes a second redemption fail
// regardless of which code it carries.
func (s *Service) UseCode(ctx context.Context, userID, code string) (*ReferralEdge, error) {
	referrer, err := s.accounts.GetByReferralCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		return nil, errutil.BadRequest("invalid referral code", nil)
	}

	if referrer.UserID == userID {
		return nil, errutil.BadRequest("cannot use your own referral code", nil)
	}

	exist, err := s.edge.FindOne(ctx, &ReferralEdge{ReferredID: userID})
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, errutil.Conflict("user already referred", nil)
	}

	now := time.Now()
	edge := &ReferralEdge{
		ID:          s.node.Generate().String(),
		ReferrerID:  referrer.UserID,
		ReferredID:  userID,
		Code:        code,
		Status:      "active",
		BonusAmount: SignupBonus,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.edge.Create(ctx, edge); err != nil {
		return nil, err
	}

	if _, err := s.earnings.Track(ctx, earning.TrackParams{
		UserID:      referrer.UserID,
		Amount:      SignupBonus,
		Source:      earning.SourceReferralSignup,
		ReferenceID: fmt.Sprintf("referral:signup:%s", userID),
		Description: "Referral signup bonus",
	}); err != nil {
		zap.L().Error("failed to credit signup bonus",
			zap.String("referrer_id", referrer.UserID),
			zap.String("referred_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	if _, err := s.earnings.Track(ctx, earning.TrackParams{
		UserID:      userID,
		Amount:      WelcomeBonus,
		Source:      earning.SourceReferralWelcome,
		ReferenceID: fmt.Sprintf("referral:welcome:%s", userID),
		Description: "Referral welcome bonus",
	}); err != nil {
		zap.L().Error("failed to credit welcome bonus",
			zap.String("referred_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	return edge, nil
}

// DistributeRoyalty walks up to three ancestor hops from the earner and
// credits each a percentage of the task amount. The walk stops at the first
// user without a referrer. Each tier is its own unit of work: a failure
// aborts deeper tiers but earlier credits stand.
func (s *Service) DistributeRoyalty(ctx context.Context, userID, taskID string, amount float64) error {
	if amount <= 0 {
		return errutil.BadRequest("amount must be > 0", nil)
	}

	sources := [3]string{earning.SourceRoyaltyTier1, earning.SourceRoyaltyTier2, earning.SourceRoyaltyTier3}

	current := userID
	for tier := 1; tier <= len(royaltyRates); tier++ {
		edge, err := s.edge.FindOne(ctx, &ReferralEdge{ReferredID: current})
		if err != nil {
			return err
		}
		if edge == nil {
			break
		}

		share := amount * royaltyRates[tier-1]
		meta := datatypes.JSON(fmt.Sprintf(`{"triggered_by":%q,"task_id":%q,"tier":%d}`, userID, taskID, tier))

		if _, err := s.earnings.Track(ctx, earning.TrackParams{
			UserID:      edge.ReferrerID,
			Amount:      share,
			Source:      sources[tier-1],
			ReferenceID: fmt.Sprintf("royalty:%s:t%d", taskID, tier),
			Description: fmt.Sprintf("Tier %d referral royalty", tier),
			Metadata:    meta,
		}); err != nil {
			zap.L().Error("royalty tier credit failed",
				zap.String("task_id", taskID),
				zap.Int("tier", tier),
				zap.String("ancestor_id", edge.ReferrerID),
				zap.Error(err),
			)
			return err
		}

		current = edge.ReferrerID
	}

	return nil
}

func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	count, err := s.edge.Count(ctx, &ReferralEdge{ReferrerID: userID})
	if err != nil {
		return nil, err
	}

	var earned float64
	if err := s.db.WithContext(ctx).Model(&earning.EarningRecord{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND source IN ?", userID, []string{
			earning.SourceReferralSignup,
			earning.SourceRoyaltyTier1,
			earning.SourceRoyaltyTier2,
			earning.SourceRoyaltyTier3,
		}).
		Scan(&earned).Error; err != nil {
		return nil, err
	}

	return &Stats{
		TotalReferrals: count,
		TotalEarned:    earned,
	}, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*ReferralEdge, error) {
	return s.edge.Find(ctx, &ReferralEdge{ReferrerID: userID})
}
