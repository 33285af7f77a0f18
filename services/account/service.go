package account

import (
	"context"
	"time"

	"swarmrewards/pkg/errutil"
	"swarmrewards/pkg/repository"
	"swarmrewards/pkg/sequence"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
	seq  sequence.Generator

	account repository.Repository[Account]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node

	Sequence sequence.Generator `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,
		seq:  p.Sequence,

		account: repository.ProvideStore[Account](p.DB),
	}
}

func (s *Service) Get(ctx context.Context, userID string) (*Account, error) {
	acct, err := s.account.FindOne(ctx, &Account{UserID: userID})
	if err != nil {
		zap.L().Error("failed to query account", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if acct == nil {
		return nil, errutil.NotFound("account not found", nil)
	}
	return acct, nil
}

func (s *Service) GetByReferralCode(ctx context.Context, code string) (*Account, error) {
	acct, err := s.account.FindOne(ctx, &Account{ReferralCode: code})
	if err != nil {
		zap.L().Error("failed to query account by referral code", zap.Error(err))
		return nil, err
	}
	return acct, nil
}

type CreateParams struct {
	UserID   string
	Username string
}

func (s *Service) Create(ctx context.Context, p CreateParams) (*Account, error) {
	if p.UserID == "" {
		return nil, errutil.BadRequest("user_id is required", nil)
	}

	exist, err := s.account.FindOne(ctx, &Account{UserID: p.UserID})
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, errutil.Conflict("account already exists", nil)
	}

	code, err := s.nextReferralCode(ctx)
	if err != nil {
		zap.L().Error("failed to generate referral code", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	acct := &Account{
		ID:           s.node.Generate().String(),
		UserID:       p.UserID,
		Username:     p.Username,
		Plan:         string(PlanFree),
		ReferralCode: code,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.account.Create(ctx, acct); err != nil {
		return nil, err
	}

	return acct, nil
}

// TouchLogin records account activity. The plan sync worker uses
// last_login_at to pick its active-user window.
func (s *Service) TouchLogin(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Model(&Account{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"last_login_at": time.Now(),
			"updated_at":    time.Now(),
		}).Error
}

func (s *Service) nextReferralCode(ctx context.Context) (string, error) {
	if s.seq != nil {
		return s.seq.NextReferralCode(ctx)
	}
	// no redis in play; the unique index on referral_code backstops the
	// improbable collision
	return sequence.RandomCode(8)
}
