package earning

import (
	"context"
	"encoding/json"
	"time"

	"swarmrewards/pkg/db/pagination"
	"swarmrewards/pkg/errutil"
	"swarmrewards/pkg/rediskey"
	"swarmrewards/pkg/repository"
	"swarmrewards/services/account"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const leaderboardCacheTTL = 30 * time.Second

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
	rdb  *redis.Client

	earning repository.Repository[EarningRecord]
	total   repository.Repository[LedgerTotal]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node

	Redis *redis.Client `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,
		rdb:  p.Redis,

		earning: repository.ProvideStore[EarningRecord](p.DB),
		total:   repository.ProvideStore[LedgerTotal](p.DB),
	}
}

type TrackParams struct {
	UserID      string
	Amount      float64
	Source      string
	ReferenceID string
	Description string
	Metadata    datatypes.JSON
}

// Track records a pending earning and bumps the owner's unclaimed balance.
// A reference_id that already exists makes the call a no-op, so producers
// can retry safely.
func (s *Service) Track(ctx context.Context, p TrackParams) (bool, error) {
	if p.Amount <= 0 {
		return false, errutil.BadRequest("amount must be > 0", nil)
	}
	if p.UserID == "" {
		return false, errutil.BadRequest("user_id is required", nil)
	}

	if p.ReferenceID != "" {
		exist, err := s.earning.FindOne(ctx, &EarningRecord{ReferenceID: p.ReferenceID})
		if err != nil {
			return false, err
		}
		if exist != nil {
			zap.L().Warn("reference_id already tracked",
				zap.String("reference_id", p.ReferenceID),
				zap.String("user_id", p.UserID),
			)
			return false, nil
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		record := &EarningRecord{
			ID:          s.node.Generate().String(),
			UserID:      p.UserID,
			Amount:      p.Amount,
			Source:      p.Source,
			ReferenceID: p.ReferenceID,
			Description: p.Description,
			Metadata:    p.Metadata,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		res := tx.Model(&account.Account{}).
			Where("user_id = ?", p.UserID).
			Updates(map[string]any{
				"unclaimed_reward": gorm.Expr("unclaimed_reward + ?", p.Amount),
				"updated_at":       now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errutil.NotFound("account not found", nil)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Claim moves the entire unclaimed balance into the running total. The
// compare-and-set on unclaimed_reward is the only guard against concurrent
// claims; a lost race is a zero-amount outcome, not an error.
func (s *Service) Claim(ctx context.Context, userID string) (*ClaimResult, error) {
	var acct account.Account
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&acct).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errutil.NotFound("account not found", nil)
		}
		return nil, err
	}

	amount := acct.UnclaimedReward
	if amount <= 0 {
		total, err := s.TotalEarnings(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &ClaimResult{ClaimedAmount: 0, NewTotal: total}, nil
	}

	res := s.db.WithContext(ctx).Model(&account.Account{}).
		Where("user_id = ? AND unclaimed_reward = ?", userID, amount).
		Updates(map[string]any{
			"unclaimed_reward": 0,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// a concurrent claim won the race
		zap.L().Info("claim lost compare-and-set", zap.String("user_id", userID))
		total, err := s.TotalEarnings(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &ClaimResult{ClaimedAmount: 0, NewTotal: total}, nil
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_amount": gorm.Expr("total_amount + ?", amount),
			"updated_at":   now,
		}),
	}).Create(&LedgerTotal{
		ID:          s.node.Generate().String(),
		UserID:      userID,
		TotalAmount: amount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}).Error; err != nil {
		zap.L().Error("failed to upsert ledger total",
			zap.String("user_id", userID),
			zap.Float64("amount", amount),
			zap.Error(err),
		)
		return nil, err
	}

	// best effort, the balance move above is already committed
	if err := s.db.WithContext(ctx).Model(&EarningRecord{}).
		Where("user_id = ? AND is_claimed = ?", userID, false).
		Updates(map[string]any{"is_claimed": true, "updated_at": now}).Error; err != nil {
		zap.L().Warn("failed to mark earning records claimed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	total, err := s.TotalEarnings(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ClaimResult{ClaimedAmount: amount, NewTotal: total}, nil
}

// History pages through a user's earning records, newest first. The cursor
// encodes the created_at and id of the last record on the previous page.
func (s *Service) History(ctx context.Context, userID string, page pagination.Pagination) ([]*EarningRecord, *pagination.PageInfo, error) {
	limit := page.Limit
	if limit <= 0 {
		limit = 10
	}

	tx := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	if page.Cursor != "" {
		cursor, err := pagination.DecodeCursor(page.Cursor)
		if err != nil {
			return nil, nil, errutil.BadRequest("invalid cursor", err)
		}
		createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, nil, errutil.BadRequest("invalid cursor", err)
		}
		tx = tx.Where("created_at < ? OR (created_at = ? AND id < ?)", createdAt, createdAt, cursor.ID)
	}

	var records []*EarningRecord
	if err := tx.Find(&records).Error; err != nil {
		return nil, nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(records, int32(limit), func(r *EarningRecord) string {
		next, _ := pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: r.CreatedAt.Format(time.RFC3339Nano),
			ID:        r.ID,
		})
		return next
	})
	if len(records) > limit {
		records = records[:limit]
	}

	return records, pageInfo, nil
}

func (s *Service) TotalEarnings(ctx context.Context, userID string) (float64, error) {
	total, err := s.total.FindOne(ctx, &LedgerTotal{UserID: userID})
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return total.TotalAmount, nil
}

// Rank is count of users with a strictly greater total, plus one.
func (s *Service) Rank(ctx context.Context, userID string) (int64, error) {
	mine, err := s.TotalEarnings(ctx, userID)
	if err != nil {
		return 0, err
	}

	var greater int64
	if err := s.db.WithContext(ctx).Model(&LedgerTotal{}).
		Where("total_amount > ?", mine).
		Count(&greater).Error; err != nil {
		return 0, err
	}

	return greater + 1, nil
}

func (s *Service) Leaderboard(ctx context.Context, limit int, currentUserID string) (*LeaderboardResult, error) {
	if limit <= 0 {
		limit = 10
	}

	entries, err := s.topEntries(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := &LeaderboardResult{Entries: entries}

	inTop := false
	for i := range result.Entries {
		if result.Entries[i].UserID == currentUserID {
			result.Entries[i].IsCurrentUser = true
			entry := result.Entries[i]
			result.CurrentUser = &entry
			inTop = true
		}
	}

	if !inTop && currentUserID != "" {
		rank, err := s.Rank(ctx, currentUserID)
		if err != nil {
			return nil, err
		}
		mine, err := s.TotalEarnings(ctx, currentUserID)
		if err != nil {
			return nil, err
		}
		result.CurrentUser = &LeaderboardEntry{
			Rank:          int(rank),
			UserID:        currentUserID,
			TotalAmount:   mine,
			IsCurrentUser: true,
		}
	}

	return result, nil
}

func (s *Service) topEntries(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	cacheKey := rediskey.BuildLeaderboardKey("top")

	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []LeaderboardEntry
			if err := json.Unmarshal(raw, &cached); err == nil && len(cached) >= limit {
				return cached[:limit], nil
			}
		}
	}

	var entries []LeaderboardEntry
	if err := s.db.WithContext(ctx).Table("ledger_totals").
		Select("ledger_totals.user_id, accounts.username, ledger_totals.total_amount").
		Joins("LEFT JOIN accounts ON accounts.user_id = ledger_totals.user_id").
		Order("ledger_totals.total_amount DESC, ledger_totals.user_id ASC").
		Limit(limit).
		Scan(&entries).Error; err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].Rank = i + 1
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(entries); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, raw, leaderboardCacheTTL).Err(); err != nil {
				zap.L().Warn("failed to cache leaderboard", zap.Error(err))
			}
		}
	}

	return entries, nil
}
