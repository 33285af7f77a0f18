package referral

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"swarmrewards/pkg/errutil"
	"swarmrewards/services/account"
	"swarmrewards/services/earning"
	"swarmrewards/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t, &account.Account{}, &earning.EarningRecord{}, &earning.LedgerTotal{}, &ReferralEdge{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	accounts := account.NewService(account.ServiceParams{DB: db, Node: node})
	earnings := earning.NewService(earning.ServiceParams{DB: db, Node: node})

	return NewService(ServiceParams{
		DB:       db,
		Node:     node,
		Accounts: accounts,
		Earnings: earnings,
	}), db
}

func seedAccount(t *testing.T, db *gorm.DB, userID, code string) {
	t.Helper()

	now := time.Now()
	require.NoError(t, db.Create(&account.Account{
		ID:           userID,
		UserID:       userID,
		Username:     "user-" + userID,
		Plan:         string(account.PlanFree),
		ReferralCode: code,
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error)
}

func statusOf(t *testing.T, err error) errutil.CoreStatus {
	t.Helper()

	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	return be.Code
}

func TestUseCodeSurfacesEdgeLookupFailure(t *testing.T) {
	svc, db := newTestService(t)
	seedAccount(t, db, "r1", "CODE-R1")
	seedAccount(t, db, "u1", "CODE-U1")

	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("fail_edges", func(tx *gorm.DB) {
		if tx.Statement.Table == "referral_edges" {
			tx.AddError(errors.New("store unavailable"))
		}
	}))

	_, err := svc.UseCode(context.Background(), "u1", "CODE-R1")
	require.Error(t, err)

	require.NoError(t, db.Callback().Query().Remove("fail_edges"))

	var edges int64
	require.NoError(t, db.Model(&ReferralEdge{}).Count(&edges).Error)
	require.Zero(t, edges)

	var records int64
	require.NoError(t, db.Model(&earning.EarningRecord{}).Count(&records).Error)
	require.Zero(t, records)
}

func TestVerifyCode(t *testing.T) {
	svc, db := newTestService(t)
	seedAccount(t, db, "r1", "CODE-R1")

	result, err := svc.VerifyCode(context.Background(), "CODE-R1")
	require.NoError(t, err)
	require.True(t, result.Valid)
	require.Equal(t, "r1", result.Referrer.UserID)
	require.Equal(t, "user-r1", result.Referrer.Username)

	result, err = svc.VerifyCode(context.Background(), "NO-SUCH")
	require.NoError(t, err)
	require.False(t, result.Valid)
	require.Nil(t, result.Referrer)
}

func TestUseCodeCreditsBothSides(t *testing.T) {
	svc, db := newTestService(t)
	seedAccount(t, db, "r1", "CODE-R1")
	seedAccount(t, db, "u1", "CODE-U1")

	edge, err := svc.UseCode(context.Background(), "u1", "CODE-R1")
	require.NoError(t, err)
	require.Equal(t, "r1", edge.ReferrerID)
	require.Equal(t, "u1", edge.ReferredID)
	require.Equal(t, "active", edge.Status)
	require.Equal(t, SignupBonus, edge.BonusAmount)

	var referrer, referred account.Account
	require.NoError(t, db.Where("user_id = ?", "r1").First(&referrer).Error)
	require.NoError(t, db.Where("user_id = ?", "u1").First(&referred).Error)
	require.Equal(t, SignupBonus, referrer.UnclaimedReward)
	require.Equal(t, WelcomeBonus, referred.UnclaimedReward)

	var signup, welcome int64
	require.NoError(t, db.Model(&earning.EarningRecord{}).
		Where("user_id = ? AND source = ?", "r1", earning.SourceReferralSignup).
		Count(&signup).Error)
	require.NoError(t, db.Model(&earning.EarningRecord{}).
		Where("user_id = ? AND source = ?", "u1", earning.SourceReferralWelcome).
		Count(&welcome).Error)
	require.Equal(t, int64(1), signup)
	require.Equal(t, int64(1), welcome)
}

func TestUseCodeRejectsSelfReferral(t *testing.T) {
	svc, db := newTestService(t)
	seedAccount(t, db, "u1", "CODE-U1")

	_, err := svc.UseCode(context.Background(), "u1", "CODE-U1")
	require.Error(t, err)
	require.Equal(t, errutil.StatusBadRequest, statusOf(t, err))
}

func TestUseCodeRejectsSecondReferral(t *testing.T) {
	svc, db := newTestService(t)
	seedAccount(t, db, "r1", "CODE-R1")
	seedAccount(t, db, "r2", "CODE-R2")
	seedAccount(t, db, "u1", "CODE-U1")

	_, err := svc.UseCode(context.Background(), "u1", "CODE-R1")
	require.NoError(t, err)

	_, err = svc.UseCode(context.Background(), "u1", "CODE-R2")
	require.Error(t, err)
	require.Equal(t, errutil.StatusConflict, statusOf(t, err))

	var count int64
	require.NoError(t, db.Model(&ReferralEdge{}).Where("referred_id = ?", "u1").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestUseCodeInvalidCode(t *testing.T) {
	svc, db := newTestService(t)
	seedAccount(t, db, "u1", "CODE-U1")

	_, err := svc.UseCode(context.Background(), "u1", "NO-SUCH")
	require.Error(t, err)
	require.Equal(t, errutil.StatusBadRequest, statusOf(t, err))
}

// seedChain links each user to the previous one: users[0] referred users[1],
// users[1] referred users[2], and so on.
func seedChain(t *testing.T, db *gorm.DB, users ...string) {
	t.Helper()

	for i, id := range users {
		seedAccount(t, db, id, "CODE-"+id)
		if i > 0 {
			require.NoError(t, db.Create(&ReferralEdge{
				ID:          "edge-" + id,
				ReferrerID:  users[i-1],
				ReferredID:  id,
				Code:        "CODE-" + users[i-1],
				Status:      "active",
				BonusAmount: SignupBonus,
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}).Error)
		}
	}
}

func unclaimedOf(t *testing.T, db *gorm.DB, userID string) float64 {
	t.Helper()

	var acct account.Account
	require.NoError(t, db.Where("user_id = ?", userID).First(&acct).Error)
	return acct.UnclaimedReward
}

func TestDistributeRoyaltyThreeTiers(t *testing.T) {
	svc, db := newTestService(t)
	seedChain(t, db, "a", "b", "c", "d", "e")

	require.NoError(t, svc.DistributeRoyalty(context.Background(), "e", "task-1", 100))

	require.Equal(t, float64(10), unclaimedOf(t, db, "d"))
	require.Equal(t, float64(5), unclaimedOf(t, db, "c"))
	require.Equal(t, 2.5, unclaimedOf(t, db, "b"))
	// four hops up is beyond the cascade
	require.Equal(t, float64(0), unclaimedOf(t, db, "a"))
	require.Equal(t, float64(0), unclaimedOf(t, db, "e"))
}

func TestDistributeRoyaltyStopsAtMissingAncestor(t *testing.T) {
	svc, db := newTestService(t)
	seedChain(t, db, "r1", "u1")

	require.NoError(t, svc.DistributeRoyalty(context.Background(), "u1", "task-1", 100))

	require.Equal(t, float64(10), unclaimedOf(t, db, "r1"))

	var count int64
	require.NoError(t, db.Model(&earning.EarningRecord{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestDistributeRoyaltyRetryIsIdempotent(t *testing.T) {
	svc, db := newTestService(t)
	seedChain(t, db, "a", "b", "c", "d")

	require.NoError(t, svc.DistributeRoyalty(context.Background(), "d", "task-1", 100))
	require.NoError(t, svc.DistributeRoyalty(context.Background(), "d", "task-1", 100))

	require.Equal(t, float64(10), unclaimedOf(t, db, "c"))
	require.Equal(t, float64(5), unclaimedOf(t, db, "b"))
	require.Equal(t, 2.5, unclaimedOf(t, db, "a"))

	var count int64
	require.NoError(t, db.Model(&earning.EarningRecord{}).Count(&count).Error)
	require.Equal(t, int64(3), count)
}

func TestDistributeRoyaltyRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newTestService(t)

	require.Error(t, svc.DistributeRoyalty(context.Background(), "u1", "task-1", 0))
}

func TestStats(t *testing.T) {
	svc, db := newTestService(t)
	seedChain(t, db, "r1", "u1", "u2")
	seedAccount(t, db, "u3", "CODE-u3")
	require.NoError(t, db.Create(&ReferralEdge{
		ID: "edge-u3", ReferrerID: "r1", ReferredID: "u3",
		Code: "CODE-r1", Status: "active", BonusAmount: SignupBonus,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}).Error)

	require.NoError(t, svc.DistributeRoyalty(context.Background(), "u1", "task-1", 100))

	stats, err := svc.Stats(context.Background(), "r1")
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalReferrals)
	require.Equal(t, float64(10), stats.TotalEarned)
}
