package account

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"swarmrewards/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	db := testutil.NewTestDB(t, &Account{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{DB: db, Node: node})
}

func TestNormalizePlan(t *testing.T) {
	require.Equal(t, PlanFree, NormalizePlan("free"))
	require.Equal(t, PlanBasic, NormalizePlan("basic"))
	require.Equal(t, PlanUltimate, NormalizePlan("ultimate"))
	require.Equal(t, PlanEnterprise, NormalizePlan("enterprise"))

	// legacy tiers map onto their successors
	require.Equal(t, PlanEnterprise, NormalizePlan("elite"))
	require.Equal(t, PlanUltimate, NormalizePlan("pro"))

	require.Equal(t, PlanFree, NormalizePlan(""))
	require.Equal(t, PlanFree, NormalizePlan("platinum"))
	require.Equal(t, PlanEnterprise, NormalizePlan(" Elite "))
}

func TestLimitsFor(t *testing.T) {
	require.Equal(t, int64(14400), LimitsFor(PlanFree).MaxUptimeSeconds)
	require.Equal(t, int64(36000), LimitsFor(PlanBasic).MaxUptimeSeconds)
	require.Equal(t, int64(64800), LimitsFor(PlanUltimate).MaxUptimeSeconds)
	require.Equal(t, int64(86400), LimitsFor(PlanEnterprise).MaxUptimeSeconds)
	require.Equal(t, float64(600), LimitsFor(PlanEnterprise).MaxDailyEarnings)

	require.Equal(t, int64(14400), LimitsFor(Plan("bogus")).MaxUptimeSeconds)
}

func TestCreateAssignsReferralCode(t *testing.T) {
	svc := newTestService(t)

	acct, err := svc.Create(context.Background(), CreateParams{UserID: "u1", Username: "alice"})
	require.NoError(t, err)
	require.Equal(t, "u1", acct.UserID)
	require.Equal(t, string(PlanFree), acct.Plan)

	// codes are shared in signup forms, so they stay short
	require.Len(t, acct.ReferralCode, 8)
	require.Regexp(t, "^[A-HJ-NP-Z2-9]+$", acct.ReferralCode)
}

func TestCreateSurfacesLookupFailure(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.db.Callback().Query().Before("gorm:query").Register("fail_lookup", func(tx *gorm.DB) {
		if tx.Statement.Table == "accounts" {
			tx.AddError(errors.New("store unavailable"))
		}
	}))

	_, err := svc.Create(context.Background(), CreateParams{UserID: "u1"})
	require.Error(t, err)

	require.NoError(t, svc.db.Callback().Query().Remove("fail_lookup"))

	var count int64
	require.NoError(t, svc.db.Model(&Account{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateDuplicateUser(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), CreateParams{UserID: "u1"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateParams{UserID: "u1"})
	require.Error(t, err)
}

func TestCreateRequiresUserID(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), CreateParams{Username: "no-id"})
	require.Error(t, err)
}

func TestGetAndTouchLogin(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), CreateParams{UserID: "u1", Username: "alice"})
	require.NoError(t, err)

	acct, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Nil(t, acct.LastLoginAt)

	require.NoError(t, svc.TouchLogin(context.Background(), "u1"))

	acct, err = svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, acct.LastLoginAt)

	_, err = svc.Get(context.Background(), "ghost")
	require.Error(t, err)
}
