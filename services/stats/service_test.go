package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"swarmrewards/services/account"
	"swarmrewards/services/earning"
	"swarmrewards/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t, &account.Account{}, &earning.LedgerTotal{}, &GlobalStat{})
	return NewService(ServiceParams{DB: db}), db
}

func TestIncrementUpserts(t *testing.T) {
	svc, db := newTestService(t)

	require.NoError(t, svc.Increment(context.Background(), StatTotalTextTasks, 5))
	require.NoError(t, svc.Increment(context.Background(), StatTotalTextTasks, 3))

	var stat GlobalStat
	require.NoError(t, db.Where("stat_id = ?", StatTotalTextTasks).First(&stat).Error)
	require.Equal(t, int64(8), stat.Count)
}

func TestIncrementIgnoresNonPositiveDelta(t *testing.T) {
	svc, db := newTestService(t)

	require.NoError(t, svc.Increment(context.Background(), StatTotalTextTasks, 0))
	require.NoError(t, svc.Increment(context.Background(), StatTotalTextTasks, -3))

	var count int64
	require.NoError(t, db.Model(&GlobalStat{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestRecordTaskCounts(t *testing.T) {
	svc, db := newTestService(t)

	svc.RecordTaskCounts(context.Background(), TaskCounts{
		ThreeD: 2,
		Video:  1,
		Text:   10,
	})

	var stat GlobalStat
	require.NoError(t, db.Where("stat_id = ?", StatTotal3DTasks).First(&stat).Error)
	require.Equal(t, int64(2), stat.Count)
	stat = GlobalStat{}
	require.NoError(t, db.Where("stat_id = ?", StatTotalVideoTasks).First(&stat).Error)
	require.Equal(t, int64(1), stat.Count)
	stat = GlobalStat{}
	require.NoError(t, db.Where("stat_id = ?", StatTotalTextTasks).First(&stat).Error)
	require.Equal(t, int64(10), stat.Count)

	stat = GlobalStat{}
	err := db.Where("stat_id = ?", StatTotalImageTasks).First(&stat).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetSnapshot(t *testing.T) {
	svc, db := newTestService(t)

	now := time.Now()
	for i, total := range []float64{100, 50.5} {
		require.NoError(t, db.Create(&earning.LedgerTotal{
			ID:          string(rune('a' + i)),
			UserID:      string(rune('a' + i)),
			TotalAmount: total,
			CreatedAt:   now,
			UpdatedAt:   now,
		}).Error)
		require.NoError(t, db.Create(&account.Account{
			ID:           "acct-" + string(rune('a'+i)),
			UserID:       string(rune('a' + i)),
			ReferralCode: "REF-" + string(rune('a'+i)),
			CreatedAt:    now,
			UpdatedAt:    now,
		}).Error)
	}

	require.NoError(t, svc.Increment(context.Background(), StatTotalTextTasks, 10))
	require.NoError(t, svc.Increment(context.Background(), StatTotalVideoTasks, 5))

	snapshot, err := svc.GetSnapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 150.5, snapshot.GlobalSP)
	require.Equal(t, int64(2), snapshot.TotalUsers)
	require.Equal(t, int64(15), snapshot.TotalTasks)
	// 10 text * 0.12 + 5 video * 1.6
	require.Equal(t, 9.2, snapshot.GlobalComputeGenerated)
}
