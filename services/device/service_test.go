package device

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"swarmrewards/services/account"
	"swarmrewards/services/stats"
	"swarmrewards/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t, &account.Account{}, &Device{}, &stats.GlobalStat{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	statsSvc := stats.NewService(stats.ServiceParams{DB: db})

	return NewService(ServiceParams{DB: db, Node: node, Stats: statsSvc}), db
}

func seedAccount(t *testing.T, db *gorm.DB, userID, plan string) {
	t.Helper()

	now := time.Now()
	require.NoError(t, db.Create(&account.Account{
		ID:           userID,
		UserID:       userID,
		Username:     "user-" + userID,
		Plan:         plan,
		ReferralCode: "REF-" + userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error)
}

func seedDevice(t *testing.T, svc *Service, userID, deviceID string) *Device {
	t.Helper()

	dev, err := svc.Register(context.Background(), RegisterParams{
		UserID:     userID,
		DeviceID:   deviceID,
		DeviceName: "node-" + deviceID,
	})
	require.NoError(t, err)
	return dev
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService(t)

	dev := seedDevice(t, svc, "u1", "d1")
	require.Equal(t, "d1", dev.DeviceID)
	require.Equal(t, StatusOffline, dev.Status)
	require.Equal(t, int64(0), dev.UptimeSeconds)
}

func TestRegisterDuplicateDeviceID(t *testing.T) {
	svc, _ := newTestService(t)
	seedDevice(t, svc, "u1", "d1")

	_, err := svc.Register(context.Background(), RegisterParams{
		UserID: "u2", DeviceID: "d1", DeviceName: "other",
	})
	require.Error(t, err)
}

func TestRegisterSurfacesLookupFailure(t *testing.T) {
	svc, db := newTestService(t)

	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("fail_devices", func(tx *gorm.DB) {
		if tx.Statement.Table == "devices" {
			tx.AddError(errors.New("store unavailable"))
		}
	}))

	_, err := svc.Register(context.Background(), RegisterParams{
		UserID: "u1", DeviceID: "d1", DeviceName: "node-d1",
	})
	require.Error(t, err)

	require.NoError(t, db.Callback().Query().Remove("fail_devices"))

	var count int64
	require.NoError(t, db.Model(&Device{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestSetRemainingReplacesValue(t *testing.T) {
	svc, db := newTestService(t)
	seedDevice(t, svc, "u1", "d1")

	_, err := svc.SetRemaining(context.Background(), "u1", "d1", 14000, stats.TaskCounts{})
	require.NoError(t, err)

	result, err := svc.SetRemaining(context.Background(), "u1", "d1", 13000, stats.TaskCounts{})
	require.NoError(t, err)
	require.Equal(t, int64(13000), result.UptimeSeconds)

	var dev Device
	require.NoError(t, db.Where("device_id = ?", "d1").First(&dev).Error)
	require.Equal(t, int64(13000), dev.UptimeSeconds)
	require.Equal(t, StatusOnline, dev.Status)
	require.NotNil(t, dev.LastSeenAt)
}

func TestSetRemainingForwardsTaskCounts(t *testing.T) {
	svc, db := newTestService(t)
	seedDevice(t, svc, "u1", "d1")

	_, err := svc.SetRemaining(context.Background(), "u1", "d1", 14000, stats.TaskCounts{
		Text:  3,
		Video: 1,
	})
	require.NoError(t, err)

	var stat stats.GlobalStat
	require.NoError(t, db.Where("stat_id = ?", stats.StatTotalTextTasks).First(&stat).Error)
	require.Equal(t, int64(3), stat.Count)
	stat = stats.GlobalStat{}
	require.NoError(t, db.Where("stat_id = ?", stats.StatTotalVideoTasks).First(&stat).Error)
	require.Equal(t, int64(1), stat.Count)
}

func TestSetRemainingChecksOwnership(t *testing.T) {
	svc, _ := newTestService(t)
	seedDevice(t, svc, "u1", "d1")

	_, err := svc.SetRemaining(context.Background(), "u2", "d1", 1000, stats.TaskCounts{})
	require.Error(t, err)
}

func TestAddElapsedAccumulates(t *testing.T) {
	svc, db := newTestService(t)
	seedDevice(t, svc, "u1", "d1")

	_, err := svc.AddElapsed(context.Background(), "u1", "d1", 100)
	require.NoError(t, err)

	result, err := svc.AddElapsed(context.Background(), "u1", "d1", 50)
	require.NoError(t, err)
	require.Equal(t, int64(150), result.UptimeSeconds)

	var dev Device
	require.NoError(t, db.Where("device_id = ?", "d1").First(&dev).Error)
	require.Equal(t, int64(150), dev.UptimeSeconds)
}

func TestResetToTierCeilingResetsAllDevices(t *testing.T) {
	svc, db := newTestService(t)
	seedDevice(t, svc, "u1", "d1")
	seedDevice(t, svc, "u1", "d2")

	reset, err := svc.ResetToTierCeiling(context.Background(), "u1", account.PlanEnterprise)
	require.NoError(t, err)
	require.Equal(t, int64(2), reset)

	var devices []Device
	require.NoError(t, db.Where("user_id = ?", "u1").Find(&devices).Error)
	require.Len(t, devices, 2)
	for _, dev := range devices {
		require.Equal(t, int64(86400), dev.UptimeSeconds)
	}
}

func TestDailyResetUsesEachUsersPlan(t *testing.T) {
	svc, db := newTestService(t)
	seedAccount(t, db, "u1", "free")
	seedAccount(t, db, "u2", "elite")
	seedAccount(t, db, "u3", "pro")
	seedDevice(t, svc, "u1", "d1")
	seedDevice(t, svc, "u2", "d2")
	seedDevice(t, svc, "u3", "d3")

	require.NoError(t, svc.DailyReset(context.Background()))

	var dev Device
	require.NoError(t, db.Where("device_id = ?", "d1").First(&dev).Error)
	require.Equal(t, int64(14400), dev.UptimeSeconds)
	dev = Device{}
	require.NoError(t, db.Where("device_id = ?", "d2").First(&dev).Error)
	require.Equal(t, int64(86400), dev.UptimeSeconds)
	dev = Device{}
	require.NoError(t, db.Where("device_id = ?", "d3").First(&dev).Error)
	require.Equal(t, int64(64800), dev.UptimeSeconds)
}

func TestDailyResetHandlesManyUsers(t *testing.T) {
	svc, db := newTestService(t)

	// more users than one batch
	for i := 0; i < resetBatchSize+5; i++ {
		id := fmt.Sprintf("user-%02d", i)
		seedAccount(t, db, id, "basic")
		seedDevice(t, svc, id, "d-"+id)
	}

	require.NoError(t, svc.DailyReset(context.Background()))

	var count int64
	require.NoError(t, db.Model(&Device{}).Where("uptime_seconds = ?", 36000).Count(&count).Error)
	require.Equal(t, int64(resetBatchSize+5), count)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, db := newTestService(t)
	seedDevice(t, svc, "u1", "d1")

	dev, err := svc.Update(context.Background(), "u1", "d1", UpdateParams{
		DeviceName: "renamed",
		Status:     StatusBusy,
	})
	require.NoError(t, err)
	require.Equal(t, "renamed", dev.DeviceName)
	require.Equal(t, StatusBusy, dev.Status)

	_, err = svc.Update(context.Background(), "u1", "d1", UpdateParams{Status: "broken"})
	require.Error(t, err)

	require.NoError(t, svc.Delete(context.Background(), "u1", "d1"))

	var count int64
	require.NoError(t, db.Model(&Device{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}
