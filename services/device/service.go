package device

import (
	"context"
	"time"

	"swarmrewards/pkg/errutil"
	"swarmrewards/pkg/repository"
	"swarmrewards/services/account"
	"swarmrewards/services/stats"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const resetBatchSize = 20

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	device repository.Repository[Device]

	stats *stats.Service
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node

	Stats *stats.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,

		device: repository.ProvideStore[Device](p.DB),

		stats: p.Stats,
	}
}

type RegisterParams struct {
	UserID     string
	DeviceID   string
	DeviceName string
}

func (s *Service) Register(ctx context.Context, p RegisterParams) (*Device, error) {
	if p.DeviceName == "" {
		return nil, errutil.ValidationFailed("device_name is required", nil)
	}

	deviceID := p.DeviceID
	if deviceID == "" {
		deviceID = s.node.Generate().String()
	}

	exist, err := s.device.FindOne(ctx, &Device{DeviceID: deviceID})
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, errutil.Conflict("device already registered", nil)
	}

	now := time.Now()
	dev := &Device{
		ID:         s.node.Generate().String(),
		DeviceID:   deviceID,
		UserID:     p.UserID,
		DeviceName: p.DeviceName,
		Status:     StatusOffline,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.device.Create(ctx, dev); err != nil {
		return nil, err
	}
	return dev, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*Device, error) {
	return s.device.Find(ctx, &Device{UserID: userID})
}

func (s *Service) Get(ctx context.Context, userID, deviceID string) (*Device, error) {
	dev, err := s.device.FindOne(ctx, &Device{DeviceID: deviceID, UserID: userID})
	if err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, errutil.NotFound("device not found", nil)
	}
	return dev, nil
}

type UpdateParams struct {
	DeviceName string
	Status     string
}

func (s *Service) Update(ctx context.Context, userID, deviceID string, p UpdateParams) (*Device, error) {
	dev, err := s.Get(ctx, userID, deviceID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": time.Now()}
	if p.DeviceName != "" {
		updates["device_name"] = p.DeviceName
	}
	if p.Status != "" {
		switch p.Status {
		case StatusOffline, StatusOnline, StatusBusy:
		default:
			return nil, errutil.ValidationFailed("invalid status", nil)
		}
		updates["status"] = p.Status
	}

	if err := s.device.Update(ctx, dev.ID, &updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, deviceID)
}

func (s *Service) Delete(ctx context.Context, userID, deviceID string) error {
	dev, err := s.Get(ctx, userID, deviceID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&Device{}, "id = ?", dev.ID).Error
}

// SetRemaining is the countdown sync. The node reports how much of its
// daily quota is left and the stored value is replaced outright, never
// added to. Per-type completed-task counts ride along and land on the
// global counters.
func (s *Service) SetRemaining(ctx context.Context, userID, deviceID string, seconds int64, counts stats.TaskCounts) (*SyncResult, error) {
	if seconds < 0 {
		return nil, errutil.ValidationFailed("uptime seconds must be >= 0", nil)
	}

	dev, err := s.Get(ctx, userID, deviceID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.device.Update(ctx, dev.ID, map[string]any{
		"uptime_seconds": seconds,
		"status":         StatusOnline,
		"last_seen_at":   now,
		"updated_at":     now,
	}); err != nil {
		return nil, err
	}

	s.stats.RecordTaskCounts(ctx, counts)

	return &SyncResult{
		DeviceID:      dev.DeviceID,
		DeviceName:    dev.DeviceName,
		UptimeSeconds: seconds,
	}, nil
}

// AddElapsed is the accumulation sync: the reported interval is added to
// the stored counter with a native increment, so concurrent reports from
// the same device all land.
func (s *Service) AddElapsed(ctx context.Context, userID, deviceID string, seconds int64) (*SyncResult, error) {
	if seconds <= 0 {
		return nil, errutil.ValidationFailed("uptime seconds must be > 0", nil)
	}

	dev, err := s.Get(ctx, userID, deviceID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.device.Update(ctx, dev.ID, map[string]any{
		"uptime_seconds": gorm.Expr("uptime_seconds + ?", seconds),
		"status":         StatusOnline,
		"last_seen_at":   now,
		"updated_at":     now,
	}); err != nil {
		return nil, err
	}

	updated, err := s.Get(ctx, userID, deviceID)
	if err != nil {
		return nil, err
	}

	return &SyncResult{
		DeviceID:      updated.DeviceID,
		DeviceName:    updated.DeviceName,
		UptimeSeconds: updated.UptimeSeconds,
	}, nil
}

// ResetToTierCeiling restores every device the user owns to the plan's
// daily quota. Runs on plan upgrades and from the daily reset job.
func (s *Service) ResetToTierCeiling(ctx context.Context, userID string, plan account.Plan) (int64, error) {
	limits := account.LimitsFor(plan)

	res := s.db.WithContext(ctx).Model(&Device{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"uptime_seconds": limits.MaxUptimeSeconds,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// DailyReset walks every account in fixed-size batches and restores each
// user's devices to their tier ceiling. One failing user is logged and
// skipped; the rest of the batch still resets.
func (s *Service) DailyReset(ctx context.Context) error {
	var accts []account.Account
	if err := s.db.WithContext(ctx).Model(&account.Account{}).
		Select("user_id, plan").
		Find(&accts).Error; err != nil {
		return err
	}

	var resetUsers, failed int
	for start := 0; start < len(accts); start += resetBatchSize {
		end := start + resetBatchSize
		if end > len(accts) {
			end = len(accts)
		}

		for _, acct := range accts[start:end] {
			plan := account.NormalizePlan(acct.Plan)
			if _, err := s.ResetToTierCeiling(ctx, acct.UserID, plan); err != nil {
				failed++
				zap.L().Error("daily reset failed for user",
					zap.String("user_id", acct.UserID),
					zap.String("plan", string(plan)),
					zap.Error(err),
				)
				continue
			}
			resetUsers++
		}
	}

	zap.L().Info("daily uptime reset finished",
		zap.Int("users_reset", resetUsers),
		zap.Int("users_failed", failed),
	)
	return nil
}
