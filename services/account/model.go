package account

import (
	"strings"
	"time"
)

type Account struct {
	ID              string     `gorm:"column:id;primaryKey"`
	UserID          string     `gorm:"column:user_id;uniqueIndex"`
	Username        string     `gorm:"column:username"`
	UnclaimedReward float64    `gorm:"column:unclaimed_reward"`
	TasksCompleted  int64      `gorm:"column:tasks_completed"`
	Plan            string     `gorm:"column:plan"`
	ReferralCode    string     `gorm:"column:referral_code;uniqueIndex"`
	LastLoginAt     *time.Time `gorm:"column:last_login_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

type Plan string

const (
	PlanFree       Plan = "free"
	PlanBasic      Plan = "basic"
	PlanUltimate   Plan = "ultimate"
	PlanEnterprise Plan = "enterprise"
)

// NormalizePlan maps raw plan strings onto the canonical set. The legacy
// tiers elite and pro still exist on old rows and map to enterprise and
// ultimate respectively. Anything unrecognised falls back to free.
func NormalizePlan(raw string) Plan {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "basic":
		return PlanBasic
	case "ultimate", "pro":
		return PlanUltimate
	case "enterprise", "elite":
		return PlanEnterprise
	default:
		return PlanFree
	}
}

type PlanLimits struct {
	MaxUptimeSeconds int64
	MaxDailyEarnings float64
}

var planLimits = map[Plan]PlanLimits{
	PlanFree:       {MaxUptimeSeconds: 14400, MaxDailyEarnings: 100},
	PlanBasic:      {MaxUptimeSeconds: 36000, MaxDailyEarnings: 250},
	PlanUltimate:   {MaxUptimeSeconds: 64800, MaxDailyEarnings: 450},
	PlanEnterprise: {MaxUptimeSeconds: 86400, MaxDailyEarnings: 600},
}

func LimitsFor(plan Plan) PlanLimits {
	if limits, ok := planLimits[plan]; ok {
		return limits
	}
	return planLimits[PlanFree]
}
