package earning

import (
	"time"

	"gorm.io/datatypes"
)

// Source tags on earning records. Royalty tiers carry their depth so the
// cascade can be audited per hop.
const (
	SourceTask            = "task"
	SourceDailyCheckin    = "daily_checkin"
	SourceReferralSignup  = "referral_signup"
	SourceReferralWelcome = "referral_welcome"
	SourceRoyaltyTier1    = "referral_royalty_tier1"
	SourceRoyaltyTier2    = "referral_royalty_tier2"
	SourceRoyaltyTier3    = "referral_royalty_tier3"
	SourceOther           = "other"
)

type EarningRecord struct {
	ID          string         `gorm:"column:id;primaryKey"`
	UserID      string         `gorm:"column:user_id;index"`
	Amount      float64        `gorm:"column:amount"`
	Source      string         `gorm:"column:source"`
	IsClaimed   bool           `gorm:"column:is_claimed"`
	ReferenceID string         `gorm:"column:reference_id;uniqueIndex"`
	Description string         `gorm:"column:description"`
	Metadata    datatypes.JSON `gorm:"column:metadata"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (EarningRecord) TableName() string {
	return "earning_records"
}

type LedgerTotal struct {
	ID          string    `gorm:"column:id;primaryKey"`
	UserID      string    `gorm:"column:user_id;uniqueIndex"`
	TotalAmount float64   `gorm:"column:total_amount"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (LedgerTotal) TableName() string {
	return "ledger_totals"
}

type ClaimResult struct {
	ClaimedAmount float64 `json:"claimed_amount"`
	NewTotal      float64 `json:"new_total"`
}

type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	UserID        string  `json:"user_id"`
	Username      string  `json:"username"`
	TotalAmount   float64 `json:"total_amount"`
	IsCurrentUser bool    `json:"is_current_user"`
}

type LeaderboardResult struct {
	Entries     []LeaderboardEntry `json:"entries"`
	CurrentUser *LeaderboardEntry  `json:"current_user,omitempty"`
}
