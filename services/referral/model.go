package referral

import "time"

// Fixed bonuses credited when a referral code is redeemed.
const (
	SignupBonus  = 250.0
	WelcomeBonus = 500.0
)

// Royalty rates per ancestor hop. Tier 1 is the direct referrer.
var royaltyRates = [3]float64{0.10, 0.05, 0.025}

type ReferralEdge struct {
	ID          string    `gorm:"column:id;primaryKey"`
	ReferrerID  string    `gorm:"column:referrer_id;index"`
	ReferredID  string    `gorm:"column:referred_id;uniqueIndex"`
	Code        string    `gorm:"column:code"`
	Status      string    `gorm:"column:status"`
	BonusAmount float64   `gorm:"column:bonus_amount"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (ReferralEdge) TableName() string {
	return "referral_edges"
}

type VerifyResult struct {
	Valid    bool      `json:"valid"`
	Referrer *Referrer `json:"referrer,omitempty"`
}

type Referrer struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type Stats struct {
	TotalReferrals int64   `json:"total_referrals"`
	TotalEarned    float64 `json:"total_earned"`
}
