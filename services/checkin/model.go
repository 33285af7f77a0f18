package checkin

import "time"

// Rewards for each day of the 7-day cycle. Day 7 pays out the big one,
// then the cycle wraps while the streak keeps counting.
var rewardTable = [7]float64{5, 10, 15, 20, 25, 30, 50}

type CheckinRecord struct {
	ID          string    `gorm:"column:id;primaryKey"`
	UserID      string    `gorm:"column:user_id;uniqueIndex:idx_checkin_user_date"`
	CheckinDate string    `gorm:"column:checkin_date;uniqueIndex:idx_checkin_user_date"`
	Streak      int       `gorm:"column:streak"`
	DayNumber   int       `gorm:"column:day_number"`
	Reward      float64   `gorm:"column:reward"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (CheckinRecord) TableName() string {
	return "checkin_records"
}

type StreakInfo struct {
	Streak          int     `json:"streak"`
	CheckedInToday  bool    `json:"checked_in_today"`
	NextDayNumber   int     `json:"next_day_number"`
	NextReward      float64 `json:"next_reward"`
	LastCheckinDate string  `json:"last_checkin_date,omitempty"`
}

type CheckinResult struct {
	Streak    int     `json:"streak"`
	DayNumber int     `json:"day_number"`
	Reward    float64 `json:"reward"`
}
