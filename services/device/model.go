package device

import "time"

const (
	StatusOffline = "offline"
	StatusOnline  = "online"
	StatusBusy    = "busy"
)

// Device is a compute node owned by a user. uptime_seconds is a remaining
// daily quota under the countdown sync and a running counter under the
// accumulation sync; the operations below keep the two uses apart.
type Device struct {
	ID            string     `gorm:"column:id;primaryKey"`
	DeviceID      string     `gorm:"column:device_id;uniqueIndex"`
	UserID        string     `gorm:"column:user_id;index"`
	DeviceName    string     `gorm:"column:device_name"`
	UptimeSeconds int64      `gorm:"column:uptime_seconds"`
	Status        string     `gorm:"column:status"`
	LastSeenAt    *time.Time `gorm:"column:last_seen_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (Device) TableName() string {
	return "devices"
}

type SyncResult struct {
	DeviceID      string `json:"device_id"`
	DeviceName    string `json:"device_name"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}
