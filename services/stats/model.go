package stats

import "time"

// Well-known global counters.
const (
	StatTotal3DTasks    = "TOTAL_3D_TASKS"
	StatTotalVideoTasks = "TOTAL_VIDEO_TASKS"
	StatTotalTextTasks  = "TOTAL_TEXT_TASKS"
	StatTotalImageTasks = "TOTAL_IMAGE_TASKS"
)

// Compute weight per completed task, by task type.
var computeMultipliers = map[string]float64{
	StatTotalTextTasks:  0.12,
	StatTotalImageTasks: 0.4,
	StatTotal3DTasks:    0.8,
	StatTotalVideoTasks: 1.6,
}

// StatIDForTaskType maps a task type tag onto its global counter. Unknown
// types return empty, which callers skip.
func StatIDForTaskType(taskType string) string {
	switch taskType {
	case "text":
		return StatTotalTextTasks
	case "image":
		return StatTotalImageTasks
	case "three_d", "3d":
		return StatTotal3DTasks
	case "video":
		return StatTotalVideoTasks
	default:
		return ""
	}
}

type GlobalStat struct {
	StatID    string    `gorm:"column:stat_id;primaryKey"`
	Count     int64     `gorm:"column:count"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (GlobalStat) TableName() string {
	return "global_stats"
}

type Snapshot struct {
	GlobalSP               float64 `json:"global_sp"`
	TotalUsers             int64   `json:"total_users"`
	GlobalComputeGenerated float64 `json:"global_compute_generated"`
	TotalTasks             int64   `json:"total_tasks"`
}

// TaskCounts carries per-type completed-task counts reported by a node.
type TaskCounts struct {
	ThreeD int64 `json:"three_d"`
	Video  int64 `json:"video"`
	Text   int64 `json:"text"`
	Image  int64 `json:"image"`
}
