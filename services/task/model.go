package task

// MaxRewardPerTask caps a single completion. Anything above it is treated
// as a forged client report.
const MaxRewardPerTask = 100

type CompleteParams struct {
	UserID       string
	Amount       float64
	TaskID       string
	TaskType     string
	HardwareTier string
	Multiplier   float64
}

type CompleteResult struct {
	UnclaimedRewardDelta float64 `json:"unclaimed_reward_delta"`
	TotalUnclaimed       float64 `json:"total_unclaimed"`
	TaskCount            int64   `json:"task_count"`
}

type Stats struct {
	TotalTasks    int64   `json:"total_tasks"`
	TotalEarnings float64 `json:"total_earnings"`
}
