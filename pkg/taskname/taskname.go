package taskname

const (
	// RoyaltyDistribute walks the referral chain of a completed task and
	// credits each ancestor its tier share.
	RoyaltyDistribute = "royalty:distribute"

	// UptimeDailyReset restores every device's remaining uptime to its
	// plan ceiling once per day.
	UptimeDailyReset = "uptime:daily_reset"

	// PlanSync reconciles recently active accounts against the billing
	// source of truth.
	PlanSync = "plan:sync"
)
