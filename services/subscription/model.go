package subscription

import (
	"context"

	"swarmrewards/services/account"
)

type Subscription struct {
	PlanName         string  `json:"plan_name"`
	Status           string  `json:"status"`
	MaxUptime        int64   `json:"max_uptime"`
	MaxDailyEarnings float64 `json:"max_daily_earnings"`
}

// PlanSource is the billing system of record the sync worker reconciles
// against. It lives outside this service.
type PlanSource interface {
	PlanFor(ctx context.Context, userID string) (account.Plan, error)
}
