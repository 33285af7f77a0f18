package referral

import (
	"context"
	"encoding/json"

	"swarmrewards/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type RoyaltyPayload struct {
	UserID string  `json:"user_id"`
	TaskID string  `json:"task_id"`
	Amount float64 `json:"amount"`
}

// NewRoyaltyTask builds the queue task that fans a completed task's amount
// out to the earner's referral ancestors.
func NewRoyaltyTask(p RoyaltyPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskname.RoyaltyDistribute, payload), nil
}

func RegisterWorker(mux *asynq.ServeMux, svc *Service) {
	mux.HandleFunc(taskname.RoyaltyDistribute, svc.HandleRoyaltyTask)
}

func (s *Service) HandleRoyaltyTask(ctx context.Context, t *asynq.Task) error {
	var payload RoyaltyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		zap.L().Error("invalid royalty payload", zap.Error(err))
		return err
	}

	zap.L().Info("Processing royalty cascade",
		zap.String("user_id", payload.UserID),
		zap.String("task_id", payload.TaskID),
	)

	if err := s.DistributeRoyalty(ctx, payload.UserID, payload.TaskID, payload.Amount); err != nil {
		zap.L().Error("failed to distribute royalty",
			zap.String("user_id", payload.UserID),
			zap.String("task_id", payload.TaskID),
			zap.Error(err),
		)
		return err
	}

	return nil
}
