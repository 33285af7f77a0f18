package checkin

import (
	"context"
	"fmt"
	"time"

	"swarmrewards/pkg/db/option"
	"swarmrewards/pkg/errutil"
	"swarmrewards/pkg/repository"
	"swarmrewards/services/earning"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	checkin repository.Repository[CheckinRecord]

	earnings *earning.Service
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node

	Earnings *earning.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,

		checkin: repository.ProvideStore[CheckinRecord](p.DB),

		earnings: p.Earnings,
	}
}

func dayNumberFor(streak int) int {
	return ((streak - 1) % 7) + 1
}

func (s *Service) GetStreak(ctx context.Context, userID string) (*StreakInfo, error) {
	last, err := s.latest(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	info := &StreakInfo{}

	switch {
	case last == nil:
		info.NextDayNumber = 1
	case last.CheckinDate == today:
		info.Streak = last.Streak
		info.CheckedInToday = true
		info.NextDayNumber = dayNumberFor(last.Streak + 1)
		info.LastCheckinDate = last.CheckinDate
	case last.CheckinDate == yesterday:
		info.Streak = last.Streak
		info.NextDayNumber = dayNumberFor(last.Streak + 1)
		info.LastCheckinDate = last.CheckinDate
	default:
		// streak broken, next check-in starts over
		info.NextDayNumber = 1
		info.LastCheckinDate = last.CheckinDate
	}

	info.NextReward = rewardTable[info.NextDayNumber-1]

	return info, nil
}

// PerformCheckin records today's check-in and credits the day's reward. One
// check-in per UTC day; the unique (user, date) index backs the guard under
// concurrent requests.
func (s *Service) PerformCheckin(ctx context.Context, userID string) (*CheckinResult, error) {
	last, err := s.latest(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	if last != nil && last.CheckinDate == today {
		return nil, errutil.Conflict("already checked in today", nil)
	}

	streak := 1
	if last != nil && last.CheckinDate == yesterday {
		streak = last.Streak + 1
	}

	day := dayNumberFor(streak)
	reward := rewardTable[day-1]

	record := &CheckinRecord{
		ID:          s.node.Generate().String(),
		UserID:      userID,
		CheckinDate: today,
		Streak:      streak,
		DayNumber:   day,
		Reward:      reward,
		CreatedAt:   now,
	}
	if err := s.checkin.Create(ctx, record); err != nil {
		zap.L().Error("failed to create checkin record",
			zap.String("user_id", userID),
			zap.String("date", today),
			zap.Error(err),
		)
		return nil, err
	}

	if _, err := s.earnings.Track(ctx, earning.TrackParams{
		UserID:      userID,
		Amount:      reward,
		Source:      earning.SourceDailyCheckin,
		ReferenceID: fmt.Sprintf("checkin:%s:%s", userID, today),
		Description: fmt.Sprintf("Daily check-in day %d", day),
	}); err != nil {
		zap.L().Error("failed to credit checkin reward",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	return &CheckinResult{
		Streak:    streak,
		DayNumber: day,
		Reward:    reward,
	}, nil
}

func (s *Service) latest(ctx context.Context, userID string) (*CheckinRecord, error) {
	return s.checkin.FindOne(ctx, &CheckinRecord{UserID: userID}, option.WithSortBy(option.QuerySortBy{
		SortBy:  "checkin_date",
		OrderBy: "desc",
		Allow:   map[string]bool{"checkin_date": true},
	}))
}
