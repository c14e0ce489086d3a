package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/liftcare/internal/model"
	"github.com/nurpe/liftcare/internal/repository"
)

// ActivityRecorder writes audit entries for completed writes.
type ActivityRecorder interface {
	Record(ctx context.Context, actor model.Principal, action, details string)
}

type ActivityService struct {
	repo ActivityStore
	log  zerolog.Logger
	now  func() time.Time
}

func NewActivityService(repo ActivityStore, log zerolog.Logger) *ActivityService {
	return &ActivityService{repo: repo, log: log, now: utcNow}
}

// Record appends an entry. A failed append is logged and does not fail the caller.
func (s *ActivityService) Record(ctx context.Context, actor model.Principal, action, details string) {
	entry := &model.ActivityLog{
		UserID:    actor.UserID,
		Action:    action,
		Details:   details,
		Timestamp: s.now(),
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}

func (s *ActivityService) List(ctx context.Context, params repository.ListParams) ([]model.ActivityLog, int64, error) {
	return s.repo.List(ctx, params)
}

func (s *ActivityService) Recent(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	return s.repo.Recent(ctx, limit)
}

func record(ctx context.Context, recorder ActivityRecorder, actor model.Principal, action, details string) {
	if recorder != nil {
		recorder.Record(ctx, actor, action, details)
	}
}
