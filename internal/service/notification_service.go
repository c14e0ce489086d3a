package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/liftcare/internal/model"
	"github.com/nurpe/liftcare/internal/notify"
	"github.com/nurpe/liftcare/internal/repository"
)

const (
	NotificationTask     = "task"
	NotificationContract = "contract"
	NotificationRequest  = "request"
)

const pushTimeout = 5 * time.Second

// Notifier delivers a notification to one user.
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification) error
}

type NotificationService struct {
	repo      NotificationStore
	publisher notify.Publisher
	log       zerolog.Logger
	now       func() time.Time

	pushes sync.WaitGroup
}

func NewNotificationService(repo NotificationStore, publisher notify.Publisher, log zerolog.Logger) *NotificationService {
	if publisher == nil {
		publisher = notify.Noop{}
	}
	return &NotificationService{repo: repo, publisher: publisher, log: log, now: utcNow}
}

// Notify stores n and pushes it to the user's topic in the background, so a
// slow broker never holds up the caller. Push failures are logged only.
func (s *NotificationService) Notify(ctx context.Context, n *model.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	payload := *n
	s.pushes.Add(1)
	go func() {
		defer s.pushes.Done()
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
		defer cancel()
		if err := s.publisher.Publish(pushCtx, notify.UserTopic(payload.UserID), payload); err != nil {
			s.log.Warn().Err(err).Str("user_id", payload.UserID.String()).Msg("failed to push notification")
		}
	}()
	return nil
}

// Flush waits for pushes already handed to the publisher.
func (s *NotificationService) Flush() {
	s.pushes.Wait()
}

func (s *NotificationService) List(ctx context.Context, principal model.Principal, params repository.ListParams) ([]model.Notification, int64, error) {
	if !principal.IsAuthenticated() {
		return nil, 0, ErrUnauthenticated
	}
	return s.repo.ListForUser(ctx, principal.UserID, params)
}

func (s *NotificationService) Unread(ctx context.Context, principal model.Principal) (int64, error) {
	if !principal.IsAuthenticated() {
		return 0, ErrUnauthenticated
	}
	return s.repo.CountUnread(ctx, principal.UserID)
}

func (s *NotificationService) MarkRead(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.IsAuthenticated() {
		return ErrUnauthenticated
	}
	return translate(s.repo.MarkRead(ctx, id, principal.UserID), "notification")
}
