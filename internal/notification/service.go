package notification

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"workdesk.io/workdesk/internal/domain"
	apperrors "workdesk.io/workdesk/internal/pkg/errors"
	"workdesk.io/workdesk/internal/pkg/logger"
	"workdesk.io/workdesk/internal/pkg/worker"
)

// ServiceStore extends the dispatcher's store with row creation.
type ServiceStore interface {
	Store
	Create(ctx context.Context, p domain.CreateNotificationParams) (*domain.Notification, error)
}

// TokenSource resolves a user's push token.
type TokenSource interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Service owns the create path, including the instant delivery that runs
// alongside the periodic dispatch loop.
type Service struct {
	store    ServiceStore
	users    TokenSource
	channels []Channel
	pools    *worker.Pools

	now func() time.Time
}

// NewService creates the notification service. Nil channels are ignored.
func NewService(store ServiceStore, users TokenSource, channels []Channel, pools *worker.Pools) *Service {
	kept := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		if ch != nil {
			kept = append(kept, ch)
		}
	}
	return &Service{store: store, users: users, channels: kept, pools: pools, now: time.Now}
}

// Create validates and inserts a notification, then fires the instant
// delivery path. The instant path is best-effort: its failures are logged
// and never surface to the caller, the row is already persisted.
//
// Two cases:
//   - scheduled_time has passed: claim first, deliver only on claim win.
//     The loop may be racing us on the same row; the claim decides.
//   - scheduled_time is in the future: deliver a heads-up immediately
//     WITHOUT claiming, so the loop still delivers the real notification
//     at its scheduled time. The double delivery is intentional.
func (s *Service) Create(ctx context.Context, p domain.CreateNotificationParams) (*domain.Notification, error) {
	if p.UserID == 0 || p.TypeID == 0 || p.Title == "" || p.Message == "" || p.ScheduledTime.IsZero() {
		return nil, apperrors.New(apperrors.CodeValidationFailed,
			"user_id, type_id, title, message and scheduled_time are required",
			http.StatusBadRequest)
	}
	if p.Priority != "" && !p.Priority.Valid() {
		return nil, apperrors.New(apperrors.CodeValidationFailed,
			"priority must be one of urgent, high, medium, low",
			http.StatusBadRequest)
	}

	n, err := s.store.Create(ctx, p)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError,
			"failed to create notification", http.StatusInternalServerError)
	}

	s.instant(ctx, n)
	return n, nil
}

// instant runs the create-time delivery on the delivery pool.
func (s *Service) instant(ctx context.Context, n *domain.Notification) {
	if len(s.channels) == 0 {
		return
	}

	user, err := s.users.GetByID(ctx, n.UserID)
	if err != nil {
		logger.Warn("instant delivery: recipient lookup failed",
			zap.Int64("user_id", n.UserID), zap.Error(err))
		return
	}

	due := domain.DueNotification{
		Notification: *n,
		TypeCode:     domain.TypeCodeFor(n.TypeID),
		FCMToken:     user.FCMToken,
		Instant:      true,
	}
	alreadyDue := !n.ScheduledTime.After(s.now())

	task := func(ctx context.Context) {
		if alreadyDue {
			claimed, err := s.store.Claim(ctx, due.ID)
			if err != nil {
				logger.Error("instant claim failed",
					zap.Int64("notification_id", due.ID), zap.Error(err))
				return
			}
			if !claimed {
				// The dispatch loop got there first.
				return
			}
		}
		for _, ch := range s.channels {
			outcome, err := ch.Deliver(ctx, due)
			if err != nil {
				logger.Error("instant delivery failed",
					zap.String("channel", ch.Name()),
					zap.Int64("notification_id", due.ID),
					zap.Error(err))
				continue
			}
			logger.Debug("instant delivery",
				zap.String("channel", ch.Name()),
				zap.String("outcome", outcome.String()),
				zap.Int64("notification_id", due.ID))
		}
	}

	if err := s.pools.SubmitDetached("delivery", task); err != nil {
		logger.Warn("instant delivery: pool submit failed",
			zap.Int64("notification_id", due.ID), zap.Error(err))
	}
}
