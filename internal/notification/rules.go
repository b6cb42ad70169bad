package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"workdesk.io/workdesk/internal/domain"
	"workdesk.io/workdesk/internal/pkg/logger"
)

// RuleStore is the slice of the notification repository the derivation
// rules need: minting rows and checking suppression windows.
type RuleStore interface {
	Create(ctx context.Context, p domain.CreateNotificationParams) (*domain.Notification, error)
	HasMeetingNoticeSince(ctx context.Context, meetingID int64, since time.Time) (bool, error)
	HasTaskNoticeOn(ctx context.Context, taskID int64, day time.Time) (bool, error)
}

// MeetingSource lists scheduled meetings starting inside a window.
type MeetingSource interface {
	UpcomingMeetings(ctx context.Context, now time.Time, window time.Duration) ([]domain.Meeting, error)
}

// TaskSource lists incomplete tasks whose due date has passed.
type TaskSource interface {
	OverdueTasks(ctx context.Context, now time.Time) ([]domain.Task, error)
}

// RuleConfig carries the derivation windows.
type RuleConfig struct {
	// MeetingWindow is how far ahead the upcoming-meeting rule looks.
	MeetingWindow time.Duration
	// MeetingSuppression is how long after minting a meeting notice the
	// rule stays quiet for that meeting.
	MeetingSuppression time.Duration
}

// Rules derives notification rows from the state of meetings and tasks.
// Rules only mint rows; the dispatch loop picks them up on its next tick.
type Rules struct {
	store    RuleStore
	meetings MeetingSource
	tasks    TaskSource
	cfg      RuleConfig

	now func() time.Time
}

// NewRules creates the derivation rule set.
func NewRules(store RuleStore, meetings MeetingSource, tasks TaskSource, cfg RuleConfig) *Rules {
	if cfg.MeetingWindow <= 0 {
		cfg.MeetingWindow = time.Hour
	}
	if cfg.MeetingSuppression <= 0 {
		cfg.MeetingSuppression = time.Hour
	}
	return &Rules{store: store, meetings: meetings, tasks: tasks, cfg: cfg, now: time.Now}
}

// CheckUpcomingMeetings mints a high-priority reminder for each scheduled
// meeting starting within the window, addressed to the organizer, unless
// one was already minted for that meeting inside the suppression window.
// A bad candidate is logged and skipped; it never aborts the sweep.
func (r *Rules) CheckUpcomingMeetings(ctx context.Context) error {
	now := r.now()
	meetings, err := r.meetings.UpcomingMeetings(ctx, now, r.cfg.MeetingWindow)
	if err != nil {
		return fmt.Errorf("list upcoming meetings: %w", err)
	}

	for _, m := range meetings {
		suppressed, err := r.store.HasMeetingNoticeSince(ctx, m.ID, now.Add(-r.cfg.MeetingSuppression))
		if err != nil {
			logger.Error("meeting suppression check", zap.Int64("meeting_id", m.ID), zap.Error(err))
			continue
		}
		if suppressed {
			continue
		}

		metadata, _ := json.Marshal(map[string]any{
			"meeting_id":   m.ID,
			"meeting_time": m.MeetingTime,
			"location":     m.Location,
		})
		_, err = r.store.Create(ctx, domain.CreateNotificationParams{
			UserID:        m.OrganizerID,
			TypeID:        domain.TypeIDMeeting,
			Title:         "🕐 Meeting starting soon",
			Message:       fmt.Sprintf("%q starts within the next hour", m.Title),
			ScheduledTime: now,
			Priority:      domain.PriorityHigh,
			Metadata:      metadata,
		})
		if err != nil {
			logger.Error("mint meeting reminder", zap.Int64("meeting_id", m.ID), zap.Error(err))
			continue
		}
		logger.Info("meeting reminder minted",
			zap.Int64("meeting_id", m.ID), zap.Int64("user_id", m.OrganizerID))
	}
	return nil
}

// CheckOverdueTasks mints an urgent notice for each incomplete task past
// its due date, at most once per task per UTC calendar day.
func (r *Rules) CheckOverdueTasks(ctx context.Context) error {
	now := r.now()
	tasks, err := r.tasks.OverdueTasks(ctx, now)
	if err != nil {
		return fmt.Errorf("list overdue tasks: %w", err)
	}

	for _, t := range tasks {
		noticed, err := r.store.HasTaskNoticeOn(ctx, t.ID, now)
		if err != nil {
			logger.Error("task suppression check", zap.Int64("task_id", t.ID), zap.Error(err))
			continue
		}
		if noticed {
			continue
		}

		metadata, _ := json.Marshal(map[string]any{
			"task_id":  t.ID,
			"due_date": t.DueDate,
		})
		_, err = r.store.Create(ctx, domain.CreateNotificationParams{
			UserID:        t.UserID,
			TypeID:        domain.TypeIDTaskDeadline,
			Title:         "⚠️ Task overdue",
			Message:       fmt.Sprintf("%q is past its due date", t.Title),
			ScheduledTime: now,
			Priority:      domain.PriorityUrgent,
			Metadata:      metadata,
		})
		if err != nil {
			logger.Error("mint overdue notice", zap.Int64("task_id", t.ID), zap.Error(err))
			continue
		}
		logger.Info("overdue notice minted",
			zap.Int64("task_id", t.ID), zap.Int64("user_id", t.UserID))
	}
	return nil
}
