// Package jobs defines River Queue job types for periodic background work.
//
// The derivation rules run here on a coarse schedule; the dispatch loop
// picks up whatever rows they mint. Unique-by-period insert options keep
// multi-process deployments from double-running a sweep.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river"
)

// MeetingReminderArgs is the periodic sweep that mints upcoming-meeting
// reminders.
type MeetingReminderArgs struct{}

// Kind returns the job kind identifier for the meeting reminder sweep.
func (MeetingReminderArgs) Kind() string { return "meeting_reminder_sweep" }

// InsertOpts ensures at most one sweep is enqueued per five-minute period.
func (MeetingReminderArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       river.QueueDefault,
		MaxAttempts: 1,
		UniqueOpts: river.UniqueOpts{
			ByPeriod: 5 * time.Minute,
			ByQueue:  true,
			ByArgs:   true,
		},
	}
}

// MeetingRules is the rule surface this worker drives.
type MeetingRules interface {
	CheckUpcomingMeetings(ctx context.Context) error
}

// MeetingReminderWorker runs the upcoming-meeting derivation rule.
type MeetingReminderWorker struct {
	river.WorkerDefaults[MeetingReminderArgs]
	rules MeetingRules
}

// NewMeetingReminderWorker creates the sweep worker.
func NewMeetingReminderWorker(rules MeetingRules) *MeetingReminderWorker {
	return &MeetingReminderWorker{rules: rules}
}

// Work runs one sweep.
func (w *MeetingReminderWorker) Work(ctx context.Context, _ *river.Job[MeetingReminderArgs]) error {
	if w == nil || w.rules == nil {
		return fmt.Errorf("meeting reminder worker is not initialized")
	}
	return w.rules.CheckUpcomingMeetings(ctx)
}
