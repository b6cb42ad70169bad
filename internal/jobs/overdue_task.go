package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river"
)

// OverdueTaskArgs is the periodic sweep that mints overdue-task notices.
type OverdueTaskArgs struct{}

// Kind returns the job kind identifier for the overdue task sweep.
func (OverdueTaskArgs) Kind() string { return "overdue_task_sweep" }

// InsertOpts ensures at most one sweep is enqueued per fifteen-minute period.
func (OverdueTaskArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       river.QueueDefault,
		MaxAttempts: 1,
		UniqueOpts: river.UniqueOpts{
			ByPeriod: 15 * time.Minute,
			ByQueue:  true,
			ByArgs:   true,
		},
	}
}

// TaskRules is the rule surface this worker drives.
type TaskRules interface {
	CheckOverdueTasks(ctx context.Context) error
}

// OverdueTaskWorker runs the overdue-task derivation rule.
type OverdueTaskWorker struct {
	river.WorkerDefaults[OverdueTaskArgs]
	rules TaskRules
}

// NewOverdueTaskWorker creates the sweep worker.
func NewOverdueTaskWorker(rules TaskRules) *OverdueTaskWorker {
	return &OverdueTaskWorker{rules: rules}
}

// Work runs one sweep.
func (w *OverdueTaskWorker) Work(ctx context.Context, _ *river.Job[OverdueTaskArgs]) error {
	if w == nil || w.rules == nil {
		return fmt.Errorf("overdue task worker is not initialized")
	}
	return w.rules.CheckOverdueTasks(ctx)
}
