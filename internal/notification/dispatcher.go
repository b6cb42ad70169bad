package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"workdesk.io/workdesk/internal/domain"
	"workdesk.io/workdesk/internal/pkg/logger"
	"workdesk.io/workdesk/internal/pkg/worker"
)

// Store is the slice of the notification repository the dispatcher needs.
type Store interface {
	FetchDue(ctx context.Context, now time.Time) ([]domain.DueNotification, error)
	Claim(ctx context.Context, id int64) (bool, error)
}

// Dispatcher runs the periodic fetch-claim-deliver loop. Ticks are
// serialized: a slow tick delays the next one rather than overlapping it.
type Dispatcher struct {
	store    Store
	channels []Channel
	pools    *worker.Pools
	interval time.Duration

	now func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewDispatcher creates a dispatcher over the given channels. Nil
// channels in the slice are ignored.
func NewDispatcher(store Store, channels []Channel, pools *worker.Pools, interval time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	kept := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		if ch != nil {
			kept = append(kept, ch)
		}
	}
	return &Dispatcher{
		store:    store,
		channels: kept,
		pools:    pools,
		interval: interval,
		now:      time.Now,
	}
}

// Start launches the loop. The first tick runs immediately.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return
	}
	ctx, d.cancel = context.WithCancel(ctx)
	d.stopped = make(chan struct{})

	logger.Info("notification dispatcher starting",
		zap.Duration("interval", d.interval),
		zap.Int("channels", len(d.channels)))

	go d.run(ctx)
}

// Stop cancels the loop and waits for the in-flight tick to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	cancel, stopped := d.cancel, d.stopped
	d.cancel = nil
	d.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-stopped
	logger.Info("notification dispatcher stopped")
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.stopped)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick runs one fetch-claim-deliver pass. Exported so the instant path
// and tests can drive the loop body directly.
func (d *Dispatcher) Tick(ctx context.Context) {
	due, err := d.store.FetchDue(ctx, d.now())
	if err != nil {
		logger.Error("fetch due notifications", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}
	logger.Debug("due notifications found", zap.Int("count", len(due)))

	var wg sync.WaitGroup
	for _, n := range due {
		claimed, err := d.store.Claim(ctx, n.ID)
		if err != nil {
			logger.Error("claim notification",
				zap.Int64("notification_id", n.ID), zap.Error(err))
			continue
		}
		if !claimed {
			// Another process won the claim; its delivery, not ours.
			continue
		}

		n := n
		wg.Add(1)
		task := func(ctx context.Context) {
			defer wg.Done()
			d.deliverAll(ctx, n)
		}
		// Once claimed, the notification must reach the channels even if
		// the loop is being cancelled; the claim already marked it sent.
		if err := d.pools.Delivery.Submit(context.WithoutCancel(ctx), task); err != nil {
			task(ctx)
		}
	}
	wg.Wait()
}

// deliverAll pushes one claimed notification through every channel.
// Channel failures are logged and isolated; they never affect other
// channels or other notifications.
func (d *Dispatcher) deliverAll(ctx context.Context, n domain.DueNotification) {
	for _, ch := range d.channels {
		outcome, err := ch.Deliver(ctx, n)
		if err != nil {
			logger.Error("notification delivery failed",
				zap.String("channel", ch.Name()),
				zap.Int64("notification_id", n.ID),
				zap.Int64("user_id", n.UserID),
				zap.Error(err))
			continue
		}
		logger.Debug("notification delivery",
			zap.String("channel", ch.Name()),
			zap.String("outcome", outcome.String()),
			zap.Int64("notification_id", n.ID))
	}
}
