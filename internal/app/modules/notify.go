package modules

import (
	"context"
	"time"

	"github.com/riverqueue/river"

	"workdesk.io/workdesk/internal/api/handlers"
	"workdesk.io/workdesk/internal/jobs"
	"workdesk.io/workdesk/internal/notification"
	"workdesk.io/workdesk/internal/realtime"
	"workdesk.io/workdesk/internal/repository"
)

// NotifyModule owns the notification dispatch subsystem: the store, the
// delivery channels, the dispatch loop, the derivation rules and the
// instant-create service.
type NotifyModule struct {
	Store      *repository.NotificationRepo
	Hub        *realtime.Hub
	Dispatcher *notification.Dispatcher
	Rules      *notification.Rules
	Service    *notification.Service

	retention time.Duration
}

// NewNotifyModule wires channels, rules, dispatcher and service.
func NewNotifyModule(infra *Infrastructure, records *RecordsModule) *NotifyModule {
	cfg := infra.Config
	store := repository.NewNotificationRepo(infra.Pool)

	var hub *realtime.Hub
	if cfg.Realtime.Enabled {
		hub = realtime.NewHub()
	}

	// The nil checks stay out here: a typed-nil *messaging.Client or *Hub
	// passed through an interface parameter would dodge the constructors'
	// own guards.
	channels := make([]notification.Channel, 0, 2)
	if infra.Messaging != nil {
		channels = append(channels,
			notification.NewPushChannel(infra.Messaging, cfg.Notify.MinTokenLength, float64(cfg.Notify.PushRatePerSecond)))
	}
	if hub != nil {
		channels = append(channels, notification.NewBroadcastChannel(hub))
	}

	return &NotifyModule{
		Store: store,
		Hub:   hub,
		Dispatcher: notification.NewDispatcher(
			store, channels, infra.Pools, cfg.Notify.DispatchInterval),
		Rules: notification.NewRules(store, records.Meetings, records.Tasks,
			notification.RuleConfig{
				MeetingWindow:      cfg.Notify.MeetingWindow,
				MeetingSuppression: cfg.Notify.MeetingSuppression,
			}),
		Service:   notification.NewService(store, records.Users, channels, infra.Pools),
		retention: cfg.Notify.Retention,
	}
}

// Name identifies the module.
func (m *NotifyModule) Name() string { return "notify" }

// ContributeServerDeps injects the notification surface into the HTTP server.
func (m *NotifyModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	deps.Notifications = m.Store
	deps.Notifier = m.Service
	deps.Hub = m.Hub
}

// RegisterWorkers registers the derivation sweeps and retention cleanup.
func (m *NotifyModule) RegisterWorkers(workers *river.Workers) {
	river.AddWorker(workers, jobs.NewMeetingReminderWorker(m.Rules))
	river.AddWorker(workers, jobs.NewOverdueTaskWorker(m.Rules))
	river.AddWorker(workers, jobs.NewNotificationCleanupWorker(m.Store, m.retention))
}

// Shutdown stops the dispatch loop.
func (m *NotifyModule) Shutdown(context.Context) error {
	m.Dispatcher.Stop()
	return nil
}
