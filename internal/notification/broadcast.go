package notification

import (
	"context"

	"workdesk.io/workdesk/internal/domain"
	"workdesk.io/workdesk/internal/realtime"
)

// roomEmitter is the slice of the websocket hub the broadcast channel
// uses. Tests substitute a fake.
type roomEmitter interface {
	Emit(room, event string, payload any)
	RoomSize(room string) int
}

// BroadcastChannel pushes notifications into the recipient's websocket
// room so connected clients refresh without polling.
type BroadcastChannel struct {
	hub roomEmitter
}

// NewBroadcastChannel creates the websocket channel. Returns nil when hub
// is nil so a server running without the realtime surface simply removes
// broadcast from the channel set.
func NewBroadcastChannel(hub roomEmitter) *BroadcastChannel {
	if hub == nil {
		return nil
	}
	return &BroadcastChannel{hub: hub}
}

func (c *BroadcastChannel) Name() string { return "broadcast" }

// Deliver emits the notification into the user's room. An empty room is
// a skip, not a failure: the user just has no connected device.
func (c *BroadcastChannel) Deliver(_ context.Context, n domain.DueNotification) (Outcome, error) {
	room := realtime.UserRoom(n.UserID)
	if c.hub.RoomSize(room) == 0 {
		return OutcomeSkipped, nil
	}
	c.hub.Emit(room, "notification", n)
	return OutcomeDelivered, nil
}
