package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"golang.org/x/time/rate"

	"workdesk.io/workdesk/internal/domain"
)

// fcmSender is the slice of the Firebase messaging client the push
// channel uses. Tests substitute a fake.
type fcmSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

var _ fcmSender = (*messaging.Client)(nil)

// PushChannel delivers notifications through Firebase Cloud Messaging.
type PushChannel struct {
	client      fcmSender
	minTokenLen int
	limiter     *rate.Limiter
}

// NewPushChannel creates the FCM channel. Returns nil when client is nil
// so an unconfigured Firebase app simply removes push from the channel
// set.
func NewPushChannel(client fcmSender, minTokenLen int, perSecond float64) *PushChannel {
	if client == nil {
		return nil
	}
	if perSecond <= 0 {
		perSecond = 100
	}
	return &PushChannel{
		client:      client,
		minTokenLen: minTokenLen,
		limiter:     rate.NewLimiter(rate.Limit(perSecond), int(perSecond)),
	}
}

func (c *PushChannel) Name() string { return "push" }

// Deliver sends a hybrid payload: a display notification plus a data
// block the mobile app uses for local scheduling. Meeting and task
// deadline notifications are tagged SYNC so the app re-syncs its local
// alarm state instead of just showing a banner.
func (c *PushChannel) Deliver(ctx context.Context, n domain.DueNotification) (Outcome, error) {
	// Placeholder tokens from web sessions are short; real FCM tokens are
	// much longer. Don't waste a send on one.
	if len(n.FCMToken) < c.minTokenLen {
		return OutcomeSkipped, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return OutcomeFailed, fmt.Errorf("push rate limiter: %w", err)
	}

	if _, err := c.client.Send(ctx, c.buildMessage(n)); err != nil {
		return OutcomeFailed, fmt.Errorf("fcm send to user %d: %w", n.UserID, err)
	}
	return OutcomeDelivered, nil
}

func (c *PushChannel) buildMessage(n domain.DueNotification) *messaging.Message {
	metadata := "{}"
	if len(n.Metadata) > 0 {
		metadata = string(n.Metadata)
	}

	typeCode := n.TypeCode
	if typeCode == "" {
		typeCode = domain.TypeCodeSystem
	}
	dataType := typeCode
	if typeCode == domain.TypeCodeMeeting || typeCode == domain.TypeCodeTaskDeadline {
		dataType = "SYNC"
	}

	title := n.Title
	androidChannel := "default"
	sound := ""
	if n.Instant {
		dataType = "INSTANT"
		title = "📢 " + title
		androidChannel = "alarm_channel"
		sound = "alarm_sound"
	}

	msg := &messaging.Message{
		Token: n.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  n.Message,
		},
		Data: map[string]string{
			"type":        dataType,
			"entity_type": typeCode,
			"entity_id":   fmt.Sprint(n.ID),
			"metadata":    metadata,
		},
		Android: &messaging.AndroidConfig{
			Priority: androidPriority(n.Priority),
			Notification: &messaging.AndroidNotification{
				ChannelID: androidChannel,
				Sound:     sound,
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": apnsPriority(n.Priority),
			},
		},
	}
	return msg
}

func androidPriority(p domain.Priority) string {
	if p == domain.PriorityUrgent || p == domain.PriorityHigh {
		return "high"
	}
	return "normal"
}

func apnsPriority(p domain.Priority) string {
	if p == domain.PriorityUrgent || p == domain.PriorityHigh {
		return "10"
	}
	return "5"
}
