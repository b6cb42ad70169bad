// Package domain defines the core WorkDesk entities shared by the API
// layer, the repositories and the notification dispatch subsystem.
package domain

import (
	"encoding/json"
	"time"
)

// Priority orders notifications for dispatch and maps onto transport
// priority hints. Urgent sorts first.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns the dispatch ordering rank; lower dispatches first.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Rank() < 4
}

// Notification type codes seeded in notification_types.
const (
	TypeCodeMeeting      = "meeting"
	TypeCodeTaskDeadline = "task_deadline"
	TypeCodeSystem       = "system"
	TypeCodeReport       = "report"
)

// Seeded notification_types IDs referenced by the derivation rules.
const (
	TypeIDMeeting      int64 = 1
	TypeIDTaskDeadline int64 = 2
	TypeIDSystem       int64 = 3
	TypeIDReport       int64 = 4
)

// Notification is one message owed to one user.
//
// is_sent transitions false→true exactly once via the repository claim;
// sent_at is non-nil iff is_sent is true. is_read is user-controlled and
// independent of is_sent.
type Notification struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	TypeID        int64           `json:"type_id"`
	Title         string          `json:"title"`
	Message       string          `json:"message"`
	ScheduledTime time.Time       `json:"scheduled_time"`
	Priority      Priority        `json:"priority"`
	IsSent        bool            `json:"is_sent"`
	IsRead        bool            `json:"is_read"`
	SentAt        *time.Time      `json:"sent_at,omitempty"`
	ReadAt        *time.Time      `json:"read_at,omitempty"`
	ActionURL     string          `json:"action_url,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NotificationType categorizes UI treatment (icon, color, label).
type NotificationType struct {
	ID       int64  `json:"id"`
	TypeCode string `json:"type_code"`
	TypeName string `json:"type_name"`
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty"`
}

// DueNotification is a notification joined with everything a delivery
// channel needs: the type code for payload shaping and the recipient's
// push token.
type DueNotification struct {
	Notification
	TypeCode string `json:"type_code"`
	FCMToken string `json:"-"`

	// Instant marks a notification delivered straight from the create
	// path rather than by the dispatch loop; channels may use a louder
	// presentation for it.
	Instant bool `json:"-"`
}

// TypeCodeFor maps a seeded type id to its type code; unknown ids map to
// the system code.
func TypeCodeFor(typeID int64) string {
	switch typeID {
	case TypeIDMeeting:
		return TypeCodeMeeting
	case TypeIDTaskDeadline:
		return TypeCodeTaskDeadline
	case TypeIDReport:
		return TypeCodeReport
	default:
		return TypeCodeSystem
	}
}

// CreateNotificationParams carries the insertable notification fields.
type CreateNotificationParams struct {
	UserID        int64           `json:"user_id"`
	TypeID        int64           `json:"type_id"`
	Title         string          `json:"title"`
	Message       string          `json:"message"`
	ScheduledTime time.Time       `json:"scheduled_time"`
	Priority      Priority        `json:"priority"`
	ActionURL     string          `json:"action_url,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
}

// NotificationView is a notification joined with its type's UI treatment,
// as returned by the user-facing list and get endpoints.
type NotificationView struct {
	Notification
	TypeCode string `json:"type_code"`
	TypeName string `json:"type_name"`
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty"`
}
