package domain

import "time"

// User carries the push-delivery address for notification channels.
// A missing or malformed FCM token degrades push delivery to a no-op.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FCMToken     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Task statuses.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

// Task is a unit of work owned by a user. Tasks whose due date has
// passed and whose status is neither completed nor cancelled are
// candidates for the overdue-task derivation rule.
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Meeting statuses.
const (
	MeetingStatusScheduled = "scheduled"
	MeetingStatusCompleted = "completed"
	MeetingStatusCancelled = "cancelled"
)

// Meeting is organized by a user; scheduled meetings starting within the
// reminder window feed the upcoming-meeting derivation rule.
type Meeting struct {
	ID              int64     `json:"id"`
	OrganizerID     int64     `json:"organizer_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	MeetingTime     time.Time `json:"meeting_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Location        string    `json:"location,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MeetingParticipant links a user to a meeting with an RSVP state.
type MeetingParticipant struct {
	MeetingID      int64  `json:"meeting_id"`
	UserID         int64  `json:"user_id"`
	Username       string `json:"username,omitempty"`
	ResponseStatus string `json:"response_status"`
}

// Category is a hierarchical grouping for documents and reports.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ParentID    *int64    `json:"parent_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Document is a filed record with an externally addressable UUID.
type Document struct {
	ID          int64     `json:"id"`
	UUID        string    `json:"uuid"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	FileURL     string    `json:"file_url,omitempty"`
	Status      string    `json:"status"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Report is a written record with an externally addressable UUID.
type Report struct {
	ID         int64     `json:"id"`
	UUID       string    `json:"uuid"`
	Title      string    `json:"title"`
	Content    string    `json:"content,omitempty"`
	CategoryID *int64    `json:"category_id,omitempty"`
	Status     string    `json:"status"`
	CreatedBy  int64     `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Page is a paginated result envelope used by list endpoints.
type Page[T any] struct {
	Data   []T   `json:"data"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}
