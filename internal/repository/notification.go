// Package repository implements PostgreSQL data access for WorkDesk.
//
// Each repository is a thin pgx wrapper over one table. The notification
// repository additionally carries the atomic claim primitive the dispatch
// subsystem's at-most-once guarantee rests on.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workdesk.io/workdesk/internal/domain"
)

// notificationColumns is the scan order shared by notification queries.
const notificationColumns = `
	n.id, n.user_id, n.type_id, n.title, n.message, n.scheduled_time,
	n.priority, n.is_sent, n.is_read, n.sent_at, n.read_at, n.action_url,
	n.metadata, n.created_at, n.updated_at`

// NotificationRepo reads and writes notification rows.
type NotificationRepo struct {
	pool *pgxpool.Pool
}

// NewNotificationRepo creates a notification repository.
func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(
		&n.ID, &n.UserID, &n.TypeID, &n.Title, &n.Message, &n.ScheduledTime,
		&n.Priority, &n.IsSent, &n.IsRead, &n.SentAt, &n.ReadAt, &n.ActionURL,
		&n.Metadata, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Create inserts a new notification row. is_sent starts false; the claim
// is the only way it flips.
func (r *NotificationRepo) Create(ctx context.Context, p domain.CreateNotificationParams) (*domain.Notification, error) {
	if p.Priority == "" {
		p.Priority = domain.PriorityMedium
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO notifications
			(user_id, type_id, title, message, scheduled_time, priority, action_url, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+notificationColumns[1:],
		p.UserID, p.TypeID, p.Title, p.Message, p.ScheduledTime, p.Priority, p.ActionURL, p.Metadata,
	)
	n, err := scanNotification(row)
	if err != nil {
		return nil, fmt.Errorf("insert notification for user %d: %w", p.UserID, err)
	}
	return n, nil
}

// FetchDue returns every unsent notification whose scheduled_time has
// passed, joined with recipient token and type code, ordered urgent-first
// then earliest-scheduled-first within a priority tier.
func (r *NotificationRepo) FetchDue(ctx context.Context, now time.Time) ([]domain.DueNotification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns[1:]+`,
			nt.type_code, u.fcm_token
		FROM notifications n
		JOIN notification_types nt ON n.type_id = nt.id
		JOIN users u ON n.user_id = u.id
		WHERE n.scheduled_time <= $1
		  AND n.is_sent = FALSE
		ORDER BY
			CASE n.priority
				WHEN 'urgent' THEN 0
				WHEN 'high'   THEN 1
				WHEN 'medium' THEN 2
				ELSE 3
			END,
			n.scheduled_time ASC`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("query due notifications: %w", err)
	}
	defer rows.Close()

	var due []domain.DueNotification
	for rows.Next() {
		var d domain.DueNotification
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.TypeID, &d.Title, &d.Message, &d.ScheduledTime,
			&d.Priority, &d.IsSent, &d.IsRead, &d.SentAt, &d.ReadAt, &d.ActionURL,
			&d.Metadata, &d.CreatedAt, &d.UpdatedAt,
			&d.TypeCode, &d.FCMToken,
		); err != nil {
			return nil, fmt.Errorf("scan due notification: %w", err)
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// Claim atomically flips is_sent false→true and stamps sent_at. Returns
// true iff this call performed the transition; concurrent callers racing
// on the same id see true exactly once.
func (r *NotificationRepo) Claim(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET is_sent = TRUE, sent_at = now(), updated_at = now()
		WHERE id = $1 AND is_sent = FALSE`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("claim notification %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetByID returns a notification joined with its type, or pgx.ErrNoRows.
func (r *NotificationRepo) GetByID(ctx context.Context, id int64) (*domain.NotificationView, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+notificationColumns[1:]+`,
			nt.type_code, nt.type_name, nt.icon, nt.color
		FROM notifications n
		JOIN notification_types nt ON n.type_id = nt.id
		WHERE n.id = $1`,
		id,
	)
	var v domain.NotificationView
	if err := row.Scan(
		&v.ID, &v.UserID, &v.TypeID, &v.Title, &v.Message, &v.ScheduledTime,
		&v.Priority, &v.IsSent, &v.IsRead, &v.SentAt, &v.ReadAt, &v.ActionURL,
		&v.Metadata, &v.CreatedAt, &v.UpdatedAt,
		&v.TypeCode, &v.TypeName, &v.Icon, &v.Color,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListFilters narrows ListByUser results.
type ListFilters struct {
	IsRead   *bool
	Priority domain.Priority
	Limit    int
	Offset   int
}

// ListByUser returns a user's notifications, newest scheduled first, with
// a total count for pagination.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID int64, f ListFilters) (*domain.Page[domain.NotificationView], error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}

	where := "WHERE n.user_id = $1"
	args := []any{userID}
	if f.IsRead != nil {
		args = append(args, *f.IsRead)
		where += fmt.Sprintf(" AND n.is_read = $%d", len(args))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		where += fmt.Sprintf(" AND n.priority = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications n "+where, args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count notifications for user %d: %w", userID, err)
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns[1:]+`,
			nt.type_code, nt.type_name, nt.icon, nt.color
		FROM notifications n
		JOIN notification_types nt ON n.type_id = nt.id
		`+where+`
		ORDER BY n.scheduled_time DESC, n.created_at DESC
		LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications for user %d: %w", userID, err)
	}
	defer rows.Close()

	items := make([]domain.NotificationView, 0, f.Limit)
	for rows.Next() {
		var v domain.NotificationView
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.TypeID, &v.Title, &v.Message, &v.ScheduledTime,
			&v.Priority, &v.IsSent, &v.IsRead, &v.SentAt, &v.ReadAt, &v.ActionURL,
			&v.Metadata, &v.CreatedAt, &v.UpdatedAt,
			&v.TypeCode, &v.TypeName, &v.Icon, &v.Color,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.Page[domain.NotificationView]{
		Data:   items,
		Total:  total,
		Limit:  f.Limit,
		Offset: f.Offset,
	}, nil
}

// MarkRead marks one notification read for its owner.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = now(), updated_at = now()
		WHERE id = $1 AND user_id = $2 AND is_read = FALSE`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("mark notification %d read: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkAllRead marks every unread notification read for a user and returns
// how many rows changed.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = now(), updated_at = now()
		WHERE user_id = $1 AND is_read = FALSE`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark all read for user %d: %w", userID, err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes a notification owned by userID.
func (r *NotificationRepo) Delete(ctx context.Context, id, userID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("delete notification %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// UnreadCount returns the number of unread notifications for a user.
func (r *NotificationRepo) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread for user %d: %w", userID, err)
	}
	return count, nil
}

// Types returns all notification types ordered by name.
func (r *NotificationRepo) Types(ctx context.Context) ([]domain.NotificationType, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, type_code, type_name, icon, color FROM notification_types ORDER BY type_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("query notification types: %w", err)
	}
	defer rows.Close()

	var types []domain.NotificationType
	for rows.Next() {
		var t domain.NotificationType
		if err := rows.Scan(&t.ID, &t.TypeCode, &t.TypeName, &t.Icon, &t.Color); err != nil {
			return nil, fmt.Errorf("scan notification type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// HasMeetingNoticeSince reports whether a meeting-type notification
// correlated to meetingID was created after since. This is the
// upcoming-meeting rule's suppression check: a windowed scan, not a hard
// uniqueness constraint.
func (r *NotificationRepo) HasMeetingNoticeSince(ctx context.Context, meetingID int64, since time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE metadata->>'meeting_id' = $1::text
			  AND type_id = $2
			  AND created_at > $3
		)`,
		fmt.Sprint(meetingID), domain.TypeIDMeeting, since,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check meeting notice for %d: %w", meetingID, err)
	}
	return exists, nil
}

// HasTaskNoticeOn reports whether a task-deadline notification correlated
// to taskID was created on the same UTC calendar day as day.
func (r *NotificationRepo) HasTaskNoticeOn(ctx context.Context, taskID int64, day time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE metadata->>'task_id' = $1::text
			  AND type_id = $2
			  AND (created_at AT TIME ZONE 'UTC')::date = $3::date
		)`,
		fmt.Sprint(taskID), domain.TypeIDTaskDeadline, day.UTC(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check task notice for %d: %w", taskID, err)
	}
	return exists, nil
}

// DeleteSentBefore purges delivered notifications created before cutoff.
// Used by the retention job.
func (r *NotificationRepo) DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM notifications WHERE is_sent = TRUE AND created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("delete sent notifications before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}
