package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workdesk.io/workdesk/internal/domain"
)

// MeetingRepo reads and writes meeting rows and their participant links.
type MeetingRepo struct {
	pool *pgxpool.Pool
}

// NewMeetingRepo creates a meeting repository.
func NewMeetingRepo(pool *pgxpool.Pool) *MeetingRepo {
	return &MeetingRepo{pool: pool}
}

const meetingColumns = `id, organizer_id, title, description, meeting_time, duration_minutes, location, status, created_at, updated_at`

func scanMeeting(row pgx.Row) (*domain.Meeting, error) {
	var m domain.Meeting
	err := row.Scan(&m.ID, &m.OrganizerID, &m.Title, &m.Description, &m.MeetingTime,
		&m.DurationMinutes, &m.Location, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMeetingParams carries the fields for a new meeting.
type CreateMeetingParams struct {
	OrganizerID     int64
	Title           string
	Description     string
	MeetingTime     time.Time
	DurationMinutes int
	Location        string
	ParticipantIDs  []int64
}

// Create inserts a meeting and its participant links in one transaction.
// The organizer is always linked as an accepted participant.
func (r *MeetingRepo) Create(ctx context.Context, p CreateMeetingParams) (*domain.Meeting, error) {
	if p.DurationMinutes <= 0 {
		p.DurationMinutes = 60
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin meeting insert: %w", err)
	}
	defer tx.Rollback(ctx)

	m, err := scanMeeting(tx.QueryRow(ctx, `
		INSERT INTO meetings (organizer_id, title, description, meeting_time, duration_minutes, location)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+meetingColumns,
		p.OrganizerID, p.Title, p.Description, p.MeetingTime, p.DurationMinutes, p.Location,
	))
	if err != nil {
		return nil, fmt.Errorf("insert meeting: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO meeting_participants (meeting_id, user_id, response_status)
		VALUES ($1, $2, 'accepted')
		ON CONFLICT DO NOTHING`,
		m.ID, p.OrganizerID,
	); err != nil {
		return nil, fmt.Errorf("link organizer to meeting %d: %w", m.ID, err)
	}
	for _, uid := range p.ParticipantIDs {
		if uid == p.OrganizerID {
			continue
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO meeting_participants (meeting_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			m.ID, uid,
		); err != nil {
			return nil, fmt.Errorf("link participant %d to meeting %d: %w", uid, m.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit meeting insert: %w", err)
	}
	return m, nil
}

// GetByID returns a meeting or pgx.ErrNoRows.
func (r *MeetingRepo) GetByID(ctx context.Context, id int64) (*domain.Meeting, error) {
	return scanMeeting(r.pool.QueryRow(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, id,
	))
}

// ListForUser returns meetings the user organizes or participates in,
// soonest first.
func (r *MeetingRepo) ListForUser(ctx context.Context, userID int64, status string) ([]domain.Meeting, error) {
	query := `
		SELECT DISTINCT m.id, m.organizer_id, m.title, m.description, m.meeting_time,
			m.duration_minutes, m.location, m.status, m.created_at, m.updated_at
		FROM meetings m
		LEFT JOIN meeting_participants mp ON mp.meeting_id = m.id
		WHERE (m.organizer_id = $1 OR mp.user_id = $1)`
	args := []any{userID}
	if status != "" {
		query += ` AND m.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY m.meeting_time ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list meetings for user %d: %w", userID, err)
	}
	defer rows.Close()

	var meetings []domain.Meeting
	for rows.Next() {
		var m domain.Meeting
		if err := rows.Scan(&m.ID, &m.OrganizerID, &m.Title, &m.Description, &m.MeetingTime,
			&m.DurationMinutes, &m.Location, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

// UpdateMeetingParams carries optional field updates; nil means keep current.
type UpdateMeetingParams struct {
	Title           *string
	Description     *string
	MeetingTime     *time.Time
	DurationMinutes *int
	Location        *string
	Status          *string
}

// Update applies the non-nil fields and returns the fresh row.
func (r *MeetingRepo) Update(ctx context.Context, id int64, p UpdateMeetingParams) (*domain.Meeting, error) {
	return scanMeeting(r.pool.QueryRow(ctx, `
		UPDATE meetings SET
			title            = COALESCE($2, title),
			description      = COALESCE($3, description),
			meeting_time     = COALESCE($4, meeting_time),
			duration_minutes = COALESCE($5, duration_minutes),
			location         = COALESCE($6, location),
			status           = COALESCE($7, status),
			updated_at       = now()
		WHERE id = $1
		RETURNING `+meetingColumns,
		id, p.Title, p.Description, p.MeetingTime, p.DurationMinutes, p.Location, p.Status,
	))
}

// Delete removes a meeting; participant links cascade.
func (r *MeetingRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete meeting %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Participants returns a meeting's participant links with usernames.
func (r *MeetingRepo) Participants(ctx context.Context, meetingID int64) ([]domain.MeetingParticipant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT mp.meeting_id, mp.user_id, u.username, mp.response_status
		FROM meeting_participants mp
		JOIN users u ON u.id = mp.user_id
		WHERE mp.meeting_id = $1
		ORDER BY u.username`,
		meetingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants of meeting %d: %w", meetingID, err)
	}
	defer rows.Close()

	var parts []domain.MeetingParticipant
	for rows.Next() {
		var p domain.MeetingParticipant
		if err := rows.Scan(&p.MeetingID, &p.UserID, &p.Username, &p.ResponseStatus); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// Respond records a participant's RSVP. Returns false when the user is
// not linked to the meeting.
func (r *MeetingRepo) Respond(ctx context.Context, meetingID, userID int64, status string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE meeting_participants
		SET response_status = $3
		WHERE meeting_id = $1 AND user_id = $2`,
		meetingID, userID, status,
	)
	if err != nil {
		return false, fmt.Errorf("record response for meeting %d user %d: %w", meetingID, userID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpcomingMeetings returns scheduled meetings starting in (now, now+window].
// Feeds the upcoming-meeting derivation rule.
func (r *MeetingRepo) UpcomingMeetings(ctx context.Context, now time.Time, window time.Duration) ([]domain.Meeting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+meetingColumns+`
		FROM meetings
		WHERE status = 'scheduled'
		  AND meeting_time > $1
		  AND meeting_time <= $2
		ORDER BY meeting_time ASC`,
		now, now.Add(window),
	)
	if err != nil {
		return nil, fmt.Errorf("query upcoming meetings: %w", err)
	}
	defer rows.Close()

	var meetings []domain.Meeting
	for rows.Next() {
		var m domain.Meeting
		if err := rows.Scan(&m.ID, &m.OrganizerID, &m.Title, &m.Description, &m.MeetingTime,
			&m.DurationMinutes, &m.Location, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan upcoming meeting: %w", err)
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

// ParticipantIDs returns the user ids linked to a meeting, organizer included.
func (r *MeetingRepo) ParticipantIDs(ctx context.Context, meetingID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM meeting_participants WHERE meeting_id = $1`, meetingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participant ids of meeting %d: %w", meetingID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpcomingForUser returns the user's scheduled meetings starting within
// the window, organizer or participant.
func (r *MeetingRepo) UpcomingForUser(ctx context.Context, userID int64, now time.Time, window time.Duration) ([]domain.Meeting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT m.id, m.organizer_id, m.title, m.description, m.meeting_time,
			m.duration_minutes, m.location, m.status, m.created_at, m.updated_at
		FROM meetings m
		LEFT JOIN meeting_participants mp ON mp.meeting_id = m.id
		WHERE (m.organizer_id = $1 OR mp.user_id = $1)
		  AND m.status = 'scheduled'
		  AND m.meeting_time > $2
		  AND m.meeting_time <= $3
		ORDER BY m.meeting_time ASC`,
		userID, now, now.Add(window),
	)
	if err != nil {
		return nil, fmt.Errorf("query upcoming meetings for user %d: %w", userID, err)
	}
	defer rows.Close()

	var meetings []domain.Meeting
	for rows.Next() {
		var m domain.Meeting
		if err := rows.Scan(&m.ID, &m.OrganizerID, &m.Title, &m.Description, &m.MeetingTime,
			&m.DurationMinutes, &m.Location, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan upcoming meeting: %w", err)
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}
