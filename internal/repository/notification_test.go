package repository

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workdesk.io/workdesk/internal/domain"
	"workdesk.io/workdesk/internal/testutil"
)

func insertUser(t *testing.T, pool *pgxpool.Pool, username string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO users (username, email, password_hash, fcm_token)
		VALUES ($1, $1 || '@example.com', 'x', 'tok')
		RETURNING id`, username,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestNotificationRepo_CreateDefaultsPriority(t *testing.T) {
	pool := testutil.OpenMigratedPool(t, "notif_create")
	repo := NewNotificationRepo(pool)
	userID := insertUser(t, pool, "alice")

	n, err := repo.Create(context.Background(), domain.CreateNotificationParams{
		UserID:        userID,
		TypeID:        domain.TypeIDSystem,
		Title:         "hello",
		Message:       "world",
		ScheduledTime: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, n.Priority)
	assert.False(t, n.IsSent)
	assert.Nil(t, n.SentAt)
}

func TestNotificationRepo_ClaimIsAtMostOnce(t *testing.T) {
	pool := testutil.OpenMigratedPool(t, "notif_claim")
	repo := NewNotificationRepo(pool)
	userID := insertUser(t, pool, "alice")
	ctx := context.Background()

	n, err := repo.Create(ctx, domain.CreateNotificationParams{
		UserID: userID, TypeID: domain.TypeIDSystem,
		Title: "t", Message: "m", ScheduledTime: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	claimed, err := repo.Claim(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.Claim(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, claimed, "second claim on the same row must lose")

	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.IsSent)
	require.NotNil(t, got.SentAt)
}

func TestNotificationRepo_ClaimConcurrent(t *testing.T) {
	pool := testutil.OpenMigratedPool(t, "notif_claim_race")
	repo := NewNotificationRepo(pool)
	userID := insertUser(t, pool, "alice")
	ctx := context.Background()

	n, err := repo.Create(ctx, domain.CreateNotificationParams{
		UserID: userID, TypeID: domain.TypeIDSystem,
		Title: "t", Message: "m", ScheduledTime: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	const racers = 8
	var wg sync.WaitGroup
	wins := make(chan bool, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := repo.Claim(ctx, n.ID)
			assert.NoError(t, err)
			wins <- claimed
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for claimed := range wins {
		if claimed {
			won++
		}
	}
	assert.Equal(t, 1, won, "exactly one racer claims the row")
}

func TestNotificationRepo_FetchDueOrderingAndWindow(t *testing.T) {
	pool := testutil.OpenMigratedPool(t, "notif_due")
	repo := NewNotificationRepo(pool)
	userID := insertUser(t, pool, "alice")
	ctx := context.Background()
	now := time.Now()

	mk := func(title string, p domain.Priority, scheduled time.Time) *domain.Notification {
		n, err := repo.Create(ctx, domain.CreateNotificationParams{
			UserID: userID, TypeID: domain.TypeIDSystem,
			Title: title, Message: "m", ScheduledTime: scheduled, Priority: p,
		})
		require.NoError(t, err)
		return n
	}

	mk("low-early", domain.PriorityLow, now.Add(-3*time.Hour))
	mk("urgent-late", domain.PriorityUrgent, now.Add(-time.Minute))
	urgentEarly := mk("urgent-early", domain.PriorityUrgent, now.Add(-2*time.Hour))
	mk("future", domain.PriorityUrgent, now.Add(time.Hour))
	sent := mk("already-sent", domain.PriorityUrgent, now.Add(-time.Hour))
	claimed, err := repo.Claim(ctx, sent.ID)
	require.NoError(t, err)
	require.True(t, claimed)

	due, err := repo.FetchDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 3, "future and already-sent rows stay out")

	assert.Equal(t, urgentEarly.ID, due[0].ID, "urgent tier first, earliest schedule first within it")
	assert.Equal(t, "urgent-late", due[1].Title)
	assert.Equal(t, "low-early", due[2].Title)
	assert.Equal(t, "tok", due[0].FCMToken)
	assert.Equal(t, domain.TypeCodeSystem, due[0].TypeCode)
}

func TestNotificationRepo_SuppressionChecks(t *testing.T) {
	pool := testutil.OpenMigratedPool(t, "notif_suppress")
	repo := NewNotificationRepo(pool)
	userID := insertUser(t, pool, "alice")
	ctx := context.Background()
	now := time.Now()

	meetingMeta, _ := json.Marshal(map[string]any{"meeting_id": 7})
	_, err := repo.Create(ctx, domain.CreateNotificationParams{
		UserID: userID, TypeID: domain.TypeIDMeeting,
		Title: "t", Message: "m", ScheduledTime: now, Metadata: meetingMeta,
	})
	require.NoError(t, err)

	exists, err := repo.HasMeetingNoticeSince(ctx, 7, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.HasMeetingNoticeSince(ctx, 7, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, exists, "a notice older than the window does not suppress")

	exists, err = repo.HasMeetingNoticeSince(ctx, 8, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, exists, "suppression is per meeting")

	taskMeta, _ := json.Marshal(map[string]any{"task_id": 11})
	_, err = repo.Create(ctx, domain.CreateNotificationParams{
		UserID: userID, TypeID: domain.TypeIDTaskDeadline,
		Title: "t", Message: "m", ScheduledTime: now, Metadata: taskMeta,
	})
	require.NoError(t, err)

	exists, err = repo.HasTaskNoticeOn(ctx, 11, now)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.HasTaskNoticeOn(ctx, 11, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, exists, "the task notice only counts for its own UTC day")

	exists, err = repo.HasTaskNoticeOn(ctx, 12, now)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNotificationRepo_ReadTrackingAndList(t *testing.T) {
	pool := testutil.OpenMigratedPool(t, "notif_read")
	repo := NewNotificationRepo(pool)
	alice := insertUser(t, pool, "alice")
	bob := insertUser(t, pool, "bob")
	ctx := context.Background()
	now := time.Now()

	var ids []int64
	for i := 0; i < 3; i++ {
		n, err := repo.Create(ctx, domain.CreateNotificationParams{
			UserID: alice, TypeID: domain.TypeIDSystem,
			Title: "t", Message: "m", ScheduledTime: now.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	_, err := repo.Create(ctx, domain.CreateNotificationParams{
		UserID: bob, TypeID: domain.TypeIDSystem,
		Title: "t", Message: "m", ScheduledTime: now,
	})
	require.NoError(t, err)

	count, err := repo.UnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	// Only the owner can mark a notification read.
	ok, err := repo.MarkRead(ctx, ids[0], bob)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.MarkRead(ctx, ids[0], alice)
	require.NoError(t, err)
	assert.True(t, ok)

	unread := false
	page, err := repo.ListByUser(ctx, alice, ListFilters{IsRead: &unread})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	changed, err := repo.MarkAllRead(ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 2, changed)

	count, err = repo.UnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Bob's row is untouched.
	count, err = repo.UnreadCount(ctx, bob)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestNotificationRepo_DeleteAndRetention(t *testing.T) {
	pool := testutil.OpenMigratedPool(t, "notif_delete")
	repo := NewNotificationRepo(pool)
	userID := insertUser(t, pool, "alice")
	ctx := context.Background()
	now := time.Now()

	fresh, err := repo.Create(ctx, domain.CreateNotificationParams{
		UserID: userID, TypeID: domain.TypeIDSystem,
		Title: "t", Message: "m", ScheduledTime: now,
	})
	require.NoError(t, err)

	old, err := repo.Create(ctx, domain.CreateNotificationParams{
		UserID: userID, TypeID: domain.TypeIDSystem,
		Title: "t", Message: "m", ScheduledTime: now.Add(-100 * 24 * time.Hour),
	})
	require.NoError(t, err)
	claimed, err := repo.Claim(ctx, old.ID)
	require.NoError(t, err)
	require.True(t, claimed)
	_, err = pool.Exec(ctx,
		`UPDATE notifications SET created_at = $1 WHERE id = $2`,
		now.Add(-100*24*time.Hour), old.ID)
	require.NoError(t, err)

	purged, err := repo.DeleteSentBefore(ctx, now.Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged, "only sent rows past the cutoff are purged")

	_, err = repo.GetByID(ctx, old.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	ok, err := repo.Delete(ctx, fresh.ID, userID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, fresh.ID, userID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNotificationRepo_Types(t *testing.T) {
	pool := testutil.OpenMigratedPool(t, "notif_types")
	repo := NewNotificationRepo(pool)

	types, err := repo.Types(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 4)

	codes := make(map[string]bool, len(types))
	for _, tp := range types {
		codes[tp.TypeCode] = true
	}
	assert.True(t, codes[domain.TypeCodeMeeting])
	assert.True(t, codes[domain.TypeCodeTaskDeadline])
	assert.True(t, codes[domain.TypeCodeSystem])
	assert.True(t, codes[domain.TypeCodeReport])
}
