package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workdesk.io/workdesk/internal/domain"
)

type fakeRuleStore struct {
	created []domain.CreateNotificationParams

	meetingNotices map[int64]time.Time // meeting id -> minted at
	taskNotices    map[int64]time.Time // task id -> minted at

	createErr     error
	failCreateFor int64 // user id whose Create fails
	suppressErr   error
}

func newFakeRuleStore() *fakeRuleStore {
	return &fakeRuleStore{
		meetingNotices: make(map[int64]time.Time),
		taskNotices:    make(map[int64]time.Time),
	}
}

func (s *fakeRuleStore) Create(_ context.Context, p domain.CreateNotificationParams) (*domain.Notification, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.failCreateFor != 0 && p.UserID == s.failCreateFor {
		return nil, errors.New("insert failed")
	}
	s.created = append(s.created, p)
	return &domain.Notification{ID: int64(len(s.created)), UserID: p.UserID}, nil
}

func (s *fakeRuleStore) HasMeetingNoticeSince(_ context.Context, meetingID int64, since time.Time) (bool, error) {
	if s.suppressErr != nil {
		return false, s.suppressErr
	}
	at, ok := s.meetingNotices[meetingID]
	return ok && at.After(since), nil
}

func (s *fakeRuleStore) HasTaskNoticeOn(_ context.Context, taskID int64, day time.Time) (bool, error) {
	if s.suppressErr != nil {
		return false, s.suppressErr
	}
	at, ok := s.taskNotices[taskID]
	if !ok {
		return false, nil
	}
	y1, m1, d1 := at.UTC().Date()
	y2, m2, d2 := day.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2, nil
}

type fakeMeetingSource struct {
	meetings []domain.Meeting
	err      error
}

func (f *fakeMeetingSource) UpcomingMeetings(_ context.Context, _ time.Time, _ time.Duration) ([]domain.Meeting, error) {
	return f.meetings, f.err
}

type fakeTaskSource struct {
	tasks []domain.Task
	err   error
}

func (f *fakeTaskSource) OverdueTasks(_ context.Context, _ time.Time) ([]domain.Task, error) {
	return f.tasks, f.err
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestCheckUpcomingMeetings_MintsReminder(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	store := newFakeRuleStore()
	meetings := &fakeMeetingSource{meetings: []domain.Meeting{{
		ID:          7,
		OrganizerID: 3,
		Title:       "Quarterly review",
		MeetingTime: now.Add(40 * time.Minute),
		Location:    "Room B",
		Status:      domain.MeetingStatusScheduled,
	}}}
	r := NewRules(store, meetings, &fakeTaskSource{}, RuleConfig{})
	r.now = fixedClock(now)

	require.NoError(t, r.CheckUpcomingMeetings(context.Background()))

	require.Len(t, store.created, 1)
	p := store.created[0]
	assert.Equal(t, int64(3), p.UserID)
	assert.Equal(t, domain.TypeIDMeeting, p.TypeID)
	assert.Equal(t, domain.PriorityHigh, p.Priority)
	assert.Equal(t, now, p.ScheduledTime)
	assert.Contains(t, p.Message, "Quarterly review")

	var meta map[string]any
	require.NoError(t, json.Unmarshal(p.Metadata, &meta))
	assert.EqualValues(t, 7, meta["meeting_id"])
	assert.Equal(t, "Room B", meta["location"])
}

func TestCheckUpcomingMeetings_SuppressionWindow(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	store := newFakeRuleStore()
	store.meetingNotices[7] = now.Add(-30 * time.Minute) // minted half an hour ago
	meetings := &fakeMeetingSource{meetings: []domain.Meeting{{
		ID: 7, OrganizerID: 3, Title: "m", MeetingTime: now.Add(40 * time.Minute),
	}}}
	r := NewRules(store, meetings, &fakeTaskSource{}, RuleConfig{MeetingSuppression: time.Hour})
	r.now = fixedClock(now)

	require.NoError(t, r.CheckUpcomingMeetings(context.Background()))
	assert.Empty(t, store.created, "a notice inside the suppression window mutes the rule")

	// Outside the window the rule fires again.
	store.meetingNotices[7] = now.Add(-2 * time.Hour)
	require.NoError(t, r.CheckUpcomingMeetings(context.Background()))
	assert.Len(t, store.created, 1)
}

func TestCheckUpcomingMeetings_BadCandidateDoesNotAbortSweep(t *testing.T) {
	now := time.Now()
	store := newFakeRuleStore()
	meetings := &fakeMeetingSource{meetings: []domain.Meeting{
		{ID: 1, OrganizerID: 3, Title: "a", MeetingTime: now.Add(10 * time.Minute)},
		{ID: 2, OrganizerID: 4, Title: "b", MeetingTime: now.Add(20 * time.Minute)},
	}}
	r := NewRules(store, meetings, &fakeTaskSource{}, RuleConfig{})
	r.now = fixedClock(now)

	// The first meeting's insert fails; the sweep still reaches the second.
	store.failCreateFor = 3
	require.NoError(t, r.CheckUpcomingMeetings(context.Background()))
	require.Len(t, store.created, 1)
	assert.Equal(t, int64(4), store.created[0].UserID)
}

func TestCheckUpcomingMeetings_SourceError(t *testing.T) {
	r := NewRules(newFakeRuleStore(), &fakeMeetingSource{err: errors.New("db gone")}, &fakeTaskSource{}, RuleConfig{})
	assert.Error(t, r.CheckUpcomingMeetings(context.Background()))
}

func TestCheckOverdueTasks_MintsOncePerCalendarDay(t *testing.T) {
	now := time.Date(2025, 6, 2, 23, 50, 0, 0, time.UTC)
	due := now.Add(-26 * time.Hour)
	store := newFakeRuleStore()
	tasks := &fakeTaskSource{tasks: []domain.Task{{
		ID: 11, UserID: 5, Title: "File the report", DueDate: &due, Status: domain.TaskStatusPending,
	}}}
	r := NewRules(store, &fakeMeetingSource{}, tasks, RuleConfig{})
	r.now = fixedClock(now)

	require.NoError(t, r.CheckOverdueTasks(context.Background()))
	require.Len(t, store.created, 1)
	p := store.created[0]
	assert.Equal(t, int64(5), p.UserID)
	assert.Equal(t, domain.TypeIDTaskDeadline, p.TypeID)
	assert.Equal(t, domain.PriorityUrgent, p.Priority)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(p.Metadata, &meta))
	assert.EqualValues(t, 11, meta["task_id"])

	// Same UTC day: silent.
	store.taskNotices[11] = now
	require.NoError(t, r.CheckOverdueTasks(context.Background()))
	assert.Len(t, store.created, 1)

	// Ten minutes later it is June 3rd UTC: the rule fires again.
	r.now = fixedClock(now.Add(10 * time.Minute))
	require.NoError(t, r.CheckOverdueTasks(context.Background()))
	assert.Len(t, store.created, 2)
}

func TestCheckOverdueTasks_SuppressionCheckErrorSkipsTask(t *testing.T) {
	now := time.Now()
	due := now.Add(-time.Hour)
	store := newFakeRuleStore()
	store.suppressErr = errors.New("query failed")
	tasks := &fakeTaskSource{tasks: []domain.Task{{ID: 1, UserID: 5, Title: "t", DueDate: &due}}}
	r := NewRules(store, &fakeMeetingSource{}, tasks, RuleConfig{})
	r.now = fixedClock(now)

	require.NoError(t, r.CheckOverdueTasks(context.Background()))
	assert.Empty(t, store.created, "never mint when the dedup check cannot be trusted")
}
