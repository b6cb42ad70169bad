package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workdesk.io/workdesk/internal/domain"
	apperrors "workdesk.io/workdesk/internal/pkg/errors"
)

// svcStore layers row creation on top of memStore's claim semantics.
type svcStore struct {
	*memStore
	nextID    int64
	createErr error
}

func newSvcStore() *svcStore {
	return &svcStore{memStore: newMemStore()}
}

func (s *svcStore) Create(_ context.Context, p domain.CreateNotificationParams) (*domain.Notification, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return &domain.Notification{
		ID:            s.nextID,
		UserID:        p.UserID,
		TypeID:        p.TypeID,
		Title:         p.Title,
		Message:       p.Message,
		ScheduledTime: p.ScheduledTime,
		Priority:      p.Priority,
		Metadata:      p.Metadata,
	}, nil
}

type fakeUsers struct {
	users map[int64]*domain.User
	err   error
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("no such user")
	}
	return u, nil
}

func validParams(scheduled time.Time) domain.CreateNotificationParams {
	return domain.CreateNotificationParams{
		UserID:        10,
		TypeID:        domain.TypeIDSystem,
		Title:         "Maintenance window",
		Message:       "The system restarts at midnight",
		ScheduledTime: scheduled,
		Priority:      domain.PriorityMedium,
	}
}

func TestServiceCreate_Validation(t *testing.T) {
	s := NewService(newSvcStore(), &fakeUsers{}, nil, testPools(t))

	cases := []struct {
		name   string
		mutate func(*domain.CreateNotificationParams)
	}{
		{"missing user", func(p *domain.CreateNotificationParams) { p.UserID = 0 }},
		{"missing type", func(p *domain.CreateNotificationParams) { p.TypeID = 0 }},
		{"missing title", func(p *domain.CreateNotificationParams) { p.Title = "" }},
		{"missing message", func(p *domain.CreateNotificationParams) { p.Message = "" }},
		{"zero schedule", func(p *domain.CreateNotificationParams) { p.ScheduledTime = time.Time{} }},
		{"bad priority", func(p *domain.CreateNotificationParams) { p.Priority = "critical" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams(time.Now())
			tc.mutate(&p)
			_, err := s.Create(context.Background(), p)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
		})
	}
}

func TestServiceCreate_StoreError(t *testing.T) {
	store := newSvcStore()
	store.createErr = errors.New("insert failed")
	s := NewService(store, &fakeUsers{}, nil, testPools(t))

	_, err := s.Create(context.Background(), validParams(time.Now()))
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeDatabaseError, appErr.Code)
}

func TestServiceCreate_DueNow_ClaimsThenDelivers(t *testing.T) {
	store := newSvcStore()
	users := &fakeUsers{users: map[int64]*domain.User{10: {ID: 10, FCMToken: longToken}}}
	ch := &recordChannel{name: "record"}
	s := NewService(store, users, []Channel{ch}, testPools(t))

	n, err := s.Create(context.Background(), validParams(time.Now().Add(-time.Minute)))
	require.NoError(t, err)
	require.NotNil(t, n)

	require.Eventually(t, func() bool { return ch.count() == 1 },
		2*time.Second, 10*time.Millisecond)

	ch.mu.Lock()
	got := ch.delivered[0]
	ch.mu.Unlock()
	assert.True(t, got.Instant)
	assert.Equal(t, domain.TypeCodeSystem, got.TypeCode)
	assert.Equal(t, longToken, got.FCMToken)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.True(t, store.claimed[n.ID], "due notifications are claimed before instant delivery")
}

func TestServiceCreate_DueNow_LostClaimSkipsDelivery(t *testing.T) {
	store := newSvcStore()
	users := &fakeUsers{users: map[int64]*domain.User{10: {ID: 10}}}
	ch := &recordChannel{name: "record"}
	s := NewService(store, users, []Channel{ch}, testPools(t))

	// The dispatch loop already claimed id 1.
	store.claimed[1] = true

	_, err := s.Create(context.Background(), validParams(time.Now().Add(-time.Minute)))
	require.NoError(t, err)

	assert.Never(t, func() bool { return ch.count() > 0 },
		300*time.Millisecond, 20*time.Millisecond,
		"losing the claim race must suppress the instant delivery")
}

func TestServiceCreate_Future_DeliversWithoutClaiming(t *testing.T) {
	store := newSvcStore()
	users := &fakeUsers{users: map[int64]*domain.User{10: {ID: 10}}}
	ch := &recordChannel{name: "record"}
	s := NewService(store, users, []Channel{ch}, testPools(t))

	n, err := s.Create(context.Background(), validParams(time.Now().Add(time.Hour)))
	require.NoError(t, err)

	// The heads-up goes out now; the row stays unclaimed so the loop
	// delivers it again at its scheduled time.
	require.Eventually(t, func() bool { return ch.count() == 1 },
		2*time.Second, 10*time.Millisecond)
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.False(t, store.claimed[n.ID])
}

func TestServiceCreate_UserLookupFailureOnlySkipsInstant(t *testing.T) {
	store := newSvcStore()
	users := &fakeUsers{err: errors.New("db gone")}
	ch := &recordChannel{name: "record"}
	s := NewService(store, users, []Channel{ch}, testPools(t))

	n, err := s.Create(context.Background(), validParams(time.Now()))
	require.NoError(t, err, "the row is persisted; instant delivery is best-effort")
	require.NotNil(t, n)

	assert.Never(t, func() bool { return ch.count() > 0 },
		300*time.Millisecond, 20*time.Millisecond)
}
