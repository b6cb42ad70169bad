package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workdesk.io/workdesk/internal/api/middleware"
	"workdesk.io/workdesk/internal/domain"
	"workdesk.io/workdesk/internal/notification"
	"workdesk.io/workdesk/internal/pkg/logger"
	"workdesk.io/workdesk/internal/pkg/worker"
	"workdesk.io/workdesk/internal/repository"
	"workdesk.io/workdesk/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Init("error", "json")
}

type notifAPI struct {
	router *gin.Engine
	pool   *pgxpool.Pool
	repo   *repository.NotificationRepo
	userID int64
}

// newNotifAPI wires the notification surface against a real database with
// the auth middleware replaced by a stub identity.
func newNotifAPI(t *testing.T) *notifAPI {
	t.Helper()

	pool := testutil.OpenMigratedPool(t, "handlers_notif")

	var userID int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO users (username, email, password_hash, fcm_token)
		VALUES ('alice', 'alice@example.com', 'x', 'tok')
		RETURNING id`,
	).Scan(&userID)
	require.NoError(t, err)

	pools, err := worker.NewPools(context.Background(), worker.DefaultPoolConfig())
	require.NoError(t, err)
	t.Cleanup(pools.Shutdown)

	users := repository.NewUserRepo(pool)
	notifications := repository.NewNotificationRepo(pool)
	server := NewServer(ServerDeps{
		Users:         users,
		Notifications: notifications,
		Notifier:      notification.NewService(notifications, users, nil, pools),
	})

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(
			middleware.SetUserContext(c.Request.Context(), userID, "alice"))
		c.Next()
	})

	g := router.Group("/api/v1")
	g.GET("/notifications", server.ListNotifications)
	g.GET("/notifications/unread-count", server.UnreadCount)
	g.GET("/notifications/types", server.NotificationTypes)
	g.GET("/notifications/:id", server.GetNotification)
	g.POST("/notifications", server.CreateNotification)
	g.PATCH("/notifications/:id/read", server.MarkNotificationRead)
	g.PATCH("/notifications/read-all", server.MarkAllNotificationsRead)
	g.DELETE("/notifications/:id", server.DeleteNotification)
	g.POST("/notifications/fcm-token", server.UpdateFCMToken)

	return &notifAPI{router: router, pool: pool, repo: notifications, userID: userID}
}

func (a *notifAPI) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func (a *notifAPI) seed(t *testing.T, title string, p domain.Priority) int64 {
	t.Helper()
	n, err := a.repo.Create(context.Background(), domain.CreateNotificationParams{
		UserID: a.userID, TypeID: domain.TypeIDSystem,
		Title: title, Message: "m", ScheduledTime: time.Now(), Priority: p,
	})
	require.NoError(t, err)
	return n.ID
}

func TestNotificationEndpoints_CreateAndGet(t *testing.T) {
	api := newNotifAPI(t)

	w, body := api.do(t, http.MethodPost, "/api/v1/notifications", domain.CreateNotificationParams{
		UserID: api.userID, TypeID: domain.TypeIDSystem,
		Title: "Maintenance", Message: "Tonight", ScheduledTime: time.Now(),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	id := int64(data["id"].(float64))

	w, body = api.do(t, http.MethodGet, fmt.Sprintf("/api/v1/notifications/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := body["data"].(map[string]any)
	assert.Equal(t, "Maintenance", got["title"])
	assert.Equal(t, "system", got["type_code"])
}

func TestNotificationEndpoints_CreateValidation(t *testing.T) {
	api := newNotifAPI(t)

	w, body := api.do(t, http.MethodPost, "/api/v1/notifications", map[string]any{
		"user_id": api.userID, "type_id": domain.TypeIDSystem,
		"message": "no title", "scheduled_time": time.Now(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "VALIDATION_FAILED", body["code"])
}

func TestNotificationEndpoints_ListFilters(t *testing.T) {
	api := newNotifAPI(t)
	api.seed(t, "a", domain.PriorityUrgent)
	read := api.seed(t, "b", domain.PriorityLow)

	_, err := api.repo.MarkRead(context.Background(), read, api.userID)
	require.NoError(t, err)

	w, body := api.do(t, http.MethodGet, "/api/v1/notifications?is_read=false", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["total"])

	w, body = api.do(t, http.MethodGet, "/api/v1/notifications?priority=low", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["total"])

	w, _ = api.do(t, http.MethodGet, "/api/v1/notifications?priority=severe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(t, http.MethodGet, "/api/v1/notifications?is_read=perhaps", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationEndpoints_ReadTracking(t *testing.T) {
	api := newNotifAPI(t)
	id := api.seed(t, "a", domain.PriorityMedium)
	api.seed(t, "b", domain.PriorityMedium)

	w, body := api.do(t, http.MethodGet, "/api/v1/notifications/unread-count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["count"])

	w, _ = api.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/notifications/%d/read", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// A second mark of the same row is a 404: nothing transitioned.
	w, _ = api.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/notifications/%d/read", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = api.do(t, http.MethodPatch, "/api/v1/notifications/read-all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])

	w, body = api.do(t, http.MethodGet, "/api/v1/notifications/unread-count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["count"])
}

func TestNotificationEndpoints_DeleteAndNotFound(t *testing.T) {
	api := newNotifAPI(t)
	id := api.seed(t, "a", domain.PriorityMedium)

	w, _ := api.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/notifications/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/notifications/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(t, http.MethodGet, "/api/v1/notifications/999999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(t, http.MethodGet, "/api/v1/notifications/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationEndpoints_Types(t *testing.T) {
	api := newNotifAPI(t)

	w, body := api.do(t, http.MethodGet, "/api/v1/notifications/types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 4)
}

func TestNotificationEndpoints_FCMToken(t *testing.T) {
	api := newNotifAPI(t)

	w, _ := api.do(t, http.MethodPost, "/api/v1/notifications/fcm-token",
		map[string]string{"fcm_token": "new-device-token"})
	require.Equal(t, http.StatusOK, w.Code)

	var stored string
	err := api.pool.QueryRow(context.Background(),
		`SELECT fcm_token FROM users WHERE id = $1`, api.userID).Scan(&stored)
	require.NoError(t, err)
	assert.Equal(t, "new-device-token", stored)

	w, _ = api.do(t, http.MethodPost, "/api/v1/notifications/fcm-token", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
