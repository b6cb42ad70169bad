package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"workdesk.io/workdesk/internal/api/middleware"
	"workdesk.io/workdesk/internal/domain"
	apperrors "workdesk.io/workdesk/internal/pkg/errors"
	"workdesk.io/workdesk/internal/repository"
)

// ListNotifications returns the caller's notifications with optional
// is_read and priority filters.
func (s *Server) ListNotifications(c *gin.Context) {
	userID := middleware.GetUserID(c.Request.Context())

	var filters repository.ListFilters
	if v, present := c.GetQuery("is_read"); present {
		isRead, err := strconv.ParseBool(v)
		if err != nil {
			c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "is_read must be a boolean"))
			return
		}
		filters.IsRead = &isRead
	}
	if v := c.Query("priority"); v != "" {
		p := domain.Priority(v)
		if !p.Valid() {
			c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "priority must be one of urgent, high, medium, low"))
			return
		}
		filters.Priority = p
	}
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filters.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	page, err := s.notifications.ListByUser(c.Request.Context(), userID, filters)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page.Data,
		"total":   page.Total,
		"limit":   page.Limit,
		"offset":  page.Offset,
	})
}

// UnreadCount returns the caller's unread notification count.
func (s *Server) UnreadCount(c *gin.Context) {
	userID := middleware.GetUserID(c.Request.Context())
	count, err := s.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// NotificationTypes returns the notification type catalog.
func (s *Server) NotificationTypes(c *gin.Context) {
	types, err := s.notifications.Types(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, http.StatusOK, types)
}

// GetNotification returns one notification by id.
func (s *Server) GetNotification(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	n, err := s.notifications.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err, apperrors.CodeNotificationNotFound, "notification not found")
		return
	}
	ok(c, http.StatusOK, n)
}

// CreateNotification inserts a notification and fires the instant
// delivery path.
func (s *Server) CreateNotification(c *gin.Context) {
	var p domain.CreateNotificationParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid notification payload"))
		return
	}

	n, err := s.notifier.Create(c.Request.Context(), p)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    n,
		"message": "Notification created successfully",
	})
}

// MarkNotificationRead marks one of the caller's notifications read.
func (s *Server) MarkNotificationRead(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	userID := middleware.GetUserID(c.Request.Context())

	updated, err := s.notifications.MarkRead(c.Request.Context(), id, userID)
	if err != nil {
		c.Error(err)
		return
	}
	if !updated {
		c.Error(apperrors.NotFound(apperrors.CodeNotificationNotFound, "notification not found or already read"))
		return
	}
	okMessage(c, "Notification marked as read")
}

// MarkAllNotificationsRead marks all the caller's notifications read.
func (s *Server) MarkAllNotificationsRead(c *gin.Context) {
	userID := middleware.GetUserID(c.Request.Context())
	count, err := s.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": strconv.FormatInt(count, 10) + " notifications marked as read",
		"count":   count,
	})
}

// DeleteNotification removes one of the caller's notifications.
func (s *Server) DeleteNotification(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	userID := middleware.GetUserID(c.Request.Context())

	deleted, err := s.notifications.Delete(c.Request.Context(), id, userID)
	if err != nil {
		c.Error(err)
		return
	}
	if !deleted {
		c.Error(apperrors.NotFound(apperrors.CodeNotificationNotFound, "notification not found"))
		return
	}
	okMessage(c, "Notification deleted successfully")
}

type fcmTokenRequest struct {
	FCMToken string `json:"fcm_token" binding:"required"`
}

// UpdateFCMToken stores the caller's push delivery address.
func (s *Server) UpdateFCMToken(c *gin.Context) {
	var req fcmTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest(apperrors.CodeMissingField, "fcm_token is required"))
		return
	}
	userID := middleware.GetUserID(c.Request.Context())

	updated, err := s.users.UpdateFCMToken(c.Request.Context(), userID, req.FCMToken)
	if err != nil {
		c.Error(err)
		return
	}
	if !updated {
		c.Error(apperrors.NotFound(apperrors.CodeUserNotFound, "user not found"))
		return
	}
	okMessage(c, "FCM token updated successfully")
}
