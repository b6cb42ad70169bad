package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"workdesk.io/workdesk/internal/api/middleware"
	"workdesk.io/workdesk/internal/domain"
	apperrors "workdesk.io/workdesk/internal/pkg/errors"
	"workdesk.io/workdesk/internal/repository"
)

type createTaskRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Priority    domain.Priority `json:"priority"`
	DueDate     *time.Time      `json:"due_date"`
}

// CreateTask inserts a task owned by the caller.
func (s *Server) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "title is required"))
		return
	}
	if req.Priority != "" && !req.Priority.Valid() {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "priority must be one of urgent, high, medium, low"))
		return
	}

	task, err := s.tasks.Create(c.Request.Context(), repository.CreateTaskParams{
		UserID:      middleware.GetUserID(c.Request.Context()),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, http.StatusCreated, task)
}

// ListTasks returns the caller's tasks, optionally filtered by status.
func (s *Server) ListTasks(c *gin.Context) {
	userID := middleware.GetUserID(c.Request.Context())
	tasks, err := s.tasks.ListByUser(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, http.StatusOK, tasks)
}

// GetTask returns one task by id.
func (s *Server) GetTask(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	task, err := s.tasks.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err, apperrors.CodeTaskNotFound, "task not found")
		return
	}
	ok(c, http.StatusOK, task)
}

type updateTaskRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Status      *string          `json:"status"`
	Priority    *domain.Priority `json:"priority"`
	DueDate     *time.Time       `json:"due_date"`
	ClearDue    bool             `json:"clear_due_date"`
}

// UpdateTask applies a partial update.
func (s *Server) UpdateTask(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid task payload"))
		return
	}
	if req.Priority != nil && !req.Priority.Valid() {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "priority must be one of urgent, high, medium, low"))
		return
	}

	task, err := s.tasks.Update(c.Request.Context(), id, repository.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		ClearDue:    req.ClearDue,
	})
	if err != nil {
		fail(c, err, apperrors.CodeTaskNotFound, "task not found")
		return
	}
	ok(c, http.StatusOK, task)
}

// DeleteTask removes a task.
func (s *Server) DeleteTask(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	deleted, err := s.tasks.Delete(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	if !deleted {
		c.Error(apperrors.NotFound(apperrors.CodeTaskNotFound, "task not found"))
		return
	}
	okMessage(c, "Task deleted successfully")
}

// ListOverdueTasks returns the caller's incomplete tasks past their due
// date.
func (s *Server) ListOverdueTasks(c *gin.Context) {
	userID := middleware.GetUserID(c.Request.Context())
	tasks, err := s.tasks.OverdueByUser(c.Request.Context(), userID, time.Now())
	if err != nil {
		c.Error(err)
		return
	}
	ok(c, http.StatusOK, tasks)
}
