// Package handlers implements the WorkDesk HTTP API. Handlers bind and
// validate input, call repositories or the notification service, and
// render the JSON envelope; errors flow through the ErrorHandler
// middleware via c.Error.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"workdesk.io/workdesk/internal/api/middleware"
	"workdesk.io/workdesk/internal/notification"
	"workdesk.io/workdesk/internal/realtime"
	"workdesk.io/workdesk/internal/repository"
	apperrors "workdesk.io/workdesk/internal/pkg/errors"
)

// Server implements all API handlers.
type Server struct {
	users         *repository.UserRepo
	tasks         *repository.TaskRepo
	meetings      *repository.MeetingRepo
	categories    *repository.CategoryRepo
	documents     *repository.DocumentRepo
	reports       *repository.ReportRepo
	notifications *repository.NotificationRepo
	notifier      *notification.Service
	hub           *realtime.Hub
	jwtCfg        middleware.JWTConfig
}

// ServerDeps holds all dependencies for creating a Server. Manual DI, no
// wire framework.
type ServerDeps struct {
	Users         *repository.UserRepo
	Tasks         *repository.TaskRepo
	Meetings      *repository.MeetingRepo
	Categories    *repository.CategoryRepo
	Documents     *repository.DocumentRepo
	Reports       *repository.ReportRepo
	Notifications *repository.NotificationRepo
	Notifier      *notification.Service
	Hub           *realtime.Hub // nil when the realtime surface is disabled
	JWTCfg        middleware.JWTConfig
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	return &Server{
		users:         deps.Users,
		tasks:         deps.Tasks,
		meetings:      deps.Meetings,
		categories:    deps.Categories,
		documents:     deps.Documents,
		reports:       deps.Reports,
		notifications: deps.Notifications,
		notifier:      deps.Notifier,
		hub:           deps.Hub,
		jwtCfg:        deps.JWTCfg,
	}
}

// ok renders the success envelope.
func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// okMessage renders a success envelope with a human message and no data.
func okMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// pathID parses a positive int64 path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}

// fail routes an error through the middleware, translating a missing row
// into the given not-found code.
func fail(c *gin.Context, err error, notFoundCode, notFoundMsg string) {
	if errors.Is(err, pgx.ErrNoRows) {
		c.Error(apperrors.NotFound(notFoundCode, notFoundMsg))
		return
	}
	c.Error(err)
}
