package app

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"workdesk.io/workdesk/internal/api/handlers"
	"workdesk.io/workdesk/internal/api/middleware"
	"workdesk.io/workdesk/internal/config"
)

func newRouter(cfg *config.Config, server *handlers.Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.ErrorHandler())
	router.Use(cors.New(corsConfig(cfg)))

	// Public surface. The websocket endpoint authenticates itself via a
	// token query parameter inside the handler.
	router.GET("/health", server.Health)
	router.GET("/ws", server.ServeWS)

	v1 := router.Group("/api/v1")
	v1.POST("/auth/login", server.Login)

	auth := v1.Group("")
	auth.Use(middleware.JWTAuth([]byte(cfg.Security.JWTSecret)))
	{
		auth.GET("/auth/me", server.Me)

		auth.GET("/categories", server.ListCategories)
		auth.POST("/categories", server.CreateCategory)
		auth.GET("/categories/:id", server.GetCategory)
		auth.GET("/categories/:id/children", server.CategoryChildren)
		auth.PUT("/categories/:id", server.UpdateCategory)
		auth.DELETE("/categories/:id", server.DeleteCategory)

		auth.GET("/documents", server.ListDocuments)
		auth.POST("/documents", server.CreateDocument)
		auth.GET("/documents/:id", server.GetDocument)
		auth.GET("/documents/uuid/:uuid", server.GetDocumentByUUID)
		auth.PUT("/documents/:id", server.UpdateDocument)
		auth.DELETE("/documents/:id", server.DeleteDocument)

		auth.GET("/reports", server.ListReports)
		auth.POST("/reports", server.CreateReport)
		auth.GET("/reports/:id", server.GetReport)
		auth.PUT("/reports/:id", server.UpdateReport)
		auth.DELETE("/reports/:id", server.DeleteReport)

		auth.GET("/tasks", server.ListTasks)
		auth.GET("/tasks/overdue", server.ListOverdueTasks)
		auth.POST("/tasks", server.CreateTask)
		auth.GET("/tasks/:id", server.GetTask)
		auth.PUT("/tasks/:id", server.UpdateTask)
		auth.DELETE("/tasks/:id", server.DeleteTask)

		auth.GET("/meetings", server.ListMeetings)
		auth.GET("/meetings/upcoming", server.ListUpcomingMeetings)
		auth.POST("/meetings", server.CreateMeeting)
		auth.GET("/meetings/:id", server.GetMeeting)
		auth.PUT("/meetings/:id", server.UpdateMeeting)
		auth.DELETE("/meetings/:id", server.DeleteMeeting)
		auth.GET("/meetings/:id/participants", server.MeetingParticipants)
		auth.POST("/meetings/:id/respond", server.RespondMeeting)

		auth.GET("/notifications", server.ListNotifications)
		auth.POST("/notifications", server.CreateNotification)
		auth.GET("/notifications/unread-count", server.UnreadCount)
		auth.GET("/notifications/types", server.NotificationTypes)
		auth.GET("/notifications/:id", server.GetNotification)
		auth.PATCH("/notifications/:id/read", server.MarkNotificationRead)
		auth.PATCH("/notifications/read-all", server.MarkAllNotificationsRead)
		auth.DELETE("/notifications/:id", server.DeleteNotification)
		auth.POST("/notifications/fcm-token", server.UpdateFCMToken)
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	if cfg.CORS.Origin == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORS.Origin}
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	return corsCfg
}
