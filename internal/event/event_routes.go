package event

import (
	"github.com/BizDaniel/go2play/config"
	"github.com/BizDaniel/go2play/internal/group"
	"github.com/BizDaniel/go2play/internal/middleware"
	"github.com/BizDaniel/go2play/internal/notification"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// EventRoutes sets up all event-related routes.
func EventRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	eventRepo := NewGormEventRepository(db)
	notifRepo := notification.NewGormNotificationRepository(db)
	groupRepo := group.NewGormGroupRepository(db)
	eventController := NewEventController(eventRepo, notifRepo, groupRepo)

	events := router.Group("/events")
	events.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		events.POST("", eventController.CreateEvent)
		events.GET("", eventController.GetEvents)
		events.GET("/available", eventController.GetAvailableEvents)
		events.GET("/schedule", eventController.GetFieldSchedule)
		events.GET("/user", eventController.GetUserEvents)
		events.GET("/:id", eventController.GetEventByID)
		events.PUT("/:id", eventController.UpdateEvent)
		events.POST("/:id/invite", eventController.InvitePlayer)
		events.POST("/:id/join", eventController.JoinEvent)
		events.POST("/:id/leave", eventController.LeaveEvent)
		events.POST("/:id/cancel", eventController.CancelEvent)
	}

	admin := router.Group("/admin/events")
	admin.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		admin.POST("/complete-elapsed", eventController.CompleteElapsedEvents)
	}
}
