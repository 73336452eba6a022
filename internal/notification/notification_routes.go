package notification

import (
	"github.com/BizDaniel/go2play/config"
	"github.com/BizDaniel/go2play/internal/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NotificationRoutes sets up all notification-related routes. Everything here
// requires authentication.
func NotificationRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, eventJoiner EventJoiner, groupJoiner GroupJoiner) {
	notifRepo := NewGormNotificationRepository(db)
	notifController := NewNotificationController(notifRepo, eventJoiner, groupJoiner)

	notifications := router.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		notifications.GET("", notifController.GetNotifications)
		notifications.POST("/:id/respond", notifController.RespondToNotification)
		notifications.POST("/:id/read", notifController.MarkRead)
		notifications.POST("/read-all", notifController.MarkAllRead)
		notifications.DELETE("/:id", notifController.DeleteNotification)
	}
}
