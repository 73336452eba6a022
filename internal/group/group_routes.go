package group

import (
	"github.com/BizDaniel/go2play/config"
	"github.com/BizDaniel/go2play/internal/middleware"
	"github.com/BizDaniel/go2play/internal/notification"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GroupRoutes sets up all group-related routes. Everything here requires
// authentication.
func GroupRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	groupRepo := NewGormGroupRepository(db)
	notifRepo := notification.NewGormNotificationRepository(db)
	groupController := NewGroupController(groupRepo, notifRepo)

	groups := router.Group("/groups")
	groups.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		groups.POST("", groupController.CreateGroup)
		groups.GET("", groupController.GetMyGroups)
		groups.GET("/:id", groupController.GetGroupByID)
		groups.POST("/:id/invite", groupController.InviteMember)
		groups.POST("/:id/join", groupController.JoinGroup)
		groups.POST("/:id/leave", groupController.LeaveGroup)
		groups.DELETE("/:id", groupController.DeleteGroup)
	}
}
