package feed

import (
	"time"

	"github.com/BizDaniel/go2play/config"
	"github.com/BizDaniel/go2play/internal/cache"
	"github.com/BizDaniel/go2play/internal/event"
	"github.com/BizDaniel/go2play/internal/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FeedRoutes sets up all feed session routes. Everything here requires
// authentication.
func FeedRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	eventRepo := event.NewGormEventRepository(db)
	sharedCache := cache.NewStore()
	debounce := time.Duration(appConfig.Feed.SearchDebounceMillis) * time.Millisecond
	feedController := NewFeedController(eventRepo, eventRepo, sharedCache, debounce)

	cacheGroup := router.Group("/feed")
	cacheGroup.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		cacheGroup.GET("/cache", feedController.CachedEvents)
	}

	sessions := router.Group("/feed/sessions")
	sessions.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		sessions.POST("", feedController.CreateSession)
		sessions.GET("/:id/stream", feedController.Stream)
		sessions.POST("/:id/search", feedController.Search)
		sessions.POST("/:id/refresh", feedController.Refresh)
		sessions.POST("/:id/join", feedController.Join)
		sessions.POST("/:id/leave", feedController.Leave)
		sessions.DELETE("/:id", feedController.CloseSession)
	}
}
