package review

import (
	"github.com/BizDaniel/go2play/config"
	"github.com/BizDaniel/go2play/internal/event"
	"github.com/BizDaniel/go2play/internal/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ReviewRoutes sets up all review-related routes. Everything here requires
// authentication.
func ReviewRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	reviewRepo := NewGormReviewRepository(db)
	eventRepo := event.NewGormEventRepository(db)
	reviewController := NewReviewController(reviewRepo, eventRepo)

	reviews := router.Group("/reviews")
	reviews.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		reviews.POST("", reviewController.CreateReview)
		reviews.GET("/candidates", reviewController.GetMyCandidates)
		reviews.GET("/eligible/:event_id", reviewController.GetEligiblePairs)
		reviews.GET("/user/:user_id", reviewController.GetUserReviews)
		reviews.GET("/user/:user_id/summary", reviewController.GetRatingSummary)
	}
}
