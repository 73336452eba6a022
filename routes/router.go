package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/BizDaniel/go2play/config"
	"github.com/BizDaniel/go2play/internal/auth"
	"github.com/BizDaniel/go2play/internal/event"
	"github.com/BizDaniel/go2play/internal/feed"
	"github.com/BizDaniel/go2play/internal/field"
	"github.com/BizDaniel/go2play/internal/group"
	"github.com/BizDaniel/go2play/internal/notification"
	"github.com/BizDaniel/go2play/internal/review"
)

func SetupRoutes() *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	db := config.DB
	appConfig := config.GetConfig()

	// Welcome page
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(`
			<html>
				<head><title>Go2Play</title></head>
				<body style="text-align:center; margin-top: 40px;">
					<h1>Go2Play ⚽</h1>
					<p>Find a field, fill a match.</p>
				</body>
			</html>
		`))
	})

	// API routes
	api := r.Group("/api")
	auth.RegisterAuthRoutes(api, db, appConfig)
	field.FieldRoutes(api, db, appConfig)
	event.EventRoutes(api, db, appConfig)
	group.GroupRoutes(api, db, appConfig)
	review.ReviewRoutes(api, db, appConfig)
	feed.FeedRoutes(api, db, appConfig)

	eventRepo := event.NewGormEventRepository(db)
	groupRepo := group.NewGormGroupRepository(db)
	notification.NotificationRoutes(api, db, appConfig, eventRepo, groupRepo)

	return r
}
