package field

import (
	"github.com/BizDaniel/go2play/config"
	mw "github.com/BizDaniel/go2play/internal/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FieldRoutes sets up all field-related routes.
func FieldRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	fieldRepo := NewFieldRepository(db)
	fieldController := NewFieldController(fieldRepo)

	// Public catalogue
	fields := router.Group("/fields")
	{
		fields.GET("", fieldController.GetAllFields)
		fields.GET("/:field_id", fieldController.GetFieldByID)
	}

	// Authenticated seeding
	fieldsProtected := router.Group("/fields")
	fieldsProtected.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		fieldsProtected.POST("", fieldController.CreateField)
	}
}
