package main

import (
	"log"

	"github.com/BizDaniel/go2play/config"
	"github.com/BizDaniel/go2play/internal/auth"
	"github.com/BizDaniel/go2play/internal/event"
	"github.com/BizDaniel/go2play/internal/field"
	"github.com/BizDaniel/go2play/internal/group"
	"github.com/BizDaniel/go2play/internal/notification"
	"github.com/BizDaniel/go2play/internal/review"
	"github.com/BizDaniel/go2play/internal/user"
	"github.com/BizDaniel/go2play/routes"
)

// @title Go2Play REST API
// @version 1.0
// @description Sports-field booking and social matchmaking server.
// @host localhost:8088
// @BasePath /api
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	err := config.DB.AutoMigrate(
		&user.User{}, &user.RefreshToken{},
		&field.Field{},
		&event.Event{}, &event.EventPlayer{},
		&group.Group{}, &group.GroupMember{},
		&notification.Notification{},
		&review.Review{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	// Startup housekeeping
	if err := auth.NewAuthRepository(config.DB).DeleteExpiredRefreshTokens(); err != nil {
		log.Printf("Failed to delete expired refresh tokens: %v", err)
	}
	if n, err := event.NewGormEventRepository(config.DB).CompleteElapsedEvents(); err != nil {
		log.Printf("Failed to complete elapsed events: %v", err)
	} else if n > 0 {
		log.Printf("Marked %d elapsed events completed", n)
	}

	r := routes.SetupRoutes()

	// Use port from loaded configuration
	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
