package main

import (
	"log"

	"github.com/quattro-app/quattro/config"
	_ "github.com/quattro-app/quattro/docs"
	"github.com/quattro-app/quattro/internal/match"
	"github.com/quattro-app/quattro/internal/user"
	"github.com/quattro-app/quattro/routes"
)

// @title Quattro REST API
// @version 1.0
// @description Backend for organizing 4-player pickup padel matches.
// @host localhost:8088
// @BasePath /api
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	err := config.DB.AutoMigrate(
		&user.User{}, &user.RefreshToken{},
		&match.Match{}, &match.Registration{}, &match.Feedback{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	// Lifecycle events feed the notification side. Until a mailer or push
	// service is plugged in, a log line stands in for delivery.
	notifier := func(e match.Event) {
		log.Printf("event %s: match %d is %s", e.Type, e.Match.ID, e.Match.Status)
	}

	r := routes.SetupRoutes(config.DB, cfg, notifier)

	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
