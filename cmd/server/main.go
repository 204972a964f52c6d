package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"shule_transit/internal/config"
	"shule_transit/internal/controllers"
	"shule_transit/internal/logger"
	"shule_transit/internal/middleware"
	"shule_transit/internal/notify"
	"shule_transit/internal/routes"
	"shule_transit/internal/schedule"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	// Notification targets: log everything, broadcast to admin dashboards.
	hub := notify.NewHub()
	controllers.EventHub = hub

	// Scheduling engine
	engine := schedule.NewEngine(
		schedule.NewGormStore(config.DB),
		schedule.PolicyFromEnv(),
		notify.Fanout{notify.LogEmitter{}, hub},
	)
	controllers.Scheduler = engine

	// System-driven completion sweep for past trips.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.RunCompletionSweep(ctx, time.Hour)

	// Setup Gin router
	r := routes.SetupRouter()

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	log.Println("🚀 Server running at :8080")
	log.Fatal(http.ListenAndServe("0.0.0.0:8080", handler))
}
