// Package main is the API server entry point. It initializes the
// databases, wires the routes and runs the periodic catalog sync.
package main

import (
	"context"
	"time"

	"velvet/internal/config"
	"velvet/internal/logger"
	"velvet/internal/repositories"
	"velvet/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.LoadEnv()

	log := logger.New(config.GetEnv("LOG_LEVEL", "info"), !config.IsProduction())

	if err := repositories.InitDB(); err != nil {
		log.Fatal().Err(err).Msg("database initialization failed")
	}

	sqlDB, err := repositories.DB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get database instance")
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatal().Err(err).Msg("database unreachable")
	}
	log.Info().Msg("connected to database")

	if err := repositories.CacheService.HealthCheck(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("redis unreachable")
	}
	log.Info().Msg("connected to redis")

	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close database connection")
		}
		if err := repositories.CacheService.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis connection")
		}
	}()

	app := fiber.New()

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.GetEnv("CORS_ORIGIN", "http://localhost:5173"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	services := routes.SetupRoutes(app, log)

	// Periodic catalog sync keeps the product table fresh between CRM
	// webhook deliveries. A sync on boot covers the empty-table case.
	go func() {
		interval := config.GetDurationEnv("CATALOG_SYNC_INTERVAL", 10*time.Minute)
		runSync := func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := services.Catalog.Sync(ctx); err != nil {
				log.Warn().Err(err).Msg("catalog sync failed")
			}
		}

		runSync()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			runSync()
		}
	}()

	log.Fatal().Err(app.Listen(":" + config.GetEnv("PORT", "3000"))).Msg("server stopped")
}
