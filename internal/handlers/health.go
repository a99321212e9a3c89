package handlers

import (
	"github.com/gofiber/fiber/v2"

	"velvet/internal/repositories"
)

// Health is a liveness probe.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready reports whether the database and cache are reachable.
func Ready(c *fiber.Ctx) error {
	checks := fiber.Map{"database": "ok", "cache": "ok"}
	healthy := true

	sqlDB, err := repositories.DB.DB()
	if err != nil || sqlDB.PingContext(c.Context()) != nil {
		checks["database"] = "unreachable"
		healthy = false
	}

	if repositories.CacheService == nil || repositories.CacheService.HealthCheck(c.Context()) != nil {
		checks["cache"] = "unreachable"
		healthy = false
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(checks)
	}
	return c.JSON(checks)
}
