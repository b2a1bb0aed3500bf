package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/roohithbala/placement/database"
)

// HandleCheckHealth reports service and database liveness.
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	dbStatus := "ok"
	if err := store.HealthCheck(); err != nil {
		dbStatus = "unreachable"
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"database": dbStatus,
	})
}
