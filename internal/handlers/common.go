// Package handlers contains the Fiber HTTP handlers. Handlers parse and
// validate transport concerns and delegate everything else to the service
// layer; they never touch the database directly.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"velvet/internal/models"
)

// currentUserID extracts the authenticated user id placed in the request
// context by the auth middleware.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return 0, false
	}
	return claims.UserID, true
}
