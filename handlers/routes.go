// handlers/routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// SetupCommandRoutes wires the transport-facing endpoints. Gateway auth is
// applied globally in main, so these stay unadorned.
func SetupCommandRoutes(app *fiber.App, h *CommandHandler) {
	app.Post("/messages", h.HandleMessage)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
