package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	payoutws "github.com/hissabbook/admin-api/websocket"
)

func WebsocketRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Use("/ws/payouts", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws/payouts", websocket.New(payoutws.Serve))
}
