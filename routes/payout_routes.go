package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hissabbook/admin-api/handlers"
	"github.com/hissabbook/admin-api/middleware"
)

func PayoutRoutes(app *fiber.App) {
	api := app.Group("/api")

	payouts := api.Group("/payout-requests", middleware.Protected())
	payouts.Post("/", handlers.CreatePayoutRequest)
	payouts.Get("/", middleware.AdminRequired(), handlers.ListPayoutRequests)
	payouts.Patch("/:id/status", middleware.AdminRequired(), handlers.ProcessPayoutRequest)
}
