package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hissabbook/admin-api/handlers"
	"github.com/hissabbook/admin-api/middleware"
)

func BusinessRoutes(app *fiber.App) {
	api := app.Group("/api")

	businesses := api.Group("/businesses", middleware.Protected())
	businesses.Get("/", handlers.ListBusinesses)
	businesses.Post("/", handlers.CreateBusiness)
	businesses.Patch("/:id", handlers.UpdateBusiness)
	businesses.Delete("/:id", handlers.DeleteBusiness)
}
