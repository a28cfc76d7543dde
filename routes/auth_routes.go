package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hissabbook/admin-api/handlers"
	"github.com/hissabbook/admin-api/middleware"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.RegisterUser)
	auth.Post("/login", handlers.LoginUser)
	auth.Post("/logout", middleware.Protected(), handlers.LogoutUser)
	auth.Get("/me", middleware.Protected(), handlers.Me)
}
