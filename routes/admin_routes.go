package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hissabbook/admin-api/handlers"
	"github.com/hissabbook/admin-api/middleware"
)

func AdminRoutes(app *fiber.App) {
	admin := app.Group("/api/admin", middleware.Protected(), middleware.AdminRequired())

	users := admin.Group("/users")
	users.Get("/admin", handlers.GetAdminUsers)
	users.Get("/all", handlers.GetAllUsers)
	users.Get("/", handlers.GetEndUsers)
	users.Post("/", handlers.CreateUser)
	users.Patch("/:id", handlers.UpdateUser)
	users.Patch("/:id/ban", handlers.BanUser)
	users.Delete("/:id", handlers.DeleteUser)

	admin.Get("/roles", handlers.ListRoles)
	admin.Get("/roles-permissions", handlers.GetRolePermissions)

	books := admin.Group("/books")
	books.Get("/", handlers.ListBooks)
	books.Post("/", handlers.CreateBook)
	books.Get("/:id", handlers.GetBook)
	books.Get("/:id/users", handlers.ListBookUsers)
	books.Post("/:id/users", handlers.AddBookUser)
	books.Delete("/:id/users/:userId", handlers.RemoveBookUser)

	wallets := admin.Group("/wallets")
	wallets.Get("/", handlers.ListWallets)
	wallets.Get("/business", handlers.ListBusinessWallets)

	transactions := admin.Group("/transactions")
	transactions.Get("/", handlers.ListTransactions)
	transactions.Get("/book/:bookId", handlers.ListBookTransactions)

	dashboard := admin.Group("/dashboard")
	dashboard.Get("/stats", handlers.GetDashboardStats)
	dashboard.Get("/payout-queue", handlers.GetPayoutQueue)

	reports := admin.Group("/reports")
	reports.Get("/transactions", handlers.ExportTransactionsReport)
}
