package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/hissabbook/admin-api/database"
	"github.com/hissabbook/admin-api/middleware"
	"github.com/hissabbook/admin-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserAdminApp(t *testing.T) *fiber.App {
	t.Helper()
	setupTestApp(t)

	app := fiber.New()
	admin := app.Group("/api/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Post("/users", CreateUser)
	return app
}

func TestCreateUserProvisionsWalletAndRole(t *testing.T) {
	app := setupUserAdminApp(t)
	adminUser := seedUser(t, "admin@example.com")
	role := models.Role{Name: models.RoleStaff}
	require.NoError(t, database.DB.Create(&role).Error)

	token := signToken(t, adminUser.ID, []string{"admin"})
	req := jsonRequest(t, fiber.MethodPost, "/api/admin/users", token, fiber.Map{
		"email":     "new.staff@example.com",
		"password":  "changeme123",
		"firstName": "Ravi",
		"phone":     "+91 98765 43210",
		"role":      "staff",
	})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	created := body["user"].(map[string]interface{})
	assert.Equal(t, "new.staff@example.com", created["email"])
	assert.Equal(t, "919876543210@hissabbook", created["upiId"])

	var user models.User
	require.NoError(t, database.DB.First(&user, "email = ?", "new.staff@example.com").Error)

	// The new user starts with a zero-balance wallet.
	var wallet models.Wallet
	require.NoError(t, database.DB.First(&wallet, "user_id = ?", user.ID).Error)
	assert.Equal(t, 0.0, wallet.Balance)
	assert.Equal(t, "INR", wallet.CurrencyCode)

	var assignments int64
	database.DB.Model(&models.UserRole{}).Where("user_id = ?", user.ID).Count(&assignments)
	assert.Equal(t, int64(1), assignments)
}
