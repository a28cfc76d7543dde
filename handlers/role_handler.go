package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hissabbook/admin-api/database"
	"github.com/hissabbook/admin-api/models"
)

// ListRoles returns every role with its member count.
func ListRoles(c *fiber.Ctx) error {
	type roleRow struct {
		ID          string
		Name        string
		Description *string
		UserCount   int
	}
	var rows []roleRow
	err := database.DB.Table("roles r").
		Select(`r.id, r.name, r.description,
			(SELECT COUNT(*) FROM user_roles ur WHERE ur.role_id = r.id) AS user_count`).
		Order("r.name ASC").
		Scan(&rows).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch roles"})
	}

	roles := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, fiber.Map{
			"id":          row.ID,
			"name":        row.Name,
			"description": row.Description,
			"userCount":   row.UserCount,
		})
	}
	return c.JSON(fiber.Map{"roles": roles})
}

// rolePermissions is the static capability matrix shown in the admin panel.
// Enforcement happens in middleware; this is the display source of truth.
var rolePermissions = map[string][]string{
	models.RoleAdmin: {
		"users:read", "users:write", "users:delete",
		"roles:read", "roles:write",
		"books:read", "books:write",
		"businesses:read", "businesses:write",
		"wallets:read",
		"transactions:read",
		"payouts:read", "payouts:process",
		"reports:read",
	},
	models.RoleManagers: {
		"users:read",
		"books:read",
		"transactions:read",
		"payouts:read",
	},
	models.RoleStaff: {
		"books:read",
		"payouts:create",
	},
	models.RoleAgents: {
		"books:read",
		"payouts:create",
	},
	models.RoleAuditor: {
		"books:read",
		"transactions:read",
		"payouts:read",
		"reports:read",
	},
}

// GetRolePermissions returns the whole matrix, or one role's list when the
// role query param is present.
func GetRolePermissions(c *fiber.Ctx) error {
	if name := c.Query("role"); name != "" {
		perms, ok := rolePermissions[name]
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Role not found"})
		}
		return c.JSON(fiber.Map{"role": name, "permissions": perms})
	}
	return c.JSON(fiber.Map{"permissions": rolePermissions})
}
