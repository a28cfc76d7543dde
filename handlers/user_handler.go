package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hissabbook/admin-api/database"
	"github.com/hissabbook/admin-api/models"
	"github.com/hissabbook/admin-api/services"
	"github.com/hissabbook/admin-api/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type userRow struct {
	ID              uuid.UUID
	Email           string
	Status          string
	CreatedAt       time.Time
	LastLoginAt     *time.Time
	FirstName       *string
	LastName        *string
	Phone           *string
	UpiID           *string
	WalletBalance   *float64
	WalletCurrency  *string
	PendingRequests int
}

func userBaseQuery(db *gorm.DB) *gorm.DB {
	return db.Table("users u").
		Select(`u.id, u.email, u.status, u.created_at, u.last_login_at,
			ud.first_name, ud.last_name, ud.phone, ud.upi_id`).
		Joins("LEFT JOIN user_details ud ON u.id = ud.user_id")
}

func shapeUser(row userRow, roles []string) fiber.Map {
	primaryRole := interface{}(nil)
	if len(roles) > 0 {
		primaryRole = roles[0]
	}
	return fiber.Map{
		"id":              row.ID,
		"email":           row.Email,
		"name":            utils.DisplayName(row.FirstName, row.LastName, row.Email),
		"firstName":       row.FirstName,
		"lastName":        row.LastName,
		"phone":           row.Phone,
		"upiId":           row.UpiID,
		"status":          row.Status,
		"roles":           roles,
		"primaryRole":     primaryRole,
		"pendingRequests": row.PendingRequests,
		"createdAt":       row.CreatedAt,
		"lastLoginAt":     row.LastLoginAt,
	}
}

func rolesByUser(rows []userRow) (map[uuid.UUID][]string, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	type assignment struct {
		UserID uuid.UUID
		Name   string
	}
	var assignments []assignment
	if len(ids) > 0 {
		err := database.DB.Table("user_roles ur").
			Select("ur.user_id, r.name").
			Joins("JOIN roles r ON ur.role_id = r.id").
			Where("ur.user_id IN ?", ids).
			Order("ur.assigned_at ASC").
			Scan(&assignments).Error
		if err != nil {
			return nil, err
		}
	}
	out := make(map[uuid.UUID][]string, len(rows))
	for _, a := range assignments {
		out[a.UserID] = append(out[a.UserID], a.Name)
	}
	return out, nil
}

// GetAdminUsers lists platform admins with their wallet balances.
func GetAdminUsers(c *fiber.Ctx) error {
	var rows []userRow
	err := database.DB.Table("users u").
		Select(`u.id, u.email, u.status, u.created_at, u.last_login_at,
			ud.first_name, ud.last_name, ud.phone, ud.upi_id,
			uw.balance AS wallet_balance, uw.currency_code AS wallet_currency`).
		Joins("LEFT JOIN user_details ud ON u.id = ud.user_id").
		Joins("LEFT JOIN user_wallets uw ON u.id = uw.user_id").
		Where(`EXISTS (SELECT 1 FROM user_roles ur JOIN roles r ON ur.role_id = r.id
			WHERE ur.user_id = u.id AND r.name = ?)`, models.RoleAdmin).
		Order("u.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch admin users"})
	}

	admins := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		balance := 0.0
		if row.WalletBalance != nil {
			balance = *row.WalletBalance
		}
		currency := "INR"
		if row.WalletCurrency != nil && *row.WalletCurrency != "" {
			currency = *row.WalletCurrency
		}
		admins = append(admins, fiber.Map{
			"id":             row.ID,
			"email":          row.Email,
			"fullName":       utils.DisplayName(row.FirstName, row.LastName, row.Email),
			"firstName":      row.FirstName,
			"lastName":       row.LastName,
			"phone":          row.Phone,
			"upiId":          row.UpiID,
			"status":         row.Status,
			"walletBalance":  balance,
			"walletCurrency": currency,
			"createdAt":      row.CreatedAt,
			"lastLoginAt":    row.LastLoginAt,
		})
	}
	return c.JSON(fiber.Map{"admins": admins})
}

// GetAllUsers lists every user with roles, for owner selection dropdowns.
func GetAllUsers(c *fiber.Ctx) error {
	var rows []userRow
	if err := userBaseQuery(database.DB).Order("u.created_at DESC").Scan(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}
	roleMap, err := rolesByUser(rows)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user roles"})
	}

	users := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		users = append(users, shapeUser(row, roleMap[row.ID]))
	}
	return c.JSON(fiber.Map{"users": users})
}

var endUserRoles = []string{models.RoleStaff, models.RoleAgents, models.RoleManagers}

// GetEndUsers lists staff, agents and managers with their pending payout
// counts, optionally filtered by role.
func GetEndUsers(c *fiber.Ctx) error {
	roleFilter := c.Query("role")
	roleMapping := map[string]string{
		"Staff":   models.RoleStaff,
		"Agent":   models.RoleAgents,
		"Manager": models.RoleManagers,
	}

	q := database.DB.Table("users u").
		Select(`u.id, u.email, u.status, u.created_at, u.last_login_at,
			ud.first_name, ud.last_name, ud.phone, ud.upi_id,
			(SELECT COUNT(*) FROM payout_requests pr
			 WHERE pr.user_id = u.id AND pr.status = 'pending') AS pending_requests`).
		Joins("LEFT JOIN user_details ud ON u.id = ud.user_id")

	if roleFilter != "" && roleFilter != "All" {
		dbRole, ok := roleMapping[roleFilter]
		if !ok {
			dbRole = strings.ToLower(roleFilter)
		}
		q = q.Where(`EXISTS (SELECT 1 FROM user_roles ur JOIN roles r ON ur.role_id = r.id
			WHERE ur.user_id = u.id AND r.name = ?)`, dbRole)
	} else {
		q = q.Where(`EXISTS (SELECT 1 FROM user_roles ur JOIN roles r ON ur.role_id = r.id
			WHERE ur.user_id = u.id AND r.name IN ?)`, endUserRoles)
	}

	var rows []userRow
	if err := q.Order("u.created_at DESC").Scan(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}
	roleMap, err := rolesByUser(rows)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user roles"})
	}

	users := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		users = append(users, shapeUser(row, roleMap[row.ID]))
	}
	return c.JSON(fiber.Map{"users": users})
}

type CreateUserRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	UpiID     *string `json:"upiId"`
	Role      string  `json:"role" validate:"required,oneof=staff agents managers auditor"`
}

func CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if _, err := services.FindUserByEmail(database.DB, req.Email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already registered"})
	}

	var role models.Role
	if err := database.DB.Where("name = ?", req.Role).First(&role).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Role '" + req.Role + "' not found"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	// Derive a UPI id from the phone number when none is supplied.
	upiID := req.UpiID
	if upiID == nil && req.Phone != nil {
		if derived := utils.UpiFromPhone(*req.Phone); derived != "" {
			upiID = &derived
		}
	}

	var user models.User
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		user = models.User{
			Email:        strings.ToLower(req.Email),
			PasswordHash: string(hashed),
			Status:       models.UserStatusActive,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		detail := models.UserDetail{
			UserID:    user.ID,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			UpiID:     upiID,
		}
		if err := tx.Create(&detail).Error; err != nil {
			return err
		}
		if _, err := services.EnsureWallet(tx, user.ID); err != nil {
			return err
		}
		assignment := models.UserRole{UserID: user.ID, RoleID: role.ID, AssignedAt: time.Now()}
		return tx.Create(&assignment).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":        user.ID,
			"email":     user.Email,
			"firstName": req.FirstName,
			"lastName":  req.LastName,
			"phone":     req.Phone,
			"upiId":     upiID,
			"status":    user.Status,
			"roles":     []string{req.Role},
			"createdAt": user.CreatedAt,
		},
	})
}

type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	Password  *string `json:"password" validate:"omitempty,min=8"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	UpiID     *string `json:"upiId"`
	Role      *string `json:"role" validate:"omitempty,oneof=staff agents managers auditor"`
}

func UpdateUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"updated_at": time.Now()}
		if req.Email != nil {
			updates["email"] = strings.ToLower(*req.Email)
		}
		if req.Password != nil {
			hashed, hashErr := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if hashErr != nil {
				return hashErr
			}
			updates["password_hash"] = string(hashed)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return err
		}

		if req.FirstName != nil || req.LastName != nil || req.Phone != nil || req.UpiID != nil {
			detail := models.UserDetail{UserID: userID}
			if err := tx.Where("user_id = ?", userID).FirstOrCreate(&detail).Error; err != nil {
				return err
			}
			detailUpdates := map[string]interface{}{"updated_at": time.Now()}
			if req.FirstName != nil {
				detailUpdates["first_name"] = req.FirstName
			}
			if req.LastName != nil {
				detailUpdates["last_name"] = req.LastName
			}
			if req.Phone != nil {
				detailUpdates["phone"] = req.Phone
			}
			if req.UpiID != nil {
				detailUpdates["upi_id"] = req.UpiID
			}
			if err := tx.Model(&models.UserDetail{}).Where("user_id = ?", userID).Updates(detailUpdates).Error; err != nil {
				return err
			}
		}

		if req.Role != nil {
			var role models.Role
			if err := tx.Where("name = ?", *req.Role).First(&role).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
				return err
			}
			assignment := models.UserRole{UserID: userID, RoleID: role.ID, AssignedAt: time.Now()}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "User updated successfully"})
}

type BanUserRequest struct {
	Banned *bool `json:"banned" validate:"required"`
}

func BanUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var req BanUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	isAdmin, err := services.IsAdmin(database.DB, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check user roles"})
	}
	if isAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Cannot ban admin users"})
	}

	newStatus := models.UserStatusActive
	message := "User unbanned successfully"
	if *req.Banned {
		newStatus = models.UserStatusInactive
		message = "User banned successfully"
	}
	err = database.DB.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"status": newStatus, "updated_at": time.Now()}).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user status"})
	}

	return c.JSON(fiber.Map{"success": true, "message": message, "status": newStatus})
}

// DeleteUser removes a non-admin user and their dependent records. Ledger
// transactions are kept: they are append-only audit facts.
func DeleteUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}
	actorID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	if userID == actorID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Cannot delete your own account"})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	isAdmin, err := services.IsAdmin(database.DB, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check user roles"})
	}
	if isAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Cannot delete admin users"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserDetail{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Wallet{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.BookUser{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.PayoutRequest{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete user"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User deleted successfully. All related records have been removed.",
	})
}
