package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	config "github.com/hissabbook/admin-api/configs"
	"github.com/hissabbook/admin-api/database"
	"github.com/hissabbook/admin-api/models"
	"github.com/hissabbook/admin-api/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	FirstName *string `json:"firstName" validate:"omitempty,min=1"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func RegisterUser(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if _, err := services.FindUserByEmail(database.DB, req.Email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already registered"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
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
		}
		return tx.Create(&detail).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": fiber.Map{
			"id":        user.ID,
			"email":     user.Email,
			"status":    user.Status,
			"createdAt": user.CreatedAt,
		},
	})
}

func LoginUser(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := services.FindUserByEmail(database.DB, req.Email)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	now := time.Now()
	database.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Updates(map[string]interface{}{"last_login_at": now, "updated_at": now})

	roles, err := services.GetUserRoles(database.DB, user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load roles"})
	}
	var primaryRole *string
	if len(roles) > 0 {
		primaryRole = &roles[0]
	}

	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"status":  user.Status,
		"roles":   roles,
		"role":    primaryRole,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.Config("JWT_SECRET")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	return c.JSON(fiber.Map{
		"token": signed,
		"user": fiber.Map{
			"id":     user.ID,
			"email":  user.Email,
			"status": user.Status,
			"roles":  roles,
			"role":   primaryRole,
		},
	})
}

// LogoutUser exists for the client flow; stateless JWTs are simply discarded.
func LogoutUser(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true})
}

func Me(c *fiber.Ctx) error {
	claims, err := currentClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	email, _ := claims["email"].(string)

	user, err := services.FindUserByEmail(database.DB, email)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	roles, err := services.GetUserRoles(database.DB, user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load roles"})
	}
	var primaryRole *string
	if len(roles) > 0 {
		primaryRole = &roles[0]
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":          user.ID,
			"email":       user.Email,
			"status":      user.Status,
			"roles":       roles,
			"role":        primaryRole,
			"createdAt":   user.CreatedAt,
			"lastLoginAt": user.LastLoginAt,
		},
	})
}
