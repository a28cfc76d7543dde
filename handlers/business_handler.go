package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hissabbook/admin-api/database"
	"github.com/hissabbook/admin-api/models"
	"github.com/hissabbook/admin-api/utils"
)

// ListBusinesses returns the caller's businesses, newest first.
func ListBusinesses(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var businesses []models.Business
	err = database.DB.Where("owner_user_id = ?", userID).
		Order("created_at DESC").
		Find(&businesses).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch businesses"})
	}

	return c.JSON(fiber.Map{"businesses": businesses})
}

type CreateBusinessRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description"`
}

func CreateBusiness(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req CreateBusinessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var masterUpi *string
	if upi := utils.UpiFromBusinessName(req.Name); upi != "" {
		masterUpi = &upi
	}

	business := models.Business{
		Name:            req.Name,
		Description:     req.Description,
		OwnerUserID:     userID,
		MasterWalletUpi: masterUpi,
		Status:          models.BusinessStatusActive,
	}
	if err := database.DB.Create(&business).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create business"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "business": business})
}

type UpdateBusinessRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func UpdateBusiness(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	businessID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid business id"})
	}

	var req UpdateBusinessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var business models.Business
	err = database.DB.Where("id = ? AND owner_user_id = ?", businessID, userID).First(&business).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Business not found"})
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Name != nil {
		updates["name"] = *req.Name
		if upi := utils.UpiFromBusinessName(*req.Name); upi != "" {
			updates["master_wallet_upi"] = upi
		}
	}
	if req.Description != nil {
		updates["description"] = req.Description
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if err := database.DB.Model(&business).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update business"})
	}

	return c.JSON(fiber.Map{"success": true, "business": business})
}

func DeleteBusiness(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	businessID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid business id"})
	}

	res := database.DB.Where("id = ? AND owner_user_id = ?", businessID, userID).Delete(&models.Business{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete business"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Business not found"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Business deleted successfully"})
}
