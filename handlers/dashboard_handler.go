package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hissabbook/admin-api/database"
	"github.com/hissabbook/admin-api/models"
	"github.com/hissabbook/admin-api/services"
)

// GetDashboardStats returns the headline numbers for the admin landing page.
func GetDashboardStats(c *fiber.Ctx) error {
	var pendingCount int64
	err := database.DB.Model(&models.PayoutRequest{}).
		Where("status = ?", models.PayoutStatusPending).
		Count(&pendingCount).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}

	startOfDay := time.Now().Truncate(24 * time.Hour)
	var approvedToday struct {
		Count int64
		Total *float64
	}
	err = database.DB.Model(&models.PayoutRequest{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("status = ? AND updated_at >= ?", models.PayoutStatusAccepted, startOfDay).
		Scan(&approvedToday).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}

	var rejectedCount int64
	err = database.DB.Model(&models.PayoutRequest{}).
		Where("status = ?", models.PayoutStatusRejected).
		Count(&rejectedCount).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}

	var totalUsers int64
	if err := database.DB.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}

	approvedTotal := 0.0
	if approvedToday.Total != nil {
		approvedTotal = *approvedToday.Total
	}

	return c.JSON(fiber.Map{
		"stats": fiber.Map{
			"pendingPayouts":      pendingCount,
			"approvedTodayCount":  approvedToday.Count,
			"approvedTodayAmount": approvedTotal,
			"rejectedPayouts":     rejectedCount,
			"totalUsers":          totalUsers,
		},
	})
}

// GetPayoutQueue returns the most recently touched payout requests for the
// dashboard review widget. The panel sends "pending review" for pending.
func GetPayoutQueue(c *fiber.Ctx) error {
	status := c.Query("status")
	if status == "pending review" {
		status = models.PayoutStatusPending
	}
	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 50 {
		limit = 10
	}

	svc := services.NewPayoutService(database.DB)
	items, err := svc.RecentQueue(status, limit)
	if err != nil {
		return c.Status(services.HTTPStatus(err)).JSON(fiber.Map{"error": services.ErrorMessage(err)})
	}

	return c.JSON(fiber.Map{"queue": items})
}
