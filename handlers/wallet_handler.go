package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hissabbook/admin-api/database"
	"github.com/hissabbook/admin-api/services"
	"github.com/hissabbook/admin-api/utils"
)

// ListWallets returns every user wallet. Users missing a wallet row get one
// backfilled first so the panel never shows a user without a balance.
func ListWallets(c *fiber.Ctx) error {
	created, err := services.BackfillWallets(database.DB)
	if err != nil {
		log.Printf("⚠️ Wallet backfill failed: %v", err)
	} else if created > 0 {
		log.Printf("✅ Backfilled %d missing wallets", created)
	}

	type walletRow struct {
		ID           uuid.UUID
		UserID       uuid.UUID
		Balance      float64
		CurrencyCode string
		Email        string
		FirstName    *string
		LastName     *string
		UpiID        *string
		Status       string
		UpdatedAt    time.Time
	}
	var rows []walletRow
	err = database.DB.Table("user_wallets uw").
		Select(`uw.id, uw.user_id, uw.balance, uw.currency_code, uw.updated_at,
			u.email, u.status, ud.first_name, ud.last_name, ud.upi_id`).
		Joins("JOIN users u ON uw.user_id = u.id").
		Joins("LEFT JOIN user_details ud ON u.id = ud.user_id").
		Order("uw.balance DESC").
		Scan(&rows).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch wallets"})
	}

	wallets := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, fiber.Map{
			"id":           row.ID,
			"userId":       row.UserID,
			"userName":     utils.DisplayName(row.FirstName, row.LastName, row.Email),
			"userEmail":    row.Email,
			"userStatus":   row.Status,
			"upiId":        row.UpiID,
			"balance":      row.Balance,
			"currencyCode": row.CurrencyCode,
			"updatedAt":    row.UpdatedAt,
		})
	}
	return c.JSON(fiber.Map{"wallets": wallets})
}

// ListBusinessWallets returns businesses as master-wallet entries.
func ListBusinessWallets(c *fiber.Ctx) error {
	type businessRow struct {
		ID         uuid.UUID
		Name       string
		MasterUpi  *string
		Status     string
		OwnerEmail string
		FirstName  *string
		LastName   *string
		CreatedAt  time.Time
	}
	var rows []businessRow
	err := database.DB.Table("businesses b").
		Select(`b.id, b.name, b.master_wallet_upi AS master_upi, b.status, b.created_at,
			u.email AS owner_email, ud.first_name, ud.last_name`).
		Joins("JOIN users u ON b.owner_user_id = u.id").
		Joins("LEFT JOIN user_details ud ON u.id = ud.user_id").
		Order("b.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch business wallets"})
	}

	wallets := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, fiber.Map{
			"id":           row.ID,
			"businessName": row.Name,
			"upiId":        row.MasterUpi,
			"status":       row.Status,
			"ownerName":    utils.DisplayName(row.FirstName, row.LastName, row.OwnerEmail),
			"ownerEmail":   row.OwnerEmail,
			"createdAt":    row.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"wallets": wallets})
}
