package services

import (
	"github.com/google/uuid"
	"github.com/hissabbook/admin-api/models"
	"gorm.io/gorm"
)

// EnsureWallet returns the user's wallet, creating a zero-balance one when
// absent. Wallets are created lazily and never deleted by this workflow.
func EnsureWallet(db *gorm.DB, userID uuid.UUID) (*models.Wallet, error) {
	wallet := models.Wallet{UserID: userID, CurrencyCode: payoutCurrency}
	if err := db.Where("user_id = ?", userID).FirstOrCreate(&wallet).Error; err != nil {
		return nil, storageError("failed to ensure wallet", err)
	}
	return &wallet, nil
}

// BackfillWallets creates wallets for every user that lacks one and returns
// how many were created. Runs at startup, on a cron schedule, and before the
// admin wallet listing.
func BackfillWallets(db *gorm.DB) (int, error) {
	var userIDs []uuid.UUID
	err := db.Model(&models.User{}).
		Where("NOT EXISTS (SELECT 1 FROM user_wallets uw WHERE uw.user_id = users.id)").
		Pluck("id", &userIDs).Error
	if err != nil {
		return 0, storageError("failed to find users without wallets", err)
	}

	created := 0
	for _, id := range userIDs {
		wallet := models.Wallet{UserID: id, CurrencyCode: payoutCurrency}
		if err := db.Where("user_id = ?", id).FirstOrCreate(&wallet).Error; err != nil {
			return created, storageError("failed to backfill wallet", err)
		}
		created++
	}
	return created, nil
}
