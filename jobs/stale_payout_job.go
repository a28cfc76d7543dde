package jobs

import (
	"log"
	"time"

	"github.com/hissabbook/admin-api/database"
	"github.com/hissabbook/admin-api/models"
)

// FlagStalePayoutRequests logs payout requests that have sat in pending for
// more than 48 hours so operators notice a stuck review queue.
func FlagStalePayoutRequests() {
	log.Println("Running job: FlagStalePayoutRequests...")

	cutoff := time.Now().Add(-48 * time.Hour)

	var staleCount int64
	err := database.DB.Model(&models.PayoutRequest{}).
		Where("status = ? AND created_at < ?", models.PayoutStatusPending, cutoff).
		Count(&staleCount).Error
	if err != nil {
		log.Printf("Error checking for stale payout requests: %v", err)
		return
	}

	if staleCount > 0 {
		log.Printf("⚠️ %d payout requests have been pending for over 48 hours", staleCount)
	}
}
