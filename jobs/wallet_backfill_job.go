package jobs

import (
	"log"

	"github.com/hissabbook/admin-api/database"
	"github.com/hissabbook/admin-api/services"
)

// BackfillMissingWallets creates wallet rows for users that were created
// before wallets existed or whose wallet insert failed. Runs hourly.
func BackfillMissingWallets() {
	log.Println("Running job: BackfillMissingWallets...")

	created, err := services.BackfillWallets(database.DB)
	if err != nil {
		log.Printf("Error backfilling wallets: %v", err)
		return
	}
	if created > 0 {
		log.Printf("✅ Backfilled %d missing wallets", created)
	}
}
