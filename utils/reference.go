package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PayoutReference derives the short display reference for a payout request,
// e.g. REQ-2026-A1B2C3D4.
func PayoutReference(id uuid.UUID, createdAt time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("REQ-%d-%s", createdAt.Year(), short)
}
