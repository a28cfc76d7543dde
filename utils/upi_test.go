package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUpiFromPhone(t *testing.T) {
	assert.Equal(t, "919876543210@hissabbook", UpiFromPhone("+91 98765-43210"))
	assert.Equal(t, "", UpiFromPhone("no digits"))
}

func TestUpiFromBusinessName(t *testing.T) {
	assert.Equal(t, "sharmatraders@hissabbook", UpiFromBusinessName("Sharma Traders"))
	assert.Equal(t, "chai24x7@hissabbook", UpiFromBusinessName("Chai 24x7!"))
	assert.Equal(t, "", UpiFromBusinessName("!!!"))
}

func TestDisplayName(t *testing.T) {
	first, last := "Priya", "Nair"
	assert.Equal(t, "Priya Nair", DisplayName(&first, &last, "priya@example.com"))
	assert.Equal(t, "Priya", DisplayName(&first, nil, "priya@example.com"))
	assert.Equal(t, "priya", DisplayName(nil, nil, "priya@example.com"))
	assert.Equal(t, "Unknown", DisplayName(nil, nil, ""))
}

func TestPayoutReference(t *testing.T) {
	id := uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000")
	createdAt := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "REQ-2026-A1B2C3D4", PayoutReference(id, createdAt))
}
