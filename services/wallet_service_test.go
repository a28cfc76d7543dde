package services

import (
	"testing"

	"github.com/hissabbook/admin-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureWalletIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "agent@example.com")

	first, err := EnsureWallet(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, first.Balance)
	assert.Equal(t, "INR", first.CurrencyCode)

	again, err := EnsureWallet(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	var count int64
	db.Model(&models.Wallet{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestBackfillWalletsCoversUsersWithoutWallets(t *testing.T) {
	db := newTestDB(t)
	covered := createTestUser(t, db, "covered@example.com")
	createTestWallet(t, db, covered.ID, 250)
	createTestUser(t, db, "first@example.com")
	createTestUser(t, db, "second@example.com")

	created, err := BackfillWallets(db)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	var count int64
	db.Model(&models.Wallet{}).Count(&count)
	assert.Equal(t, int64(3), count)

	// Existing balances are untouched.
	var wallet models.Wallet
	require.NoError(t, db.First(&wallet, "user_id = ?", covered.ID).Error)
	assert.Equal(t, 250.0, wallet.Balance)

	created, err = BackfillWallets(db)
	require.NoError(t, err)
	assert.Zero(t, created)
}
