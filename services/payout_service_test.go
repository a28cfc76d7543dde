package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/hissabbook/admin-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.UserDetail{},
		&models.Role{},
		&models.UserRole{},
		&models.Book{},
		&models.BookUser{},
		&models.Business{},
		&models.Wallet{},
		&models.Transaction{},
		&models.PayoutRequest{},
	)
	require.NoError(t, err)
	return db
}

func newTestService(db *gorm.DB) *PayoutService {
	return &PayoutService{db: db, bookFallback: BookFallbackAny, allowOverdraft: true}
}

func createTestUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", Status: models.UserStatusActive}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestBook(t *testing.T, db *gorm.DB, owner uuid.UUID, name string) models.Book {
	t.Helper()
	book := models.Book{Name: name, CurrencyCode: "INR", OwnerUserID: owner}
	require.NoError(t, db.Create(&book).Error)
	return book
}

func createTestWallet(t *testing.T, db *gorm.DB, userID uuid.UUID, balance float64) models.Wallet {
	t.Helper()
	wallet := models.Wallet{UserID: userID, Balance: balance, CurrencyCode: "INR"}
	require.NoError(t, db.Create(&wallet).Error)
	return wallet
}

func createPendingRequest(t *testing.T, db *gorm.DB, userID *uuid.UUID, amount float64) models.PayoutRequest {
	t.Helper()
	request := models.PayoutRequest{
		UserID:  userID,
		Amount:  amount,
		Utr:     "UTR12345",
		Remarks: "August settlement",
		Status:  models.PayoutStatusPending,
	}
	require.NoError(t, db.Create(&request).Error)
	return request
}

func TestCreateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := createTestUser(t, db, "agent@example.com")

	cases := []struct {
		name  string
		input CreatePayoutInput
	}{
		{"zero amount", CreatePayoutInput{UserID: user.ID, Amount: 0, Utr: "UTR12345", Remarks: "r"}},
		{"negative amount", CreatePayoutInput{UserID: user.ID, Amount: -10, Utr: "UTR12345", Remarks: "r"}},
		{"short utr", CreatePayoutInput{UserID: user.ID, Amount: 100, Utr: "ab", Remarks: "r"}},
		{"empty remarks", CreatePayoutInput{UserID: user.ID, Amount: 100, Utr: "UTR12345", Remarks: "  "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(tc.input)
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}

	var count int64
	db.Model(&models.PayoutRequest{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateRejectsForeignBook(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	requester := createTestUser(t, db, "agent@example.com")
	other := createTestUser(t, db, "other@example.com")
	foreignBook := createTestBook(t, db, other.ID, "Other Ledger")

	_, err := svc.Create(CreatePayoutInput{
		UserID:  requester.ID,
		Amount:  500,
		Utr:     "UTR12345",
		Remarks: "settlement",
		BookID:  &foreignBook.ID,
	})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCreatePersistsPendingRequest(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := createTestUser(t, db, "agent@example.com")
	book := createTestBook(t, db, user.ID, "Agent Ledger")

	request, err := svc.Create(CreatePayoutInput{
		UserID:   user.ID,
		Amount:   1500.50,
		Utr:      "UTR99887766",
		Remarks:  "weekly cash out",
		ProofRef: "uploads/payout-1.png",
		BookID:   &book.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPending, request.Status)
	assert.Equal(t, 1500.50, request.Amount)
	require.NotNil(t, request.ProofRef)
	assert.Equal(t, "uploads/payout-1.png", *request.ProofRef)

	var stored models.PayoutRequest
	require.NoError(t, db.First(&stored, "id = ?", request.ID).Error)
	assert.Equal(t, models.PayoutStatusPending, stored.Status)
}

func TestAcceptPostsLedgerEntryAndDecrementsWallet(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := createTestUser(t, db, "agent@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	book := createTestBook(t, db, user.ID, "Agent Ledger")
	createTestWallet(t, db, user.ID, 1000)
	request := createPendingRequest(t, db, &user.ID, 500)

	result, err := svc.TransitionStatus(request.ID, models.PayoutStatusAccepted, admin.ID, "verified UTR")
	require.NoError(t, err)
	assert.True(t, result.LedgerEntryCreated)
	assert.Equal(t, models.PayoutStatusAccepted, result.Request.Status)

	var entries []models.Transaction
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)

	entry := entries[0]
	require.NotNil(t, entry.BookID)
	assert.Equal(t, book.ID, *entry.BookID)
	assert.Equal(t, models.TransactionTypeDebit, entry.Type)
	assert.Equal(t, models.TransactionStatusCompleted, entry.Status)
	assert.Equal(t, 500.0, entry.Amount)
	assert.Equal(t, "INR", entry.CurrencyCode)
	require.NotNil(t, entry.Description)
	assert.Equal(t, "Payout Request: UTR12345 - August settlement", *entry.Description)
	assert.Equal(t, request.ID.String(), entry.Metadata["payout_request_id"])
	assert.Equal(t, "UTR12345", entry.Metadata["utr"])
	assert.Equal(t, admin.ID.String(), entry.Metadata["approved_by"])
	assert.Equal(t, "verified UTR", entry.Metadata["notes"])

	var wallet models.Wallet
	require.NoError(t, db.First(&wallet, "user_id = ?", user.ID).Error)
	assert.Equal(t, 500.0, wallet.Balance)
}

func TestRejectPostsNothing(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := createTestUser(t, db, "agent@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	createTestBook(t, db, user.ID, "Agent Ledger")
	createTestWallet(t, db, user.ID, 1000)
	request := createPendingRequest(t, db, &user.ID, 500)

	result, err := svc.TransitionStatus(request.ID, models.PayoutStatusRejected, admin.ID, "invalid UTR")
	require.NoError(t, err)
	assert.False(t, result.LedgerEntryCreated)
	assert.Equal(t, models.PayoutStatusRejected, result.Request.Status)

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.Zero(t, count)

	var wallet models.Wallet
	require.NoError(t, db.First(&wallet, "user_id = ?", user.ID).Error)
	assert.Equal(t, 1000.0, wallet.Balance)
}

func TestTransitionIsOneShot(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := createTestUser(t, db, "agent@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	createTestBook(t, db, user.ID, "Agent Ledger")
	createTestWallet(t, db, user.ID, 1000)
	request := createPendingRequest(t, db, &user.ID, 500)

	_, err := svc.TransitionStatus(request.ID, models.PayoutStatusAccepted, admin.ID, "")
	require.NoError(t, err)

	_, err = svc.TransitionStatus(request.ID, models.PayoutStatusAccepted, admin.ID, "")
	require.Error(t, err)
	assert.Equal(t, KindInvalidState, KindOf(err))

	_, err = svc.TransitionStatus(request.ID, models.PayoutStatusRejected, admin.ID, "")
	require.Error(t, err)
	assert.Equal(t, KindInvalidState, KindOf(err))

	// Exactly one ledger entry and one wallet decrement despite three calls.
	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var wallet models.Wallet
	require.NoError(t, db.First(&wallet, "user_id = ?", user.ID).Error)
	assert.Equal(t, 500.0, wallet.Balance)
}

func TestTransitionValidatesStatusAndExistence(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	admin := createTestUser(t, db, "admin@example.com")

	_, err := svc.TransitionStatus(uuid.New(), "approved", admin.ID, "")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.TransitionStatus(uuid.New(), models.PayoutStatusAccepted, admin.ID, "")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestAcceptWithoutUserSkipsPosting(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	admin := createTestUser(t, db, "admin@example.com")
	request := createPendingRequest(t, db, nil, 500)

	result, err := svc.TransitionStatus(request.ID, models.PayoutStatusAccepted, admin.ID, "")
	require.NoError(t, err)
	assert.False(t, result.LedgerEntryCreated)
	assert.Equal(t, models.PayoutStatusAccepted, result.Request.Status)

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.Zero(t, count)
}

func TestAcceptFallsBackToEarliestOwnedBook(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := createTestUser(t, db, "agent@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	first := createTestBook(t, db, user.ID, "First Ledger")
	createTestBook(t, db, user.ID, "Second Ledger")
	createTestWallet(t, db, user.ID, 1000)
	request := createPendingRequest(t, db, &user.ID, 200)

	_, err := svc.TransitionStatus(request.ID, models.PayoutStatusAccepted, admin.ID, "")
	require.NoError(t, err)

	var entry models.Transaction
	require.NoError(t, db.First(&entry).Error)
	require.NotNil(t, entry.BookID)
	assert.Equal(t, first.ID, *entry.BookID)
}

func TestAcceptAnyBookFallbackPolicy(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "agent@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	other := createTestUser(t, db, "other@example.com")
	systemBook := createTestBook(t, db, other.ID, "System Ledger")
	createTestWallet(t, db, user.ID, 1000)

	t.Run("any posts into earliest system book", func(t *testing.T) {
		svc := &PayoutService{db: db, bookFallback: BookFallbackAny, allowOverdraft: true}
		request := createPendingRequest(t, db, &user.ID, 100)

		result, err := svc.TransitionStatus(request.ID, models.PayoutStatusAccepted, admin.ID, "")
		require.NoError(t, err)
		assert.True(t, result.LedgerEntryCreated)

		var entry models.Transaction
		require.NoError(t, db.First(&entry).Error)
		require.NotNil(t, entry.BookID)
		assert.Equal(t, systemBook.ID, *entry.BookID)
	})

	t.Run("skip commits status without posting", func(t *testing.T) {
		require.NoError(t, db.Where("1 = 1").Delete(&models.Transaction{}).Error)
		svc := &PayoutService{db: db, bookFallback: BookFallbackSkip, allowOverdraft: true}
		request := createPendingRequest(t, db, &user.ID, 100)

		result, err := svc.TransitionStatus(request.ID, models.PayoutStatusAccepted, admin.ID, "")
		require.NoError(t, err)
		assert.False(t, result.LedgerEntryCreated)
		assert.Equal(t, models.PayoutStatusAccepted, result.Request.Status)

		var count int64
		db.Model(&models.Transaction{}).Count(&count)
		assert.Zero(t, count)
	})
}

func TestAcceptWithoutWalletStillPosts(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := createTestUser(t, db, "agent@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	createTestBook(t, db, user.ID, "Agent Ledger")
	request := createPendingRequest(t, db, &user.ID, 500)

	result, err := svc.TransitionStatus(request.ID, models.PayoutStatusAccepted, admin.ID, "")
	require.NoError(t, err)
	assert.True(t, result.LedgerEntryCreated)

	var entry models.Transaction
	require.NoError(t, db.First(&entry).Error)
	assert.Nil(t, entry.WalletID)
}

func TestOverdraftPolicy(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "agent@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	createTestBook(t, db, user.ID, "Agent Ledger")
	createTestWallet(t, db, user.ID, 100)

	t.Run("blocked when overdraft disallowed", func(t *testing.T) {
		svc := &PayoutService{db: db, bookFallback: BookFallbackAny, allowOverdraft: false}
		request := createPendingRequest(t, db, &user.ID, 500)

		_, err := svc.TransitionStatus(request.ID, models.PayoutStatusAccepted, admin.ID, "")
		require.Error(t, err)
		assert.Equal(t, KindInvalidState, KindOf(err))

		// The whole unit rolled back: request is still pending and reviewable.
		var stored models.PayoutRequest
		require.NoError(t, db.First(&stored, "id = ?", request.ID).Error)
		assert.Equal(t, models.PayoutStatusPending, stored.Status)

		var count int64
		db.Model(&models.Transaction{}).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("balance goes negative when overdraft allowed", func(t *testing.T) {
		svc := &PayoutService{db: db, bookFallback: BookFallbackAny, allowOverdraft: true}
		request := createPendingRequest(t, db, &user.ID, 500)

		_, err := svc.TransitionStatus(request.ID, models.PayoutStatusAccepted, admin.ID, "")
		require.NoError(t, err)

		var wallet models.Wallet
		require.NoError(t, db.First(&wallet, "user_id = ?", user.ID).Error)
		assert.Equal(t, -400.0, wallet.Balance)
	})
}

func TestAcceptRollsBackWhenPostingFails(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := createTestUser(t, db, "agent@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	createTestBook(t, db, user.ID, "Agent Ledger")
	createTestWallet(t, db, user.ID, 1000)
	request := createPendingRequest(t, db, &user.ID, 500)

	// Sabotage the ledger table so the insert inside the transaction fails.
	require.NoError(t, db.Migrator().DropTable(&models.Transaction{}))

	_, err := svc.TransitionStatus(request.ID, models.PayoutStatusAccepted, admin.ID, "")
	require.Error(t, err)
	assert.Equal(t, KindStorage, KindOf(err))

	var stored models.PayoutRequest
	require.NoError(t, db.First(&stored, "id = ?", request.ID).Error)
	assert.Equal(t, models.PayoutStatusPending, stored.Status)

	var wallet models.Wallet
	require.NoError(t, db.First(&wallet, "user_id = ?", user.ID).Error)
	assert.Equal(t, 1000.0, wallet.Balance)
}

func TestListFiltersByStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db)
	user := createTestUser(t, db, "agent@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	createTestBook(t, db, user.ID, "Agent Ledger")

	first := createPendingRequest(t, db, &user.ID, 100)
	createPendingRequest(t, db, &user.ID, 200)
	_, err := svc.TransitionStatus(first.ID, models.PayoutStatusRejected, admin.ID, "")
	require.NoError(t, err)

	all, err := svc.List("all")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.List(models.PayoutStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 200.0, pending[0].Amount)
	assert.Equal(t, "agent (staff)", pending[0].SubmittedBy)
	assert.Contains(t, pending[0].Reference, "REQ-")

	rejected, err := svc.List(models.PayoutStatusRejected)
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, first.ID, rejected[0].ID)
}
