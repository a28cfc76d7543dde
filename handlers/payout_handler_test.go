package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/hissabbook/admin-api/database"
	"github.com/hissabbook/admin-api/middleware"
	"github.com/hissabbook/admin-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", testJWTSecret)
	t.Setenv("UPLOAD_DIR", t.TempDir())

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.UserDetail{}, &models.Role{}, &models.UserRole{},
		&models.Book{}, &models.BookUser{}, &models.Business{},
		&models.Wallet{}, &models.Transaction{}, &models.PayoutRequest{},
	))
	database.DB = db

	app := fiber.New()
	payouts := app.Group("/api/payout-requests", middleware.Protected())
	payouts.Post("/", CreatePayoutRequest)
	payouts.Get("/", middleware.AdminRequired(), ListPayoutRequests)
	payouts.Patch("/:id/status", middleware.AdminRequired(), ProcessPayoutRequest)
	return app
}

func signToken(t *testing.T, userID uuid.UUID, roles []string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"roles":   roles,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func jsonRequest(t *testing.T, method, target, token string, body interface{}) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func seedUser(t *testing.T, email string) models.User {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", Status: models.UserStatusActive}
	require.NoError(t, database.DB.Create(&user).Error)
	return user
}

func TestCreatePayoutRequestEndpoint(t *testing.T) {
	app := setupTestApp(t)
	staff := seedUser(t, "staff@example.com")
	token := signToken(t, staff.ID, []string{"staff"})

	req := jsonRequest(t, fiber.MethodPost, "/api/payout-requests/", token, fiber.Map{
		"amount":  750.0,
		"utr":     "UTR20260829",
		"remarks": "weekly settlement",
		"proof":   "data:image/png;base64,aGVsbG8=",
	})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	request := body["request"].(map[string]interface{})
	assert.Equal(t, "pending", request["status"])
	assert.Equal(t, 750.0, request["amount"])

	var count int64
	database.DB.Model(&models.PayoutRequest{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreatePayoutRequestRejectsBadBody(t *testing.T) {
	app := setupTestApp(t)
	staff := seedUser(t, "staff@example.com")
	token := signToken(t, staff.ID, []string{"staff"})

	req := jsonRequest(t, fiber.MethodPost, "/api/payout-requests/", token, fiber.Map{
		"amount":  -5.0,
		"utr":     "UTR20260829",
		"remarks": "weekly settlement",
		"proof":   "data:image/png;base64,aGVsbG8=",
	})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPayoutRequestsRequireAuth(t *testing.T) {
	app := setupTestApp(t)

	req := jsonRequest(t, fiber.MethodGet, "/api/payout-requests/", "", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListPayoutRequestsRequiresAdmin(t *testing.T) {
	app := setupTestApp(t)
	staff := seedUser(t, "staff@example.com")
	token := signToken(t, staff.ID, []string{"staff"})

	req := jsonRequest(t, fiber.MethodGet, "/api/payout-requests/", token, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestListPayoutRequestsAsAdmin(t *testing.T) {
	app := setupTestApp(t)
	staff := seedUser(t, "staff@example.com")
	admin := seedUser(t, "admin@example.com")

	request := models.PayoutRequest{
		UserID: &staff.ID, Amount: 300, Utr: "UTR12345",
		Remarks: "cash out", Status: models.PayoutStatusPending,
	}
	require.NoError(t, database.DB.Create(&request).Error)

	token := signToken(t, admin.ID, []string{"admin"})
	req := jsonRequest(t, fiber.MethodGet, "/api/payout-requests/?status=pending", token, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	items := body["payoutRequests"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "pending", item["status"])
	assert.Equal(t, "staff (staff)", item["submittedBy"])
}

func TestProcessPayoutRequestEndpoint(t *testing.T) {
	app := setupTestApp(t)
	staff := seedUser(t, "staff@example.com")
	admin := seedUser(t, "admin@example.com")

	book := models.Book{Name: "Staff Ledger", CurrencyCode: "INR", OwnerUserID: staff.ID}
	require.NoError(t, database.DB.Create(&book).Error)
	wallet := models.Wallet{UserID: staff.ID, Balance: 1000, CurrencyCode: "INR"}
	require.NoError(t, database.DB.Create(&wallet).Error)
	request := models.PayoutRequest{
		UserID: &staff.ID, Amount: 400, Utr: "UTR12345",
		Remarks: "cash out", Status: models.PayoutStatusPending,
	}
	require.NoError(t, database.DB.Create(&request).Error)

	token := signToken(t, admin.ID, []string{"admin"})
	req := jsonRequest(t, fiber.MethodPatch, "/api/payout-requests/"+request.ID.String()+"/status", token, fiber.Map{
		"status": "accepted",
		"notes":  "verified",
	})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["transactionCreated"])

	var updated models.Wallet
	require.NoError(t, database.DB.First(&updated, "user_id = ?", staff.ID).Error)
	assert.Equal(t, 600.0, updated.Balance)

	// Second attempt on the same request must fail the pending check.
	req = jsonRequest(t, fiber.MethodPatch, "/api/payout-requests/"+request.ID.String()+"/status", token, fiber.Map{
		"status": "rejected",
		"notes":  "second reviewer",
	})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestProcessPayoutRequestValidation(t *testing.T) {
	app := setupTestApp(t)
	admin := seedUser(t, "admin@example.com")
	token := signToken(t, admin.ID, []string{"admin"})

	req := jsonRequest(t, fiber.MethodPatch, "/api/payout-requests/not-a-uuid/status", token, fiber.Map{
		"status": "accepted",
	})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req = jsonRequest(t, fiber.MethodPatch, "/api/payout-requests/"+uuid.NewString()+"/status", token, fiber.Map{
		"status": "approved",
		"notes":  "",
	})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// notes must be present, but the empty string is a valid "no notes".
	req = jsonRequest(t, fiber.MethodPatch, "/api/payout-requests/"+uuid.NewString()+"/status", token, fiber.Map{
		"status": "accepted",
	})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req = jsonRequest(t, fiber.MethodPatch, "/api/payout-requests/"+uuid.NewString()+"/status", token, fiber.Map{
		"status": "accepted",
		"notes":  "",
	})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
