package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hissabbook/admin-api/database"
	"github.com/hissabbook/admin-api/models"
	"github.com/hissabbook/admin-api/utils"
	"gorm.io/gorm"
)

type transactionRow struct {
	ID           uuid.UUID
	BookID       *uuid.UUID
	UserID       *uuid.UUID
	Type         string
	Status       string
	Amount       float64
	CurrencyCode string
	Description  *string
	Metadata     models.JSONMap
	OccurredAt   time.Time
	CreatedAt    time.Time
	BookName     *string
	UserEmail    *string
	FirstName    *string
	LastName     *string
}

func shapeTransaction(row transactionRow) fiber.Map {
	userName := interface{}(nil)
	if row.UserEmail != nil {
		userName = utils.DisplayName(row.FirstName, row.LastName, *row.UserEmail)
	}
	return fiber.Map{
		"id":           row.ID,
		"bookId":       row.BookID,
		"bookName":     row.BookName,
		"userId":       row.UserID,
		"userName":     userName,
		"userEmail":    row.UserEmail,
		"type":         row.Type,
		"status":       row.Status,
		"amount":       row.Amount,
		"currencyCode": row.CurrencyCode,
		"description":  row.Description,
		"metadata":     row.Metadata,
		"occurredAt":   row.OccurredAt,
		"createdAt":    row.CreatedAt,
	}
}

func transactionQuery(db *gorm.DB) *gorm.DB {
	return db.Table("transactions t").
		Select(`t.id, t.book_id, t.user_id, t.type, t.status, t.amount, t.currency_code,
			t.description, t.metadata, t.occurred_at, t.created_at,
			b.name AS book_name, u.email AS user_email, ud.first_name, ud.last_name`).
		Joins("LEFT JOIN books b ON t.book_id = b.id").
		Joins("LEFT JOIN users u ON t.user_id = u.id").
		Joins("LEFT JOIN user_details ud ON u.id = ud.user_id")
}

// ListTransactions returns ledger entries across every book, newest first,
// filterable by type and status with limit/offset paging.
func ListTransactions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	q := transactionQuery(database.DB)
	if txType := c.Query("type"); txType != "" {
		q = q.Where("t.type = ?", txType)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("t.status = ?", status)
	}

	var total int64
	countQ := database.DB.Table("transactions t")
	if txType := c.Query("type"); txType != "" {
		countQ = countQ.Where("t.type = ?", txType)
	}
	if status := c.Query("status"); status != "" {
		countQ = countQ.Where("t.status = ?", status)
	}
	if err := countQ.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count transactions"})
	}

	var rows []transactionRow
	err := q.Order("t.occurred_at DESC").Limit(limit).Offset(offset).Scan(&rows).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch transactions"})
	}

	transactions := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, shapeTransaction(row))
	}
	return c.JSON(fiber.Map{
		"transactions": transactions,
		"total":        total,
		"limit":        limit,
		"offset":       offset,
	})
}

// ListBookTransactions returns the ledger of a single book.
func ListBookTransactions(c *fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("bookId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid book id"})
	}

	var book models.Book
	if err := database.DB.First(&book, "id = ?", bookID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Book not found"})
	}

	var rows []transactionRow
	err = transactionQuery(database.DB).
		Where("t.book_id = ?", bookID).
		Order("t.occurred_at DESC").
		Scan(&rows).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch transactions"})
	}

	transactions := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, shapeTransaction(row))
	}
	return c.JSON(fiber.Map{"book": fiber.Map{"id": book.ID, "name": book.Name}, "transactions": transactions})
}
