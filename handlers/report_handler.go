package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hissabbook/admin-api/database"
	"github.com/hissabbook/admin-api/utils"
)

// ExportTransactionsReport streams the transaction ledger as a CSV download,
// optionally bounded by from/to dates (YYYY-MM-DD).
func ExportTransactionsReport(c *fiber.Ctx) error {
	q := transactionQuery(database.DB)

	if from := c.Query("from"); from != "" {
		fromDate, err := time.Parse("2006-01-02", from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid 'from' date, expected YYYY-MM-DD"})
		}
		q = q.Where("t.occurred_at >= ?", fromDate)
	}
	if to := c.Query("to"); to != "" {
		toDate, err := time.Parse("2006-01-02", to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid 'to' date, expected YYYY-MM-DD"})
		}
		q = q.Where("t.occurred_at < ?", toDate.AddDate(0, 0, 1))
	}
	if txType := c.Query("type"); txType != "" {
		q = q.Where("t.type = ?", txType)
	}

	var rows []transactionRow
	if err := q.Order("t.occurred_at ASC").Scan(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch transactions"})
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Write([]string{
		"Transaction ID", "Date", "Book", "User", "Email",
		"Type", "Status", "Amount", "Currency", "Description",
	})
	for _, row := range rows {
		bookName := ""
		if row.BookName != nil {
			bookName = *row.BookName
		}
		userName, userEmail := "", ""
		if row.UserEmail != nil {
			userEmail = *row.UserEmail
			userName = utils.DisplayName(row.FirstName, row.LastName, userEmail)
		}
		description := ""
		if row.Description != nil {
			description = *row.Description
		}
		writer.Write([]string{
			row.ID.String(),
			row.OccurredAt.Format("2006-01-02 15:04:05"),
			bookName,
			userName,
			userEmail,
			row.Type,
			row.Status,
			fmt.Sprintf("%.2f", row.Amount),
			row.CurrencyCode,
			description,
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build report"})
	}

	filename := fmt.Sprintf("transactions-report-%s.csv", time.Now().Format("2006-01-02"))
	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}
