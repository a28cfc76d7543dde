package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hissabbook/admin-api/database"
	"github.com/hissabbook/admin-api/models"
	"github.com/hissabbook/admin-api/utils"
)

type bookRow struct {
	ID               uuid.UUID
	Name             string
	Description      *string
	CurrencyCode     string
	OwnerUserID      uuid.UUID
	OwnerEmail       string
	OwnerFirstName   *string
	OwnerLastName    *string
	TransactionCount int
	TotalBalance     *float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func shapeBook(row bookRow) fiber.Map {
	balance := 0.0
	if row.TotalBalance != nil {
		balance = *row.TotalBalance
	}
	// A book with no ledger entries yet shows as inactive in the panel.
	status := "active"
	if row.TransactionCount == 0 {
		status = "inactive"
	}
	return fiber.Map{
		"id":               row.ID,
		"name":             row.Name,
		"description":      row.Description,
		"currencyCode":     row.CurrencyCode,
		"ownerUserId":      row.OwnerUserID,
		"ownerName":        utils.DisplayName(row.OwnerFirstName, row.OwnerLastName, row.OwnerEmail),
		"ownerEmail":       row.OwnerEmail,
		"status":           status,
		"transactionCount": row.TransactionCount,
		"totalBalance":     balance,
		"createdAt":        row.CreatedAt,
		"updatedAt":        row.UpdatedAt,
	}
}

const bookSelect = `b.id, b.name, b.description, b.currency_code, b.owner_user_id,
	b.created_at, b.updated_at,
	u.email AS owner_email, ud.first_name AS owner_first_name, ud.last_name AS owner_last_name,
	(SELECT COUNT(*) FROM transactions t WHERE t.book_id = b.id) AS transaction_count,
	(SELECT COALESCE(SUM(CASE WHEN t.type = 'credit' THEN t.amount ELSE -t.amount END), 0)
	 FROM transactions t WHERE t.book_id = b.id AND t.status = 'completed') AS total_balance`

// ListBooks returns all cashbooks with per-book entry counts and net balance.
func ListBooks(c *fiber.Ctx) error {
	search := c.Query("search")

	q := database.DB.Table("books b").
		Select(bookSelect).
		Joins("JOIN users u ON b.owner_user_id = u.id").
		Joins("LEFT JOIN user_details ud ON u.id = ud.user_id")
	if search != "" {
		pattern := "%" + search + "%"
		q = q.Where("b.name ILIKE ? OR u.email ILIKE ?", pattern, pattern)
	}

	var rows []bookRow
	if err := q.Order("b.created_at DESC").Scan(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch books"})
	}

	books := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		books = append(books, shapeBook(row))
	}
	return c.JSON(fiber.Map{"books": books})
}

type CreateBookRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=255"`
	Description  *string `json:"description"`
	CurrencyCode string  `json:"currencyCode" validate:"omitempty,len=3"`
	OwnerUserID  string  `json:"ownerUserId" validate:"required,uuid4"`
}

func CreateBook(c *fiber.Ctx) error {
	var req CreateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ownerID, err := uuid.Parse(req.OwnerUserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid owner user id"})
	}
	var owner models.User
	if err := database.DB.First(&owner, "id = ?", ownerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Owner user not found"})
	}

	currency := req.CurrencyCode
	if currency == "" {
		currency = "INR"
	}
	book := models.Book{
		Name:         req.Name,
		Description:  req.Description,
		CurrencyCode: currency,
		OwnerUserID:  ownerID,
	}
	if err := database.DB.Create(&book).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create book"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "book": book})
}

// GetBook returns one book with the same enrichment as the list view.
func GetBook(c *fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid book id"})
	}

	var row bookRow
	err = database.DB.Table("books b").
		Select(bookSelect).
		Joins("JOIN users u ON b.owner_user_id = u.id").
		Joins("LEFT JOIN user_details ud ON u.id = ud.user_id").
		Where("b.id = ?", bookID).
		Scan(&row).Error
	if err != nil || row.ID == uuid.Nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Book not found"})
	}

	return c.JSON(fiber.Map{"book": shapeBook(row)})
}

// ListBookUsers returns the members of a book, owner first.
func ListBookUsers(c *fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid book id"})
	}

	var book models.Book
	if err := database.DB.First(&book, "id = ?", bookID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Book not found"})
	}

	type memberRow struct {
		UserID    uuid.UUID
		Email     string
		FirstName *string
		LastName  *string
		AddedAt   *time.Time
	}
	var rows []memberRow
	err = database.DB.Table("book_users bu").
		Select("bu.user_id, bu.added_at, u.email, ud.first_name, ud.last_name").
		Joins("JOIN users u ON bu.user_id = u.id").
		Joins("LEFT JOIN user_details ud ON u.id = ud.user_id").
		Where("bu.book_id = ?", bookID).
		Order("bu.added_at ASC").
		Scan(&rows).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch book users"})
	}

	members := make([]fiber.Map, 0, len(rows)+1)

	var ownerRow memberRow
	database.DB.Table("users u").
		Select("u.id AS user_id, u.email, ud.first_name, ud.last_name").
		Joins("LEFT JOIN user_details ud ON u.id = ud.user_id").
		Where("u.id = ?", book.OwnerUserID).
		Scan(&ownerRow)
	members = append(members, fiber.Map{
		"userId": ownerRow.UserID,
		"email":  ownerRow.Email,
		"name":   utils.DisplayName(ownerRow.FirstName, ownerRow.LastName, ownerRow.Email),
		"role":   "owner",
	})

	for _, row := range rows {
		if row.UserID == book.OwnerUserID {
			continue
		}
		members = append(members, fiber.Map{
			"userId":  row.UserID,
			"email":   row.Email,
			"name":    utils.DisplayName(row.FirstName, row.LastName, row.Email),
			"role":    "member",
			"addedAt": row.AddedAt,
		})
	}
	return c.JSON(fiber.Map{"users": members})
}

type AddBookUserRequest struct {
	UserID string `json:"userId" validate:"required,uuid4"`
}

func AddBookUser(c *fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid book id"})
	}

	var req AddBookUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var book models.Book
	if err := database.DB.First(&book, "id = ?", bookID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Book not found"})
	}
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	var existing models.BookUser
	err = database.DB.Where("book_id = ? AND user_id = ?", bookID, userID).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "User is already a member of this book"})
	}

	actorID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	membership := models.BookUser{BookID: bookID, UserID: userID, AddedBy: &actorID}
	if err := database.DB.Create(&membership).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add user to book"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "membership": membership})
}

func RemoveBookUser(c *fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid book id"})
	}
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	res := database.DB.Where("book_id = ? AND user_id = ?", bookID, userID).Delete(&models.BookUser{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove user from book"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User is not a member of this book"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "User removed from book"})
}
