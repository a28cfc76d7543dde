package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	config "github.com/hissabbook/admin-api/configs"
	"github.com/hissabbook/admin-api/models"
	"github.com/hissabbook/admin-api/utils"
	"gorm.io/gorm"
)

const payoutCurrency = "INR"

// Book-resolution policy when a requester owns no book. "any" reproduces the
// upstream behavior of posting into the earliest book in the whole system;
// "skip" commits the status change without a ledger entry.
const (
	BookFallbackAny  = "any"
	BookFallbackSkip = "skip"
)

type PayoutService struct {
	db             *gorm.DB
	bookFallback   string
	allowOverdraft bool
}

func NewPayoutService(db *gorm.DB) *PayoutService {
	return &PayoutService{
		db:             db,
		bookFallback:   config.ConfigOr("PAYOUT_BOOK_FALLBACK", BookFallbackAny),
		allowOverdraft: config.ConfigBool("WALLET_ALLOW_OVERDRAFT", true),
	}
}

type CreatePayoutInput struct {
	UserID   uuid.UUID
	Amount   float64
	Utr      string
	Remarks  string
	ProofRef string
	BookID   *uuid.UUID
}

// Create validates and persists a new pending payout request. A book id, when
// supplied, must reference a book owned by the requesting user.
func (s *PayoutService) Create(in CreatePayoutInput) (*models.PayoutRequest, error) {
	if in.Amount <= 0 {
		return nil, validationError("amount must be greater than zero")
	}
	if len(strings.TrimSpace(in.Utr)) < 4 {
		return nil, validationError("utr must be at least 4 characters")
	}
	if strings.TrimSpace(in.Remarks) == "" {
		return nil, validationError("remarks are required")
	}

	var request models.PayoutRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if in.BookID != nil {
			var book models.Book
			err := tx.Where("id = ? AND owner_user_id = ?", *in.BookID, in.UserID).First(&book).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationError("book not found or does not belong to user")
			}
			if err != nil {
				return storageError("failed to verify book ownership", err)
			}
		}

		userID := in.UserID
		request = models.PayoutRequest{
			UserID:  &userID,
			Amount:  in.Amount,
			Utr:     in.Utr,
			Remarks: in.Remarks,
			BookID:  in.BookID,
			Status:  models.PayoutStatusPending,
		}
		if in.ProofRef != "" {
			proofRef := in.ProofRef
			request.ProofRef = &proofRef
		}
		if err := tx.Create(&request).Error; err != nil {
			return storageError("failed to create payout request", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// PayoutRequestItem is a payout request enriched with submitter identity for
// admin views.
type PayoutRequestItem struct {
	ID          uuid.UUID  `json:"id"`
	Reference   string     `json:"reference"`
	SubmittedBy string     `json:"submittedBy"`
	Amount      float64    `json:"amount"`
	Utr         string     `json:"utr"`
	Remarks     string     `json:"remarks"`
	Status      string     `json:"status"`
	BookID      *uuid.UUID `json:"bookId"`
	ProofRef    *string    `json:"proofRef"`
	UserEmail   *string    `json:"userEmail"`
	UserPhone   *string    `json:"userPhone"`
	UserRole    string     `json:"userRole"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type payoutRow struct {
	ID        uuid.UUID
	Amount    float64
	Utr       string
	Remarks   string
	Status    string
	BookID    *uuid.UUID
	ProofRef  *string
	UserEmail *string
	FirstName *string
	LastName  *string
	UserPhone *string
	UserRole  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *PayoutService) enrichedQuery(status string) *gorm.DB {
	q := s.db.Table("payout_requests pr").
		Select(`pr.id, pr.amount, pr.utr, pr.remarks, pr.status, pr.book_id, pr.proof_ref,
			pr.created_at, pr.updated_at,
			u.email AS user_email, ud.first_name, ud.last_name, ud.phone AS user_phone,
			(SELECT r.name FROM user_roles ur
			 JOIN roles r ON ur.role_id = r.id
			 WHERE ur.user_id = u.id
			 ORDER BY ur.assigned_at ASC LIMIT 1) AS user_role`).
		Joins("LEFT JOIN users u ON pr.user_id = u.id").
		Joins("LEFT JOIN user_details ud ON u.id = ud.user_id")
	if status != "" && status != "all" {
		q = q.Where("pr.status = ?", status)
	}
	return q
}

func itemsFromRows(rows []payoutRow) []PayoutRequestItem {
	items := make([]PayoutRequestItem, 0, len(rows))
	for _, row := range rows {
		email := ""
		if row.UserEmail != nil {
			email = *row.UserEmail
		}
		role := models.RoleStaff
		if row.UserRole != nil && *row.UserRole != "" {
			role = *row.UserRole
		}
		items = append(items, PayoutRequestItem{
			ID:          row.ID,
			Reference:   utils.PayoutReference(row.ID, row.CreatedAt),
			SubmittedBy: fmt.Sprintf("%s (%s)", utils.DisplayName(row.FirstName, row.LastName, email), role),
			Amount:      row.Amount,
			Utr:         row.Utr,
			Remarks:     row.Remarks,
			Status:      row.Status,
			BookID:      row.BookID,
			ProofRef:    row.ProofRef,
			UserEmail:   row.UserEmail,
			UserPhone:   row.UserPhone,
			UserRole:    role,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		})
	}
	return items
}

// List returns all payout requests, newest first, optionally filtered by
// status ("" and "all" mean no filter).
func (s *PayoutService) List(status string) ([]PayoutRequestItem, error) {
	var rows []payoutRow
	if err := s.enrichedQuery(status).Order("pr.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, storageError("failed to fetch payout requests", err)
	}
	return itemsFromRows(rows), nil
}

// RecentQueue returns the most recently updated payout requests for the live
// dashboard queue.
func (s *PayoutService) RecentQueue(status string, limit int) ([]PayoutRequestItem, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []payoutRow
	if err := s.enrichedQuery(status).Order("pr.updated_at DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, storageError("failed to fetch payout queue", err)
	}
	return itemsFromRows(rows), nil
}

type TransitionResult struct {
	Request            models.PayoutRequest
	LedgerEntryCreated bool
}

// TransitionStatus moves a pending payout request to accepted or rejected.
// The status update and, on acceptance, the ledger posting and wallet
// adjustment run inside one transaction: any failure rolls the whole unit
// back and the request stays pending. The status update is a conditional
// write on status = pending, so two concurrent transitions cannot both
// succeed.
func (s *PayoutService) TransitionStatus(id uuid.UUID, newStatus string, actorID uuid.UUID, notes string) (*TransitionResult, error) {
	if newStatus != models.PayoutStatusAccepted && newStatus != models.PayoutStatusRejected {
		return nil, validationError("status must be accepted or rejected")
	}

	var result TransitionResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var request models.PayoutRequest
		if err := tx.First(&request, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("payout request not found")
			}
			return storageError("failed to load payout request", err)
		}

		now := time.Now()
		res := tx.Model(&models.PayoutRequest{}).
			Where("id = ? AND status = ?", id, models.PayoutStatusPending).
			Updates(map[string]interface{}{"status": newStatus, "updated_at": now})
		if res.Error != nil {
			return storageError("failed to update payout request status", res.Error)
		}
		if res.RowsAffected == 0 {
			return invalidStateError("request is not in pending status")
		}

		request.Status = newStatus
		request.UpdatedAt = now
		result.Request = request

		if newStatus != models.PayoutStatusAccepted {
			return nil
		}

		// Legacy rows without a user id: the status change commits, the
		// ledger posting is skipped.
		if request.UserID == nil {
			log.Printf("payout request %s accepted without user_id, skipping ledger posting", id)
			return nil
		}

		bookID, err := s.resolveBook(tx, &request)
		if err != nil {
			return err
		}
		if bookID == nil {
			log.Printf("payout request %s accepted but no book resolvable, skipping ledger posting", id)
			return nil
		}

		var walletID *uuid.UUID
		var wallet models.Wallet
		werr := tx.Where("user_id = ?", *request.UserID).First(&wallet).Error
		if werr == nil {
			walletID = &wallet.ID
		} else if !errors.Is(werr, gorm.ErrRecordNotFound) {
			return storageError("failed to look up wallet", werr)
		}

		if walletID != nil && !s.allowOverdraft && wallet.Balance < request.Amount {
			return invalidStateError("insufficient wallet balance for payout")
		}

		description := fmt.Sprintf("Payout Request: %s - %s", request.Utr, request.Remarks)
		entry := models.Transaction{
			BookID:       bookID,
			UserID:       request.UserID,
			WalletID:     walletID,
			Type:         models.TransactionTypeDebit,
			Status:       models.TransactionStatusCompleted,
			Amount:       request.Amount,
			CurrencyCode: payoutCurrency,
			Description:  &description,
			Metadata: models.JSONMap{
				"payout_request_id": request.ID.String(),
				"utr":               request.Utr,
				"approved_by":       actorID.String(),
				"approved_at":       now.UTC().Format(time.RFC3339),
				"notes":             notes,
			},
			OccurredAt: now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return storageError("failed to record ledger entry", err)
		}

		if walletID != nil {
			err := tx.Model(&models.Wallet{}).Where("id = ?", *walletID).
				Updates(map[string]interface{}{
					"balance":    gorm.Expr("balance - ?", request.Amount),
					"updated_at": now,
				}).Error
			if err != nil {
				return storageError("failed to adjust wallet balance", err)
			}
		}

		result.LedgerEntryCreated = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// resolveBook picks the book a cash-out posts into: the request's own book,
// else the requester's earliest book, else (policy permitting) the earliest
// book in the system. nil means no book is resolvable and posting is skipped.
func (s *PayoutService) resolveBook(tx *gorm.DB, request *models.PayoutRequest) (*uuid.UUID, error) {
	if request.BookID != nil {
		return request.BookID, nil
	}

	var book models.Book
	err := tx.Where("owner_user_id = ?", *request.UserID).Order("created_at ASC").First(&book).Error
	if err == nil {
		id := book.ID
		return &id, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageError("failed to resolve user book", err)
	}

	if s.bookFallback != BookFallbackAny {
		return nil, nil
	}

	err = tx.Order("created_at ASC").First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("failed to resolve fallback book", err)
	}
	id := book.ID
	return &id, nil
}
