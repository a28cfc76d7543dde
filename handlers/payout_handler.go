package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hissabbook/admin-api/database"
	"github.com/hissabbook/admin-api/models"
	"github.com/hissabbook/admin-api/notifications"
	"github.com/hissabbook/admin-api/services"
	"github.com/hissabbook/admin-api/utils"
	"github.com/hissabbook/admin-api/websocket"
)

type CreatePayoutRequestBody struct {
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	Utr     string  `json:"utr" validate:"required,min=4"`
	Remarks string  `json:"remarks" validate:"required,min=1"`
	Proof   string  `json:"proof" validate:"required,min=1"`
	BookID  *string `json:"book_id" validate:"omitempty,uuid"`
}

func CreatePayoutRequest(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req CreatePayoutRequestBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var bookID *uuid.UUID
	if req.BookID != nil {
		parsed, err := uuid.Parse(*req.BookID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid book_id"})
		}
		bookID = &parsed
	}

	proofRef, err := services.SaveProof(c.Context(), req.Proof)
	if err != nil {
		return c.Status(services.HTTPStatus(err)).JSON(fiber.Map{"error": services.ErrorMessage(err)})
	}

	svc := services.NewPayoutService(database.DB)
	request, err := svc.Create(services.CreatePayoutInput{
		UserID:   userID,
		Amount:   req.Amount,
		Utr:      req.Utr,
		Remarks:  req.Remarks,
		ProofRef: proofRef,
		BookID:   bookID,
	})
	if err != nil {
		return c.Status(services.HTTPStatus(err)).JSON(fiber.Map{"error": services.ErrorMessage(err)})
	}

	websocket.Publish(websocket.PayoutEvent{
		Type:      "payout.created",
		RequestID: request.ID,
		Status:    request.Status,
		Amount:    request.Amount,
		At:        request.CreatedAt,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"request": request})
}

func ListPayoutRequests(c *fiber.Ctx) error {
	svc := services.NewPayoutService(database.DB)
	items, err := svc.List(c.Query("status"))
	if err != nil {
		return c.Status(services.HTTPStatus(err)).JSON(fiber.Map{"error": services.ErrorMessage(err)})
	}
	return c.JSON(fiber.Map{"payoutRequests": items})
}

// Notes is a pointer so a missing field is rejected while an empty string,
// which upstream clients send for "no notes", passes.
type ProcessPayoutBody struct {
	Status string  `json:"status" validate:"required,oneof=accepted rejected"`
	Notes  *string `json:"notes" validate:"required"`
}

func ProcessPayoutRequest(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request id"})
	}
	actorID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req ProcessPayoutBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	svc := services.NewPayoutService(database.DB)
	result, err := svc.TransitionStatus(requestID, req.Status, actorID, *req.Notes)
	if err != nil {
		return c.Status(services.HTTPStatus(err)).JSON(fiber.Map{"error": services.ErrorMessage(err)})
	}

	websocket.Publish(websocket.PayoutEvent{
		Type:      "payout." + result.Request.Status,
		RequestID: result.Request.ID,
		Status:    result.Request.Status,
		Amount:    result.Request.Amount,
		At:        result.Request.UpdatedAt,
	})
	go notifyPayoutProcessed(result.Request, *req.Notes)

	return c.JSON(fiber.Map{
		"success":            true,
		"request":            result.Request,
		"transactionCreated": result.LedgerEntryCreated,
	})
}

// notifyPayoutProcessed emails the requester after the transition commits.
// Delivery failures never affect the workflow.
func notifyPayoutProcessed(request models.PayoutRequest, notes string) {
	if request.UserID == nil {
		return
	}
	var user models.User
	if err := database.DB.Preload("Detail").First(&user, "id = ?", *request.UserID).Error; err != nil {
		log.Printf("failed to load payout requester %s for notification: %v", *request.UserID, err)
		return
	}

	var first, last *string
	if user.Detail != nil {
		first, last = user.Detail.FirstName, user.Detail.LastName
	}
	name := utils.DisplayName(first, last, user.Email)
	reference := utils.PayoutReference(request.ID, request.CreatedAt)

	if request.Status == models.PayoutStatusAccepted {
		notifications.SendEmail(name, user.Email,
			"Your Payout Request Has Been Accepted",
			fmt.Sprintf("<h1>Payout Accepted</h1><p>Hello %s,</p><p>Your payout request %s for ₹%.2f has been accepted and posted to your cashbook on %s.</p>",
				name, reference, request.Amount, request.UpdatedAt.Format(time.RFC1123)),
		)
		return
	}
	notifications.SendEmail(name, user.Email,
		"Update on Your Payout Request",
		fmt.Sprintf("<h1>Payout Rejected</h1><p>Hello %s,</p><p>Your payout request %s for ₹%.2f was rejected.</p><p><b>Notes:</b> %s</p>",
			name, reference, request.Amount, notes),
	)
}
