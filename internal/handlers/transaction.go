package handlers

import (
	apperr "ibank/internal/errors"
	"ibank/internal/services/payment"
	"ibank/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	paymentService payment.Service
}

func NewTransactionHandler(paymentService payment.Service) *TransactionHandler {
	return &TransactionHandler{paymentService: paymentService}
}

// StartTransaction creates pending transactions for the selected tuition (or
// all of them via public id 0) and emails an OTP to the caller.
func (h *TransactionHandler) StartTransaction(c *fiber.Ctx) error {
	var input struct {
		StudentID string `json:"studentId"`
		TuitionID *int   `json:"tuitionId"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid_body", "invalid request body")
	}
	// 0 is a valid selection, so absence must be distinguishable from it.
	if input.TuitionID == nil {
		return respondError(c, apperr.ErrMissingTuitionID)
	}

	userID := c.Locals("userID").(uint)

	result, err := h.paymentService.Start(c.Context(), userID, input.StudentID, *input.TuitionID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, result)
}

// VerifyTransaction checks the OTP and, on a match, executes the money
// movement for the transaction's whole group.
func (h *TransactionHandler) VerifyTransaction(c *fiber.Ctx) error {
	var input struct {
		TransactionID uint   `json:"transactionId"`
		OTPCode       string `json:"otpCode"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid_body", "invalid request body")
	}

	result, err := h.paymentService.Verify(c.Context(), input.TransactionID, input.OTPCode)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, result)
}

// ResendOTP replaces the transaction's OTP with a fresh one and emails it.
func (h *TransactionHandler) ResendOTP(c *fiber.Ctx) error {
	var input struct {
		TransactionID uint `json:"transactionId"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid_body", "invalid request body")
	}

	userID := c.Locals("userID").(uint)

	result, err := h.paymentService.Resend(c.Context(), userID, input.TransactionID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, result)
}

// CancelTransaction cancels a pending transaction and its group siblings.
func (h *TransactionHandler) CancelTransaction(c *fiber.Ctx) error {
	var input struct {
		TransactionID uint `json:"transactionId"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid_body", "invalid request body")
	}

	userID := c.Locals("userID").(uint)

	if err := h.paymentService.Cancel(c.Context(), userID, input.TransactionID); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"cancelled": true})
}

// DeleteTransaction removes a cancelled or failed transaction from history.
func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	var input struct {
		TransactionID uint `json:"transactionId"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid_body", "invalid request body")
	}

	userID := c.Locals("userID").(uint)

	if err := h.paymentService.Delete(c.Context(), userID, input.TransactionID); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"deleted": true})
}

// GetTransactions returns the caller's transaction history, newest first.
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	entries, err := h.paymentService.History(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"transactions": entries})
}
