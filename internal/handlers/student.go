package handlers

import (
	"ibank/internal/services/lookup"
	"ibank/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type StudentHandler struct {
	lookupService lookup.Service
}

func NewStudentHandler(lookupService lookup.Service) *StudentHandler {
	return &StudentHandler{lookupService: lookupService}
}

// GetStudent resolves a student registration number to the payable items the
// caller can start a transaction against.
func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	result, err := h.lookupService.Lookup(c.Context(), c.Params("studentId"))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, result)
}
