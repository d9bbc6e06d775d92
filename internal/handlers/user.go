package handlers

import (
	"ibank/internal/repositories"
	"ibank/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userRepo repositories.UserRepository
}

func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// GetProfile returns the authenticated user's profile and current balance.
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"id":            user.ID,
		"username":      user.Username,
		"full_name":     user.FullName,
		"phone":         user.Phone,
		"email":         user.Email,
		"balance_cents": user.BalanceCents,
	})
}
