package handlers

import (
	"errors"

	"ibank/internal/services/auth"
	"ibank/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginUser authenticates a user and returns a bearer token.
func (h *AuthHandler) LoginUser(c *fiber.Ctx) error {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid_body", "invalid request body")
	}
	if input.Username == "" || input.Password == "" {
		return utils.BadRequest(c, "missing_credentials", "username and password are required")
	}

	user, token, err := h.authService.Login(input.Username, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return utils.Unauthorized(c, "invalid username or password")
		}
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":            user.ID,
			"username":      user.Username,
			"full_name":     user.FullName,
			"email":         user.Email,
			"balance_cents": user.BalanceCents,
		},
	})
}
