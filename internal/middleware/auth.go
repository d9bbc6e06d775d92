// Package middleware provides HTTP middleware for the fiber application.
package middleware

import (
	"log"
	"strings"

	"ibank/internal/repositories"
	"ibank/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates bearer tokens and attaches the caller's identity
// to the request context.
type AuthMiddleware struct {
	userRepo repositories.UserRepository
}

func NewAuthMiddleware(userRepo repositories.UserRepository) *AuthMiddleware {
	if userRepo == nil {
		panic("user repository is required")
	}
	return &AuthMiddleware{userRepo: userRepo}
}

// Handler extracts and validates the Authorization bearer token, verifies the
// user still exists, and stores the claims and user id in Locals.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		log.Printf("token validation error: %v", err)
		return utils.Unauthorized(c, "invalid token")
	}

	// A token can outlive its account.
	if _, err := m.userRepo.GetByID(claims.UserID); err != nil {
		log.Printf("user %d from token not found", claims.UserID)
		return utils.Unauthorized(c, "invalid token")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)

	return c.Next()
}
