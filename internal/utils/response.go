package utils

import "github.com/gofiber/fiber/v2"

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful JSON response.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

// Error sends a JSON error response with a stable machine-readable code.
func Error(c *fiber.Ctx, status int, code, message string) error {
	return Respond(c, status, fiber.Map{"error": code, "message": message})
}

// BadRequest sends a JSON error response with status 400.
func BadRequest(c *fiber.Ctx, code, message string) error {
	return Error(c, fiber.StatusBadRequest, code, message)
}

// Unauthorized sends a JSON error response with status 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, "unauthorized", message)
}

// InternalError sends a generic JSON error response with status 500.
// Infrastructure failures are never detailed to clients.
func InternalError(c *fiber.Ctx) error {
	return Error(c, fiber.StatusInternalServerError, "server_error", "internal server error")
}
