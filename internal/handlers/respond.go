package handlers

import (
	"errors"
	"log"

	apperr "ibank/internal/errors"
	"ibank/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error onto the wire. Domain errors keep their
// stable code and status; anything else is an infrastructure failure and is
// collapsed into a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	var de *apperr.DomainError
	if errors.As(err, &de) {
		return utils.Error(c, de.Status, de.Code, de.Message)
	}
	log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	return utils.InternalError(c)
}
