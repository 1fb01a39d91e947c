package server

import (
	"errors"
	"fmt"

	"didp/core/database"

	"github.com/gofiber/fiber/v2"
)

// ErrInvalidRequest marks client input that failed parsing or validation.
var ErrInvalidRequest = errors.New("invalid request")

// Invalid wraps a message as an ErrInvalidRequest.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, database.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, database.ErrConflict), errors.Is(err, ErrInvalidRequest):
		return fiber.StatusBadRequest
	default:
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fe.Code
		}
		return fiber.StatusInternalServerError
	}
}

// Fail renders err as {"error": "..."} with the mapped status.
func Fail(c *fiber.Ctx, err error) error {
	return c.Status(StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

// ErrorHandler is the fiber fallback for errors returned by handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return Fail(c, err)
}
