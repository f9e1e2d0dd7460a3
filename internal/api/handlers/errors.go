package handlers

import (
	"errors"

	"billtrack/internal/service"

	"github.com/gofiber/fiber/v2"
)

// writeServiceError maps service errors onto status codes. Validation and
// media-type errors carry caller-safe messages; anything else is reported
// with the generic fallback.
func writeServiceError(c *fiber.Ctx, err error, fallback string) error {
	var (
		validationErr *service.ValidationError
		mediaTypeErr  *service.UnsupportedMediaTypeError
	)

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Message})
	case errors.As(err, &mediaTypeErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": mediaTypeErr.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
	}
}
