package middlewares

import (
	"errors"
	"log"

	"meilenstein-backend/billing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Fiber errors (use their status code + message)
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 2) Request validation errors (422 + per-field info)
	if ve, ok := err.(validator.ValidationErrors); ok {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	// 3) Billing errors. The tx middleware has already rolled the batch back.
	var validation *billing.ValidationError
	if errors.As(err, &validation) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": validation.Msg,
			"record":  validation.Record,
		})
	}
	var config *billing.ConfigurationError
	if errors.As(err, &config) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": config.Msg,
		})
	}
	var invariant *billing.InvariantViolation
	if errors.As(err, &invariant) {
		log.Printf("invariant violation: %v", invariant)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "internal error",
		})
	}

	// 4) Lookup misses
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "not found"})
	}

	// 5) Unknown errors (500)
	log.Printf("internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}
