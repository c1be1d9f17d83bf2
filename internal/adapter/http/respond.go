package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"jobboard/internal/domain"
)

// All responses use the {success, message?, data?} envelope.

func ok(c *fiber.Ctx, status int, message string, data interface{}) error {
	body := fiber.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

// respondError maps a domain error onto its HTTP status. Anything outside
// the taxonomy is a 500 with a generic message; the cause goes to the log.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidCredentials):
		return fail(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrAccountUnverified):
		return fail(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrMissingFile),
		errors.Is(err, domain.ErrUnsupportedFileType),
		errors.Is(err, domain.ErrFileTooLarge),
		errors.Is(err, domain.ErrDuplicateApplication),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrCodeInvalid):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "Application not found")
	case errors.Is(err, domain.ErrApplicationDecided):
		return fail(c, fiber.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return fail(c, fiber.StatusInternalServerError, "Internal server error")
	}
}
