package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jmylchreest/stripscan/internal/colour"
	imageutil "github.com/jmylchreest/stripscan/internal/image"
	"github.com/jmylchreest/stripscan/internal/session"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, imageutil.ErrTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, colour.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, session.ErrInvalidTransition):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// handleError renders every error as a JSON body.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		msg = "internal server error"
	}
	return c.Status(code).JSON(fiber.Map{
		"error": msg,
	})
}
