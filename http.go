package access

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// StatusFromError maps the error taxonomy to HTTP status codes: validation
// faults are client errors, auth faults are 401, infra faults are 5xx.
func StatusFromError(err error) int {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return fiber.StatusInternalServerError
	}

	switch richErr.Category {
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

type errorResponse struct {
	Message  string `json:"message"`
	TextCode string `json:"text_code,omitempty"`
}

func defaultErrHandler(c router.Context, err error) error {
	status := StatusFromError(err)

	resp := errorResponse{Message: err.Error()}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		resp.Message = richErr.Message
		resp.TextCode = richErr.TextCode
	}

	return c.JSON(status, resp)
}

// clientOrigin extracts the caller network origin from forwarding headers.
func clientOrigin(c router.Context) string {
	if ip := c.Header("X-Forwarded-For"); ip != "" {
		return ip
	}
	return c.Header("X-Real-IP")
}
