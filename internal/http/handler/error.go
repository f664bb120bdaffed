package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"wordvault/internal/docx"
	"wordvault/internal/http/middleware"
	"wordvault/internal/registry"
	"wordvault/internal/storage"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking
// internal details.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// serviceError translates domain errors into HTTP responses. Expired entries
// answer 410 rather than 404 so clients can tell "never existed" from
// "lifetime elapsed"; everything unrecognized collapses to a plain 500.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, registry.ErrInvalidName):
		return writeError(c, fiber.StatusBadRequest, "INVALID_NAME", "name contains path separators or is empty")
	case errors.Is(err, registry.ErrExpired):
		return writeError(c, fiber.StatusGone, "EXPIRED", "entry has expired")
	case errors.Is(err, registry.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "entry not found")
	case errors.Is(err, registry.ErrAlreadyExists):
		return writeError(c, fiber.StatusConflict, "ALREADY_EXISTS", "a live entry with this name already exists")
	case errors.Is(err, registry.ErrInvalidTemplate), errors.Is(err, docx.ErrInvalidDocument):
		return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_TEMPLATE", "bytes are not a well-formed document")
	case errors.Is(err, storage.ErrDenied):
		return writeError(c, fiber.StatusForbidden, "ACCESS_DENIED", "storage denied the operation")
	case errors.Is(err, storage.ErrUnavailable):
		return writeError(c, fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "object storage unavailable")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error
// responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
