package utils

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/designerhub/internal/types"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data any, status int) error {
	return c.Status(status).JSON(data)
}

// StatusResponse sends a {"status": ...} body, the shape used by action endpoints
func StatusResponse(c *fiber.Ctx, status string, code int) error {
	return c.Status(code).JSON(StatusResponseStruct{Status: status})
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Status:    status,
		Message:   message,
		Ok:        false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
		Type:      errorType,
	})
}

// Error renders err. Domain errors keep their status; anything else is a 500
// and is logged, since its text may carry storage details.
func Error(c *fiber.Ctx, err error) error {
	var customErr *types.CustomError
	if errors.As(err, &customErr) {
		return ErrorResponse(c, customErr.Message, customErr.Code, customErr.Type)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ErrorResponse(c, fiberErr.Message, fiberErr.Code, "http")
	}

	slog.ErrorContext(c.UserContext(), "request failed",
		"method", c.Method(),
		"path", c.Path(),
		"request_id", c.Locals("requestid"),
		"error", err,
	)
	return ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError, "internal")
}

// ErrorHandler is the fiber.Config ErrorHandler for the API
func ErrorHandler(c *fiber.Ctx, err error) error {
	return Error(c, err)
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, "route")
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}

// StatusResponseStruct defines the schema for action responses
type StatusResponseStruct struct {
	Status string `json:"status"`
}
