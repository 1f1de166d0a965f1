package api

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

const (
	CodeNotFound            = "NOT_FOUND"
	CodeDatabaseError       = "DATABASE_ERROR"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
	CodeBadRequest          = "BAD_REQUEST"
	CodeValidationError     = "VALIDATION_ERROR"
	CodeStorageUnavailable  = "STORAGE_UNAVAILABLE"
)

// ErrorHandler is the fiber catch-all. Only messages built by this package
// reach the client; anything else is logged and replaced.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var apiErr Error
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.Status).JSON(apiErr)
	}

	var valErr ValidationError
	if errors.As(err, &valErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(valErr)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			return c.Status(fiber.StatusNotFound).JSON(ErrRouteNotFound())
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge:
			return c.Status(fiberErr.Code).JSON(NewError(fiberErr.Code, CodeBadRequest, fiberErr.Message))
		}
	}

	slog.Error("request failed",
		"method", c.Method(),
		"path", c.Path(),
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		"error", err.Error())
	return c.Status(fiber.StatusInternalServerError).JSON(ErrInternal())
}

type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

// Error implements the Error interface
func (e Error) Error() string {
	return e.Message
}

func NewError(status int, code, msg string) Error {
	return Error{
		Status:  status,
		Code:    code,
		Message: msg,
	}
}

type ValidationError struct {
	Code    string            `json:"code"`
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

func (e ValidationError) Error() string {
	return e.Message
}

func NewValidationError(fields map[string]string) ValidationError {
	return ValidationError{
		Code:    CodeValidationError,
		Message: "validation failed",
		Fields:  fields,
	}
}

func ErrBadRequest() Error {
	return NewError(fiber.StatusBadRequest, CodeBadRequest, "invalid JSON request")
}

func ErrNotFound[T any](arg T, resource string) Error {
	return NewError(fiber.StatusNotFound, CodeNotFound, fmt.Sprintf("%s with id '%v' not found", resource, arg))
}

func ErrRouteNotFound() Error {
	return NewError(fiber.StatusNotFound, CodeNotFound, "Not found")
}

func ErrDatabase(msg string) Error {
	return NewError(fiber.StatusInternalServerError, CodeDatabaseError, msg)
}

func ErrStorageUnavailable() Error {
	return NewError(fiber.StatusServiceUnavailable, CodeStorageUnavailable, "storage unavailable")
}

func ErrInternal() Error {
	return NewError(fiber.StatusInternalServerError, CodeInternalServerError, "Internal server error")
}
