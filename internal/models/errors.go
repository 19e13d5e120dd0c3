package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies application errors. The set is closed; every kind has
// exactly one HTTP status in kindStatus.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindUnauthenticated
	KindConflict
)

var kindStatus = map[ErrorKind]int{
	KindUnexpected:      fiber.StatusInternalServerError,
	KindValidation:      fiber.StatusBadRequest,
	KindNotFound:        fiber.StatusNotFound,
	KindForbidden:       fiber.StatusForbidden,
	KindUnauthenticated: fiber.StatusUnauthorized,
	KindConflict:        fiber.StatusBadRequest,
}

var kindCode = map[ErrorKind]string{
	KindUnexpected:      "INTERNAL_ERROR",
	KindValidation:      "VALIDATION_ERROR",
	KindNotFound:        "NOT_FOUND",
	KindForbidden:       "FORBIDDEN",
	KindUnauthenticated: "UNAUTHORIZED",
	KindConflict:        "CONFLICT",
}

func (k ErrorKind) String() string {
	return kindCode[k]
}

// ErrorResponse is the failure envelope returned to API clients.
type ErrorResponse struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error's kind.
func (e *AppError) Status() int {
	if status, ok := kindStatus[e.Kind]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

func newAppError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Code: kindCode[kind], Message: message}
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return newAppError(KindNotFound, fmt.Sprintf("%s with ID %v not found", resource, id))
}

func NewValidationError(message string) *AppError {
	return newAppError(KindValidation, message)
}

// NewFieldValidationError reports per-field validation failures keyed by the
// JSON field name.
func NewFieldValidationError(fields map[string]string) *AppError {
	e := newAppError(KindValidation, "Validation failed")
	e.Fields = fields
	return e
}

func NewForbiddenError(message string) *AppError {
	return newAppError(KindForbidden, message)
}

func NewUnauthorizedError(message string) *AppError {
	return newAppError(KindUnauthenticated, message)
}

func NewConflictError(message string) *AppError {
	return newAppError(KindConflict, message)
}

func NewInternalError(err error) *AppError {
	e := newAppError(KindUnexpected, "Internal server error")
	e.Err = err
	return e
}

// AsAppError unwraps err into an *AppError. Errors that are not application
// errors are wrapped as internal errors.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// RespondWithError writes the failure envelope for err. The wrapped cause of
// an internal error is never sent to the client.
func RespondWithError(c *fiber.Ctx, err error) error {
	appErr := AsAppError(err)
	return c.Status(appErr.Status()).JSON(ErrorResponse{
		Message: appErr.Message,
		Code:    appErr.Code,
		Errors:  appErr.Fields,
	})
}
