// errors.go - Structured error handling for API responses
package api

import (
	"fmt"
	"net/http"

	"github.com/circuit-designer/backend/internal/editor"
	"github.com/circuit-designer/backend/internal/session"
	"github.com/circuit-designer/backend/internal/simulation"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ShowErrorDetails includes the cause of unexpected errors in responses.
var ShowErrorDetails = true

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil && ShowErrorDetails {
		err.Details = cause.Error()
	}
	return err
}

// advisoryErrors maps domain rejections to HTTP answers. Capacity and
// collision rejections are conflicts; the rest are bad input or unknown ids.
var advisoryErrors = []struct {
	err    error
	status int
	code   string
}{
	{session.ErrSessionNotFound, http.StatusNotFound, "SESSION_NOT_FOUND"},
	{editor.ErrComponentNotFound, http.StatusNotFound, "COMPONENT_NOT_FOUND"},
	{editor.ErrUnknownPin, http.StatusNotFound, "UNKNOWN_PIN"},
	{editor.ErrMicrocontrollerExists, http.StatusConflict, "MICROCONTROLLER_EXISTS"},
	{editor.ErrDuplicateComponent, http.StatusConflict, "DUPLICATE_COMPONENT"},
	{editor.ErrPinInUse, http.StatusConflict, "PIN_IN_USE"},
	{simulation.ErrCircuitIncomplete, http.StatusConflict, "CIRCUIT_INCOMPLETE"},
	{editor.ErrNotInPalette, http.StatusBadRequest, "NOT_IN_PALETTE"},
	{editor.ErrUnknownComponentType, http.StatusBadRequest, "UNKNOWN_COMPONENT_TYPE"},
	{editor.ErrInvalidPin, http.StatusBadRequest, "INVALID_PIN"},
	{editor.ErrInvalidScale, http.StatusBadRequest, "INVALID_SCALE"},
	{session.ErrInvalidMode, http.StatusBadRequest, "INVALID_MODE"},
	{session.ErrInvalidPinPolicy, http.StatusBadRequest, "INVALID_PIN_POLICY"},
	{session.ErrInvalidAction, http.StatusBadRequest, "INVALID_ACTION"},
}

// toAPIError converts an error from the session layer into an APIError.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	for _, a := range advisoryErrors {
		if errors.Is(err, a.err) {
			return &APIError{Status: a.status, Code: a.code, Message: err.Error()}
		}
	}
	return NewInternalError("An unexpected error occurred", err)
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	if he, ok := err.(*echo.HTTPError); ok {
		apiErr = &APIError{
			Status:  he.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", he.Message),
		}
	} else {
		apiErr = toAPIError(err)
	}

	if c.Request().Method == http.MethodHead {
		c.NoContent(apiErr.Status)
		return
	}
	c.JSON(apiErr.Status, apiErr)
}

// RespondWithError is a helper to respond with an APIError
func RespondWithError(c echo.Context, err *APIError) error {
	return c.JSON(err.Status, err)
}
