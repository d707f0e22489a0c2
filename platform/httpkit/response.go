// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"marketplace_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

const msgInternal = "internal server error"

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// Accepted sends a 202 response for work handed to the background queue.
func Accepted(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusAccepted, payload)
}

// Abort writes a domain error and stops the middleware chain.
func Abort(c *gin.Context, err *apperr.Error) {
	c.AbortWithStatusJSON(err.HTTPStatus(), ErrorResponse{Error: err.Message, Details: err.Details})
}

// HandleError maps domain errors to HTTP responses.
// If the error is a typed *apperr.Error, it uses the error's Kind to determine
// the HTTP status code. Untyped errors never leak their text and map to 500.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var domainErr *apperr.Error
	if !errors.As(err, &domainErr) {
		domainErr = apperr.Internal(msgInternal)
	}
	Error(c, domainErr.HTTPStatus(), domainErr.Message, domainErr.Details)
	return true
}
