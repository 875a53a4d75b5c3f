// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all endpoints,
// including structured error envelopes, consistent JSON serialization, and
// helpers for common HTTP patterns. The goal is to guarantee uniform responses
// for both success and failure cases, making the API predictable and
// machine-friendly.
//
// Conventions:
//   - All error responses must return an ErrorResponse with a stable `code`
//     and a nested `error` object carrying the message and the HTTP status.
//   - Validation failures additionally carry one entry per invalid field
//     under `error.errors`.
//   - `fail()` centralizes error logging and formatting, ensuring 5xx responses
//     are logged with request context for observability.
//   - `ok()` simplifies writing success responses in a consistent shape.
//
// Example error response:
//
//	HTTP/1.1 400 Bad Request
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "validation_failed",
//	  "error": {
//	    "message": "Validation failed",
//	    "status": 400,
//	    "errors": [ { "field": "username", "message": "username must be at least 3 characters" } ]
//	  }
//	}
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mediashare/go-media-backend/internal/http/middleware"
)

// FieldError describes a single invalid request field.
type FieldError struct {
	// Field is the JSON name of the offending field.
	Field string `json:"field" example:"username"`
	// Message explains the violated rule in plain language.
	Message string `json:"message" example:"username must be at least 3 characters"`
}

// ErrorBody is the nested error object carried by every error response.
type ErrorBody struct {
	// Message is a human-readable error description, safe to show to users.
	Message string `json:"message" example:"resource not found"`
	// Status repeats the HTTP status code inside the body.
	Status int `json:"status" example:"404"`
	// Errors lists per-field validation problems, one entry per field.
	Errors []FieldError `json:"errors,omitempty"`
}

// ErrorResponse is the standard error envelope returned by all endpoints.
//
// Fields:
//   - RequestID: Optional correlation ID, echoed from X-Request-ID header, used
//     to correlate server logs with client-side errors.
//   - Code: A stable, machine-readable string (see errors.go constants).
//   - Error: The nested error object with message, status, and field errors.
//
// This struct is used in OpenAPI documentation via Swagger annotations.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Nested error payload
	Error ErrorBody `json:"error"`
}

// MessageResponse is the success envelope for mutations that confirm with a
// human-readable message rather than the full resource.
type MessageResponse struct {
	Message string `json:"message" example:"Item deleted"`
}

// fail aborts the request with a structured error and logs server-side errors.
//
// It constructs an ErrorResponse, writes it as JSON with the given HTTP status,
// and calls gin.Context.AbortWithStatusJSON to stop further processing.
//
// Server errors (>=500) are logged using the request-scoped logger from middleware.
func fail(c *gin.Context, status int, code, msg string) {
	failFields(c, status, code, msg, nil)
}

// failFields is fail() with per-field validation detail attached.
func failFields(c *gin.Context, status int, code, msg string, fields []FieldError) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Error: ErrorBody{
			Message: msg,
			Status:  status,
			Errors:  fields,
		},
	}

	// Log 5xx (server-side) with request-scoped logger
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) should call Fail to return
// consistent error envelopes without directly depending on unexported helpers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failBinding translates a ShouldBind error into the validation envelope.
// Validator errors yield one FieldError per field; anything else (malformed
// JSON, wrong types) becomes a generic bad-request message.
func failBinding(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   strings.ToLower(fe.Field()),
				Message: fieldMessage(fe),
			})
		}
		failFields(c, http.StatusBadRequest, ErrCodeValidationFailed, "Validation failed", fields)
		return
	}
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
}

// trimmer is implemented by request payloads whose string fields should have
// surrounding whitespace stripped before validation.
type trimmer interface{ trim() }

// bindTrimmed decodes the JSON body into req, trims its whitespace, and only
// then runs binding validation. Trimming after validation would let padded
// values slip under the length rules, so the order here matters. Reports the
// failure itself and returns false when the body is unusable.
func bindTrimmed(c *gin.Context, req trimmer) bool {
	if err := json.NewDecoder(c.Request.Body).Decode(req); err != nil {
		failBinding(c, err)
		return false
	}
	req.trim()
	if err := binding.Validator.ValidateStruct(req); err != nil {
		failBinding(c, err)
		return false
	}
	return true
}

// fieldMessage renders a single validator violation in plain language.
// The validator stops at the first violated rule per field, so each field
// surfaces exactly one message.
func fieldMessage(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", name)
	case "alphanum":
		return fmt.Sprintf("%s must contain only letters and digits", name)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or greater", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be %s or less", name, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

// ok writes a success JSON response.
//
// It serializes `body` as JSON with the given HTTP status code.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
