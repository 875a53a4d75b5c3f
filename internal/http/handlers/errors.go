package handlers

// Machine-readable error codes carried in the error envelope next to the
// HTTP status. Generic codes mirror status semantics; the domain codes
// below cover failures a status alone cannot distinguish, such as a rating
// pointing at a missing media item versus a plain validation error.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	ErrCodeValidationFailed = "validation_failed"
	ErrCodeInvalidReference = "invalid_reference"
	ErrCodeDuplicateRating  = "duplicate_rating"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
