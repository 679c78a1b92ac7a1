package dto

import "net/http"

// Transport-level error codes. Domain errors carry their own codes
// (shared.DomainError); the constants below cover failures that never
// reach the domain layer.
const (
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL"
	// ErrCodeBadRequest is used for malformed or invalid request payloads
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeUnauthorized is used when authentication is missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks the required role
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeTokenExpired is used when the access token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeRateLimited is used when the rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
	// ErrCodePayloadTooLarge is used when the request body exceeds the limit
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	// Domain error codes
	"NOT_FOUND":               http.StatusNotFound,
	"ALREADY_EXISTS":          http.StatusConflict,
	"INVALID_ARGUMENT":        http.StatusBadRequest,
	"CONFLICT":                http.StatusConflict,
	"CONCURRENT_MODIFICATION": http.StatusConflict,
	"LOCK_TIMEOUT":            http.StatusServiceUnavailable,
	"INSUFFICIENT_STOCK":      http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
