package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Connection/Availability errors (retryable)
const (
	// ErrCodeTimeout indicates the upstream request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeUpstream indicates a non-success response from an upstream service.
	ErrCodeUpstream ErrorCode = "UPSTREAM_ERROR"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeRateLimited indicates the client exceeded the request limit.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Authentication errors
const (
	// ErrCodeUnauthorized indicates the request is unauthorized.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeNotConfigured indicates a required credential or setting is absent.
	ErrCodeNotConfigured ErrorCode = "NOT_CONFIGURED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:  true,
	ErrCodeUpstream: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// Radscribe itself never retries; the flag is surfaced to clients so an
// interactive UI can decide whether re-recording or re-submitting makes sense.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
