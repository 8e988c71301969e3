package errors

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Error codes surfaced to clients. Raw substrate errors never leave the service;
// every failure is mapped to one of these.
const (
	CodeRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
	CodeInvalidCoordinates  = "INVALID_COORDINATES"
	CodeInvalidLocationData = "INVALID_LOCATION_DATA"
	CodeValidationError     = "VALIDATION_ERROR"
	CodeCacheError          = "CACHE_ERROR"
	CodeInternalError       = "INTERNAL_SERVER_ERROR"
)

// RequestIDKey is the gin context key under which the request id middleware
// stores the current request id.
const RequestIDKey = "request_id"

// ErrorBody is the inner object of the standardized error envelope.
type ErrorBody struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp string      `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorResponse is the error response body for every endpoint.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse builds an envelope stamped with the current UTC time.
func NewErrorResponse(code, message string, details interface{}, requestID string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:      code,
			Message:   message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			RequestID: requestID,
		},
	}
}

// Write serializes the envelope, picking up the request id set by the middleware.
func Write(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, NewErrorResponse(code, message, details, c.GetString(RequestIDKey)))
}

// HTTPStatusCode is the code used for routing-level failures such as an
// unknown path, e.g. "HTTP_404".
func HTTPStatusCode(status int) string {
	return "HTTP_" + strconv.Itoa(status)
}
