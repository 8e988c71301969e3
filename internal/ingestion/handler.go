package ingestion

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	v1 "github.com/aevon-lab/geopresence/internal/api/v1"
	httperr "github.com/aevon-lab/geopresence/internal/core/errors"
	"github.com/gin-gonic/gin"
)

const (
	msgReadBodyFailed   = "Failed to read request body"
	msgInvalidBody      = "Request validation failed"
	msgInvalidQuery     = "Invalid query parameters"
	msgRateLimited      = "Too many location pings. Please slow down."
	msgInvalidCoords    = "Latitude must be between -90 and 90, longitude between -180 and 180"
	msgStoreFailed      = "Failed to store location ping. Please try again."
	msgQueryFailed      = "Failed to query nearby devices. Please try again."
	msgCleanupFailed    = "Failed to clean up expired location pings"
	msgInternal         = "An unexpected error occurred"
	headerRetryAfter    = "Retry-After"
	headerRateRemaining = "X-RateLimit-Remaining"
)

// ingestionError carries the HTTP error shape from a helper back to the handler.
type ingestionError struct {
	statusCode int
	code       string
	message    string
	details    interface{}
	retryAfter int
}

func (e *ingestionError) Error() string {
	return e.message
}

// PingHandler handles POST /ping.
func (s *Service) PingHandler(c *gin.Context) {
	req, ierr := s.parsePing(c)
	if ierr != nil {
		writeError(c, ierr)
		return
	}

	res, err := s.SubmitPing(c.Request.Context(), PingInput{
		DeviceID:   req.DeviceID,
		Latitude:   *req.Latitude,
		Longitude:  *req.Longitude,
		Accuracy:   *req.Accuracy,
		ObservedAt: req.Timestamp,
	})
	if err != nil {
		writeError(c, classify(err, msgStoreFailed))
		return
	}

	c.Header(headerRateRemaining, strconv.Itoa(res.RemainingQuota))
	c.JSON(http.StatusOK, v1.PingResponse{
		Status:           res.Status,
		NextPingInterval: res.NextPingInterval,
	})
}

// parsePing enforces the body size limit and binds the request. Binding
// failures, including out-of-range coordinates, are 422s.
func (s *Service) parsePing(c *gin.Context) (*v1.PingRequest, *ingestionError) {
	maxBytes := int64(s.opts.MaxBodySizeByte)
	bodyBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBytes+1))
	if err != nil {
		slog.Error("[Ingestion] Failed to read request body", "error", err)
		return nil, &ingestionError{
			statusCode: http.StatusInternalServerError,
			code:       httperr.CodeInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("[Ingestion] Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return nil, &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			code:       httperr.CodeValidationError,
			message:    "Request body exceeds maximum allowed size",
			details:    map[string]interface{}{"max_size_bytes": maxBytes},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var req v1.PingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("[Ingestion] Invalid ping body", "error", err, "payload_size", len(bodyBytes))
		return nil, &ingestionError{
			statusCode: http.StatusUnprocessableEntity,
			code:       httperr.CodeValidationError,
			message:    msgInvalidBody,
			details:    validationDetails(err, &req, "body"),
		}
	}
	return &req, nil
}

// NearbyHandler handles GET /nearby?latitude=&longitude=&radius=.
func (s *Service) NearbyHandler(c *gin.Context) {
	q, ierr := bindNearbyQuery(c)
	if ierr != nil {
		writeError(c, ierr)
		return
	}

	devices, err := s.GetNearby(c.Request.Context(), *q.Latitude, *q.Longitude, *q.Radius)
	if err != nil {
		writeError(c, classify(err, msgQueryFailed))
		return
	}

	c.JSON(http.StatusOK, v1.NearbyResponse{Count: len(devices), Devices: devices})
}

// DensityHandler handles GET /density?latitude=&longitude=&radius=.
func (s *Service) DensityHandler(c *gin.Context) {
	q, ierr := bindNearbyQuery(c)
	if ierr != nil {
		writeError(c, ierr)
		return
	}

	density, err := s.EstimateDensity(c.Request.Context(), *q.Latitude, *q.Longitude, *q.Radius)
	if err != nil {
		writeError(c, classify(err, msgQueryFailed))
		return
	}

	c.JSON(http.StatusOK, v1.DensityResponse{
		Latitude:      *q.Latitude,
		Longitude:     *q.Longitude,
		RadiusMeters:  *q.Radius,
		DeviceCount:   density.DeviceCount,
		DevicesPerKm2: density.DevicesPerKm2,
	})
}

// CleanupHandler handles POST /cleanup.
func (s *Service) CleanupHandler(c *gin.Context) {
	removed, err := s.Cleanup(c.Request.Context())
	if err != nil {
		writeError(c, classify(err, msgCleanupFailed))
		return
	}
	c.JSON(http.StatusOK, v1.CleanupResponse{Removed: removed})
}

// RemainingHandler handles GET /ratelimit/:device_id.
func (s *Service) RemainingHandler(c *gin.Context) {
	deviceID := c.Param("device_id")
	remaining, err := s.Remaining(c.Request.Context(), deviceID)
	if err != nil {
		writeError(c, classify(err, msgQueryFailed))
		return
	}
	c.Header(headerRateRemaining, strconv.Itoa(remaining))
	c.JSON(http.StatusOK, gin.H{"device_id": deviceID, "remaining": remaining})
}

func bindNearbyQuery(c *gin.Context) (*v1.NearbyQuery, *ingestionError) {
	var q v1.NearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		slog.Warn("[Ingestion] Invalid query parameters", "error", err, "path", c.FullPath())
		return nil, &ingestionError{
			statusCode: http.StatusUnprocessableEntity,
			code:       httperr.CodeValidationError,
			message:    msgInvalidQuery,
			details:    validationDetails(err, &q, "query"),
		}
	}
	return &q, nil
}

// classify maps service errors to the client-facing envelope. Substrate error
// text is never copied into the response.
func classify(err error, storeMessage string) *ingestionError {
	var limited *RateLimitedError
	switch {
	case errors.As(err, &limited):
		return &ingestionError{
			statusCode: http.StatusTooManyRequests,
			code:       httperr.CodeRateLimitExceeded,
			message:    msgRateLimited,
			details:    map[string]interface{}{"retry_after": limited.RetryAfter},
			retryAfter: limited.RetryAfter,
		}
	case errors.Is(err, ErrInvalidDeviceID):
		return &ingestionError{
			statusCode: http.StatusUnprocessableEntity,
			code:       httperr.CodeValidationError,
			message:    err.Error(),
		}
	case errors.Is(err, ErrInvalidCoordinate):
		return &ingestionError{
			statusCode: http.StatusBadRequest,
			code:       httperr.CodeInvalidCoordinates,
			message:    msgInvalidCoords,
		}
	case errors.Is(err, ErrInvalidLocationData), errors.Is(err, ErrInvalidQuery):
		return &ingestionError{
			statusCode: http.StatusBadRequest,
			code:       httperr.CodeInvalidLocationData,
			message:    err.Error(),
		}
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrReconcileFailure):
		return &ingestionError{
			statusCode: http.StatusInternalServerError,
			code:       httperr.CodeCacheError,
			message:    storeMessage,
		}
	default:
		slog.Error("[Ingestion] Unclassified error", "error", err)
		return &ingestionError{
			statusCode: http.StatusInternalServerError,
			code:       httperr.CodeInternalError,
			message:    msgInternal,
		}
	}
}

// writeError serializes an ingestionError as the JSON error envelope.
func writeError(c *gin.Context, err *ingestionError) {
	if err.retryAfter > 0 {
		c.Header(headerRetryAfter, strconv.Itoa(err.retryAfter))
	}
	httperr.Write(c, err.statusCode, err.code, err.message, err.details)
}
