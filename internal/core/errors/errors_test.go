package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestWrite_UsesRequestIDFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		c.Set(RequestIDKey, "req-123")
		Write(c, http.StatusTooManyRequests, CodeRateLimitExceeded, "slow down", map[string]int{"retry_after": 7})
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusTooManyRequests, resp.Code)

	var body struct {
		Error struct {
			Code      string         `json:"code"`
			Message   string         `json:"message"`
			Details   map[string]int `json:"details"`
			Timestamp string         `json:"timestamp"`
			RequestID string         `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, CodeRateLimitExceeded, body.Error.Code)
	require.Equal(t, "slow down", body.Error.Message)
	require.Equal(t, 7, body.Error.Details["retry_after"])
	require.Equal(t, "req-123", body.Error.RequestID)

	_, err := time.Parse(time.RFC3339Nano, body.Error.Timestamp)
	require.NoError(t, err)
}

func TestNewErrorResponse_OmitsEmptyDetails(t *testing.T) {
	raw, err := json.Marshal(NewErrorResponse(CodeCacheError, "try again", nil, ""))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "details")
	require.NotContains(t, string(raw), "request_id")
}

func TestHTTPStatusCode(t *testing.T) {
	require.Equal(t, "HTTP_404", HTTPStatusCode(http.StatusNotFound))
	require.Equal(t, "HTTP_405", HTTPStatusCode(http.StatusMethodNotAllowed))
}
