// internal/middleware/rate_limit_test.go
package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creolabs/creator-ledger/internal/config"
)

func rateLimitedRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", handler, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func TestRateLimitUsesErrorEnvelope(t *testing.T) {
	r := rateLimitedRouter(RateLimit(1, 1))

	first := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	r.ServeHTTP(first, req)
	require.Equal(t, http.StatusOK, first.Code)

	// Burst of one: the immediate second request is rejected with the same
	// response shape every other error path uses.
	second := httptest.NewRecorder()
	r.ServeHTTP(second, req)
	require.Equal(t, http.StatusTooManyRequests, second.Code)

	var response struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &response))
	assert.False(t, response.Success)
	assert.Equal(t, "RATE_LIMITED", response.Error.Code)
}

func TestRateLimitTiersHonorConfiguredBudgets(t *testing.T) {
	cfg := config.RateLimitConfig{GeneralPerSecond: 2, AuthPerMinute: 1, UploadPerMinute: 1}
	r := rateLimitedRouter(AuthRateLimit(cfg))

	req, _ := http.NewRequest("GET", "/ping", nil)
	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, "request %d", i+1)
	}
}
