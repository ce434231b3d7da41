package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkghttp "github.com/BradenHooton/lumina/pkg/http"
	pkglogger "github.com/BradenHooton/lumina/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitByIP_RejectsOverLimit(t *testing.T) {
	handler := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 2})(okHandler())

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for range 3 {
		req := httptest.NewRequest("POST", "/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{200, 200, 429}, codes)

	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(last.Body.Bytes(), &resp))
	assert.Equal(t, "rate_limit_exceeded", resp.Error)
}

func TestRateLimitByIP_KeysOnResolvedClientIP(t *testing.T) {
	handler := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 1})(okHandler())

	send := func(clientIP string) int {
		req := httptest.NewRequest("POST", "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:443"
		req = req.WithContext(pkglogger.ContextWithClientIP(req.Context(), clientIP))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, 200, send("198.51.100.1"))
	assert.Equal(t, 200, send("198.51.100.2"), "distinct clients behind one proxy have separate budgets")
	assert.Equal(t, 429, send("198.51.100.1"))
}

func TestRateLimitByIP_NonPositiveUsesDefault(t *testing.T) {
	handler := RateLimitByIP(RateLimitConfig{})(okHandler())

	for i := range DefaultAuthRateLimit().RequestsPerMinute {
		req := httptest.NewRequest("POST", "/auth/login", nil)
		req.RemoteAddr = "192.0.2.9:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, 200, w.Code, "request %d", i+1)
	}
}
