package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serveWithHeaders(env string, req *http.Request) *httptest.ResponseRecorder {
	handler := SecurityHeaders(SecurityHeadersConfig{Env: env})
	w := httptest.NewRecorder()
	handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(w, req)
	return w
}

func TestSecurityHeaders(t *testing.T) {
	w := serveWithHeaders("development", httptest.NewRequest("GET", "/", nil))

	tests := []struct {
		header   string
		expected string
	}{
		{"X-Frame-Options", "DENY"},
		{"X-Content-Type-Options", "nosniff"},
		{"Referrer-Policy", "no-referrer"},
		{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
		{"Cache-Control", "no-store"},
		{"Cross-Origin-Opener-Policy", "same-origin"},
	}

	for _, tt := range tests {
		if got := w.Header().Get(tt.header); got != tt.expected {
			t.Errorf("Header %s: got %q, want %q", tt.header, got, tt.expected)
		}
	}

	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("HSTS should not be sent in development, got %q", got)
	}
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	forwarded := httptest.NewRequest("GET", "/", nil)
	forwarded.Header.Set("X-Forwarded-Proto", "https")

	direct := httptest.NewRequest("GET", "/", nil)
	direct.TLS = &tls.ConnectionState{}

	tests := []struct {
		name    string
		env     string
		req     *http.Request
		wantSet bool
	}{
		{"production behind tls proxy", "production", forwarded, true},
		{"production direct tls", "production", direct, true},
		{"production plain http", "production", httptest.NewRequest("GET", "/", nil), false},
		{"development over tls", "development", direct, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveWithHeaders(tt.env, tt.req)
			if got := w.Header().Get("Strict-Transport-Security") != ""; got != tt.wantSet {
				t.Errorf("HSTS set = %v, want %v", got, tt.wantSet)
			}
		})
	}
}
