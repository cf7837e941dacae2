package limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter_Allow(t *testing.T) {
	l := NewIPRateLimiter(t.Context(), 0.001, 2)

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "buckets are per IP")
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	l := NewIPRateLimiter(t.Context(), 1, 1)
	l.Allow("10.0.0.1")

	assert.Equal(t, 0, l.sweep(time.Now()))
	assert.Equal(t, 1, l.sweep(time.Now().Add(time.Minute)))
}

func TestMiddleware(t *testing.T) {
	l := NewIPRateLimiter(t.Context(), 0.001, 1)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	r.RemoteAddr = "192.168.1.5:4242"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":1007`)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "[::1]:8080"
	assert.Equal(t, "::1", ClientIP(r))

	r.RemoteAddr = ""
	assert.Equal(t, "unknown_ip", ClientIP(r))
}
