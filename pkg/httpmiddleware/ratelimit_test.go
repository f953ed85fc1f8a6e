package httpmiddleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 2, Window: time.Minute})
	now := time.Date(2026, 8, 30, 10, 0, 30, 0, time.UTC)

	remaining, _, allowed := rl.allow("1.2.3.4", now)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)

	remaining, resetAt, allowed := rl.allow("1.2.3.4", now)
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)

	// Third request in the same window is rejected.
	_, _, allowed = rl.allow("1.2.3.4", now.Add(time.Second))
	assert.False(t, allowed)

	// A different client has its own window.
	_, _, allowed = rl.allow("5.6.7.8", now)
	assert.True(t, allowed)

	// After the window elapses the quota resets.
	_, _, allowed = rl.allow("1.2.3.4", resetAt.Add(time.Second))
	assert.True(t, allowed)
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 1, Window: time.Minute})
	now := time.Now()

	rl.allow("old", now)
	rl.allow("fresh", now.Add(50*time.Second))

	rl.cleanup(now.Add(70 * time.Second))

	rl.mu.Lock()
	_, oldKept := rl.windows["old"]
	rl.mu.Unlock()
	assert.False(t, oldKept)
}

func TestRateLimitMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := RateLimitWithCleanup(ctx, RateLimitConfig{Max: 1, Window: time.Minute})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"code": 429, "message": "rate limit exceeded"}`, rec.Body.String())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}
