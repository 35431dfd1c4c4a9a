package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimit_UnderLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{Max: 5, Window: time.Minute})(okHandler())

	for i := range 5 {
		w := hit(h, "192.168.1.1:12345", nil)
		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimit_OverLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{Max: 2, Window: time.Minute})(okHandler())

	for range 2 {
		require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:9999", nil).Code)
	}

	w := hit(h, "10.0.0.1:9999", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"code":429,"message":"rate limit exceeded"}`, w.Body.String())
}

func TestRateLimit_Keys(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RateLimitConfig
		first   func() *http.Request
		same    func() *http.Request
		another func() *http.Request
	}{
		{
			name:    "remote addr",
			first:   reqFrom("10.0.0.1:1234", nil),
			same:    reqFrom("10.0.0.1:5678", nil),
			another: reqFrom("10.0.0.2:1234", nil),
		},
		{
			name:    "forwarded for",
			first:   reqFrom("192.168.1.1:1", map[string]string{"X-Forwarded-For": "203.0.113.50, 70.41.3.18"}),
			same:    reqFrom("192.168.1.2:2", map[string]string{"X-Forwarded-For": "203.0.113.50"}),
			another: reqFrom("192.168.1.1:1", map[string]string{"X-Forwarded-For": "203.0.113.51"}),
		},
		{
			name:    "real ip",
			first:   reqFrom("192.168.1.1:1", map[string]string{"X-Real-IP": "198.51.100.7"}),
			same:    reqFrom("192.168.1.9:1", map[string]string{"X-Real-IP": "198.51.100.7"}),
			another: reqFrom("192.168.1.1:1", map[string]string{"X-Real-IP": "198.51.100.8"}),
		},
		{
			name: "custom key",
			cfg: RateLimitConfig{KeyFunc: func(r *http.Request) string {
				return r.Header.Get("Authorization")
			}},
			first:   reqFrom("10.0.0.1:1", map[string]string{"Authorization": "a"}),
			same:    reqFrom("10.0.0.2:1", map[string]string{"Authorization": "a"}),
			another: reqFrom("10.0.0.1:1", map[string]string{"Authorization": "b"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.Max, cfg.Window = 1, time.Minute
			h := RateLimit(cfg)(okHandler())

			serve := func(r *http.Request) int {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, r)
				return w.Code
			}
			assert.Equal(t, http.StatusOK, serve(tt.first()))
			assert.Equal(t, http.StatusTooManyRequests, serve(tt.same()))
			assert.Equal(t, http.StatusOK, serve(tt.another()))
		})
	}
}

func reqFrom(remoteAddr string, headers map[string]string) func() *http.Request {
	return func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remoteAddr
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 2, Window: time.Second})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, _, ok := rl.allow("k", now)
	require.True(t, ok)
	_, _, ok = rl.allow("k", now)
	require.True(t, ok)
	_, wait, ok := rl.allow("k", now)
	require.False(t, ok)
	assert.Equal(t, 500*time.Millisecond, wait)

	// One token refills every Window/Max.
	_, _, ok = rl.allow("k", now.Add(500*time.Millisecond))
	assert.True(t, ok)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 1, Window: time.Minute})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rl.allow("old", now)
	rl.allow("fresh", now.Add(50*time.Second))
	rl.cleanup(now.Add(70 * time.Second))

	assert.NotContains(t, rl.clients, "old")
	assert.Contains(t, rl.clients, "fresh")
}

func TestRateLimit_ZeroConfigDefaults(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{})
	assert.Equal(t, 1, rl.cfg.Max)
	assert.Equal(t, time.Minute, rl.cfg.Window)
	assert.NotNil(t, rl.cfg.KeyFunc)
}
