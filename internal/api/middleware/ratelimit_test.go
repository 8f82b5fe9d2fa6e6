package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mwells/saasdash/internal/api/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedHandler(t *testing.T, opts middleware.RateLimitOptions, client redis.UniversalClient) http.Handler {
	t.Helper()

	limiter := middleware.NewRateLimiter(opts, client)
	return limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}))
}

func doRequest(handler http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", ip)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_RedisFixedWindow(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	handler := newLimitedHandler(t, middleware.RateLimitOptions{
		Window: 10 * time.Second,
		Limit:  2,
		Prefix: "test",
	}, client)

	assert.Equal(t, http.StatusOK, doRequest(handler, "1.2.3.4").Code)
	assert.Equal(t, http.StatusOK, doRequest(handler, "1.2.3.4").Code)

	rec := doRequest(handler, "1.2.3.4")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Too many requests"}`, rec.Body.String())

	// Another client has its own budget.
	assert.Equal(t, http.StatusOK, doRequest(handler, "5.6.7.8").Code)

	// The window expiring resets the counter.
	mr.FastForward(11 * time.Second)
	assert.Equal(t, http.StatusOK, doRequest(handler, "1.2.3.4").Code)
}

func TestRateLimiter_OnLimitReached(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	var reached int
	handler := newLimitedHandler(t, middleware.RateLimitOptions{
		Window:         time.Minute,
		Limit:          1,
		Prefix:         "test",
		OnLimitReached: func(r *http.Request) { reached++ },
	}, client)

	doRequest(handler, "1.2.3.4")
	doRequest(handler, "1.2.3.4")
	doRequest(handler, "1.2.3.4")

	assert.Equal(t, 2, reached)
}

func TestRateLimiter_MemoryFallback(t *testing.T) {
	// No redis client at all: limits are enforced in-process.
	handler := newLimitedHandler(t, middleware.RateLimitOptions{
		Window: 200 * time.Millisecond,
		Limit:  2,
		Prefix: "test",
	}, nil)

	assert.Equal(t, http.StatusOK, doRequest(handler, "1.2.3.4").Code)
	assert.Equal(t, http.StatusOK, doRequest(handler, "1.2.3.4").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "1.2.3.4").Code)

	// After the window elapses the budget is restored.
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, http.StatusOK, doRequest(handler, "1.2.3.4").Code)
}

func TestRateLimiter_RedisErrorFallsBack(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	handler := newLimitedHandler(t, middleware.RateLimitOptions{
		Window: time.Minute,
		Limit:  1,
		Prefix: "test",
	}, client)

	// Kill redis mid-flight: requests keep being served and the limit is
	// still enforced by the in-process fallback.
	mr.Close()

	assert.Equal(t, http.StatusOK, doRequest(handler, "1.2.3.4").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "1.2.3.4").Code)
}

func TestClientFingerprint(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "first forwarded-for hop wins",
			headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1", "X-Real-IP": "9.9.9.9"},
			want:    "1.2.3.4",
		},
		{
			name:    "real-ip when no forwarded-for",
			headers: map[string]string{"X-Real-IP": "9.9.9.9", "User-Agent": "curl"},
			want:    "9.9.9.9",
		},
		{
			name:    "user agent as last header resort",
			headers: map[string]string{"User-Agent": "curl/8.0"},
			want:    "curl/8.0",
		},
		{
			name:    "anonymous when nothing identifies the client",
			headers: nil,
			want:    "anonymous",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Del("User-Agent")
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, middleware.ClientFingerprint(req))
		})
	}
}
