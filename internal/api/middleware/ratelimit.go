package middleware

import (
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitOptions configures one mounted limiter instance.
type RateLimitOptions struct {
	Window time.Duration
	Limit  int
	// Prefix namespaces counter keys so independently mounted limiters
	// never share budgets.
	Prefix string
	// KeyFunc overrides the default client fingerprint.
	KeyFunc func(r *http.Request) string
	// OnLimitReached is invoked once per rejected request.
	OnLimitReached func(r *http.Request)
}

type bucket struct {
	count     int
	expiresAt time.Time
}

// RateLimiter enforces a fixed-window request ceiling per key. When a redis
// client is available its atomic INCR linearizes counting across processes;
// on redis errors or absence the limiter degrades to per-process in-memory
// counters, trading accuracy under multi-process deployment for
// availability.
type RateLimiter struct {
	opts  RateLimitOptions
	redis redis.UniversalClient

	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewRateLimiter builds a limiter. client may be nil, in which case only
// the in-process fallback is used.
func NewRateLimiter(opts RateLimitOptions, client redis.UniversalClient) *RateLimiter {
	if opts.Prefix == "" {
		opts.Prefix = "rl"
	}
	return &RateLimiter{
		opts:    opts,
		redis:   client,
		buckets: make(map[string]*bucket),
	}
}

func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := l.opts.Prefix + ":" + l.key(r)

		if l.redis != nil {
			allowed, err := l.allowRedis(r, key)
			if err == nil {
				if !allowed {
					l.reject(w, r)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			// An in-flight redis failure is not a reason to fail the
			// request; fall through to the local window.
			log.Printf("WARN [middleware.RateLimit] redis fallback for %s: %v", key, err)
		}

		if !l.allowLocal(key) {
			l.reject(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) allowRedis(r *http.Request, key string) (bool, error) {
	ctx := r.Context()

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}

	// First hit in the window owns setting its expiry.
	if count == 1 {
		if err := l.redis.PExpire(ctx, key, l.opts.Window).Err(); err != nil {
			return false, err
		}
	}

	return count <= int64(l.opts.Limit), nil
}

func (l *RateLimiter) allowLocal(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.buckets[key]
	if !ok || !entry.expiresAt.After(now) {
		l.buckets[key] = &bucket{count: 1, expiresAt: now.Add(l.opts.Window)}
		return true
	}

	if entry.count >= l.opts.Limit {
		return false
	}

	entry.count++
	return true
}

func (l *RateLimiter) reject(w http.ResponseWriter, r *http.Request) {
	if l.opts.OnLimitReached != nil {
		l.opts.OnLimitReached(r)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"success":false,"error":"Too many requests"}`))
}

func (l *RateLimiter) key(r *http.Request) string {
	if l.opts.KeyFunc != nil {
		if k := l.opts.KeyFunc(r); k != "" {
			return k
		}
	}
	return ClientFingerprint(r)
}

// ClientFingerprint is a best-effort client key: the first forwarded-for
// hop, else the real-ip header, else the user agent, else "anonymous". Not
// cryptographically meaningful.
func ClientFingerprint(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if ua := r.Header.Get("User-Agent"); ua != "" {
		return ua
	}
	return "anonymous"
}
