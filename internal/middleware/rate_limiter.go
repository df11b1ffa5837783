package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/leodymann/wi-api/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Counter counts hits for a key within a fixed window and reports how long
// until the window resets.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// ── Redis counter ─────────────────────────────────────────────────────────────

// RedisCounter shares limits across API replicas.
type RedisCounter struct{ rdb *redis.Client }

func NewRedisCounter(rdb *redis.Client) *RedisCounter { return &RedisCounter{rdb: rdb} }

func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	return incr.Val(), ttl.Val(), nil
}

// ── In-memory counter ─────────────────────────────────────────────────────────

type memEntry struct {
	count     int64
	windowEnd time.Time
}

// MemoryCounter is the single-process fallback when redis is not configured.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]*memEntry
	now     func() time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{entries: make(map[string]*memEntry), now: time.Now}
}

func (m *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &memEntry{windowEnd: now.Add(window)}
		m.entries[key] = e
	}
	e.count++
	m.purgeLocked(now)
	return e.count, e.windowEnd.Sub(now), nil
}

// purgeLocked drops expired windows once the map grows.
func (m *MemoryCounter) purgeLocked(now time.Time) {
	if len(m.entries) < 1024 {
		return
	}
	for k, e := range m.entries {
		if now.After(e.windowEnd) {
			delete(m.entries, k)
		}
	}
}

// ── Middleware ────────────────────────────────────────────────────────────────

// RateLimiter allows limit requests per window per client IP within scope.
// A counter error lets the request through.
func RateLimiter(counter Counter, scope string, limit int, window time.Duration, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + scope + ":" + c.ClientIP()
		n, ttl, err := counter.Hit(c.Request.Context(), key, window)
		if err != nil {
			log.Warn().Err(err).Str("scope", scope).Msg("rate limiter: counter unavailable")
			c.Next()
			return
		}
		if n > int64(limit) {
			secs := int(ttl.Seconds())
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(message))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter(counter Counter) gin.HandlerFunc {
	return RateLimiter(counter, "login", 20, time.Minute, "Muitas tentativas de login. Tente novamente em 1 minuto.")
}

// APIRateLimiter is the general limiter applied to every route.
func APIRateLimiter(counter Counter, limit int) gin.HandlerFunc {
	return RateLimiter(counter, "api", limit, time.Minute, "Muitas requisições. Tente novamente em instantes.")
}
