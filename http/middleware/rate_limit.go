package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Counter is the rate limit backend: a fixed-window hit counter.
type Counter interface {
	// Incr bumps the window counter for key and returns the new count.
	// The window resets after ttl.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// MemoryCounter is a map-backed Counter for single-node panels.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{windows: make(map[string]*memoryWindow)}
}

func (c *MemoryCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	w, ok := c.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(ttl)}
		c.windows[key] = w
	}
	w.count++
	return w.count, nil
}

// RedisCounter shares the window across replicas.
type RedisCounter struct {
	client *redis.Client
	prefix string
}

func NewRedisCounter(client *redis.Client, prefix string) *RedisCounter {
	return &RedisCounter{client: client, prefix: prefix}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	full := c.prefix + key
	count, err := c.client.Incr(ctx, full).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		// First hit opens the window.
		c.client.Expire(ctx, full, ttl)
	}
	return count, nil
}

// RateLimitConfig bounds per-caller request rates on the dispatch
// surface. Callers are keyed by API key header when present, remote
// address otherwise.
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Rate    int           `mapstructure:"rate" json:"rate" yaml:"rate" default:"300"`
	Window  time.Duration `mapstructure:"window" json:"window" yaml:"window" default:"1m"`
}

// RateLimit rejects callers above cfg.Rate hits per cfg.Window with 429.
// Backend errors fail open: dispatch availability wins over precision.
func RateLimit(counter Counter, cfg RateLimitConfig, logger *zap.Logger) func(next http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled || counter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := callerKey(r)
			count, err := counter.Incr(r.Context(), key, cfg.Window)
			if err != nil {
				logger.Warn("rate limit backend unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(cfg.Rate) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Rate))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprintf(w, `{"error":{"code":429,"message":"Rate limit exceeded","limit":%d}}`, cfg.Rate)
				return
			}

			remaining := int64(cfg.Rate) - count
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Rate))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return "key:" + key
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
