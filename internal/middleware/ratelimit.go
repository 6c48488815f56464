package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter counts hits per key in fixed windows. Hit returns the number of
// hits in the current window, including this one, and the time left until
// the window resets.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimiter limits requests per client IP to limit per window.
type RateLimiter struct {
	counter Counter
	limit   int64
	window  time.Duration
	prefix  string
}

// NewRateLimiter returns a limiter counting through c. prefix namespaces
// its keys so several limiters can share one counter.
func NewRateLimiter(c Counter, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{counter: c, limit: int64(limit), window: window, prefix: prefix}
}

// Middleware returns an HTTP middleware that rate-limits by client IP.
// A failing counter lets the request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		n, reset, err := rl.counter.Hit(r.Context(), rl.prefix+ip, rl.window)
		if err != nil {
			slog.Warn("rate limit counter failed", "ip", ip, "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if n > rl.limit {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter(reset)))
			writeError(w, http.StatusTooManyRequests, "Too many attempts, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// retryAfter rounds reset up to whole seconds, at least one.
func retryAfter(reset time.Duration) int {
	secs := int(math.Ceil(reset.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// MemoryCounter keeps windows in process memory. Stop ends its sweeper.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*memWindow
	now     func() time.Time
	stopCh  chan struct{}
	stop    sync.Once
}

type memWindow struct {
	count int64
	reset time.Time
}

// NewMemoryCounter returns a MemoryCounter that drops expired windows
// every sweep.
func NewMemoryCounter(sweep time.Duration) *MemoryCounter {
	m := &MemoryCounter{
		windows: make(map[string]*memWindow),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(sweep)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-m.stopCh:
				return
			}
		}
	}()

	return m
}

// Stop terminates the background sweeper. It is safe to call more than once.
func (m *MemoryCounter) Stop() {
	m.stop.Do(func() { close(m.stopCh) })
}

// Hit implements Counter.
func (m *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || !now.Before(w.reset) {
		w = &memWindow{reset: now.Add(window)}
		m.windows[key] = w
	}
	w.count++
	return w.count, w.reset.Sub(now), nil
}

// sweep removes windows that have already reset.
func (m *MemoryCounter) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, w := range m.windows {
		if !now.Before(w.reset) {
			delete(m.windows, key)
		}
	}
}

// ValkeyCounter keeps windows in Valkey so every instance shares them.
type ValkeyCounter struct {
	client *redis.Client
}

// NewValkeyCounter returns a Counter backed by client.
func NewValkeyCounter(client *redis.Client) *ValkeyCounter {
	return &ValkeyCounter{client: client}
}

// Hit implements Counter. The key's expiry is set by the first hit of a
// window, and again if an earlier hit left it without one.
func (c *ValkeyCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	var incr *redis.IntCmd
	var pttl *redis.DurationCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit hit: %w", err)
	}

	reset := pttl.Val()
	if reset < 0 {
		if err := c.client.PExpire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("rate limit expire: %w", err)
		}
		reset = window
	}
	return incr.Val(), reset, nil
}

// clientIP extracts the client's IP address, checking X-Forwarded-For
// and X-Real-IP headers for proxied requests.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (strip port).
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
