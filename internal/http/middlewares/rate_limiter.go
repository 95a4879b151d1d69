package middlewares

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushub/api/internal/observability"
)

// RateLimitedMessage is part of the public API contract; clients match on it.
const RateLimitedMessage = "Too many requests from this IP, please try again in a minute"

// CounterStore tracks request counts per key over a fixed window. The
// first Incr for a key opens a window; the count resets when it ends.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int, retryAfter time.Duration, err error)
}

type RateLimiter struct {
	store  CounterStore
	limit  int
	window time.Duration
	prom   *observability.Prom // optional
}

func NewRateLimiter(limit int, window time.Duration, store CounterStore, prom *observability.Prom) *RateLimiter {
	return &RateLimiter{
		store:  store,
		limit:  limit,
		window: window,
		prom:   prom,
	}
}

// Middleware enforces the limit for a derived key.
func (rl *RateLimiter) Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		count, retryAfter, err := rl.store.Incr(c.Request.Context(), key, rl.window)

		if err != nil {
			// a broken counter store must not take the API down
			slog.Default().WarnContext(c.Request.Context(), "rate limiter store failed", "err", err)
			c.Next()
			return
		}

		if count > rl.limit {
			secs := int(retryAfter.Seconds())

			if secs < 0 {
				secs = 0
			}

			c.Header("Retry-After", strconv.Itoa(secs))

			if rl.prom != nil {
				route := c.FullPath()
				if route == "" {
					route = "unmatched"
				}
				rl.prom.RateLimitedTotal.WithLabelValues(route).Inc()
			}

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "rate_limited",
					"message": RateLimitedMessage,
				},
			})

			return
		}

		c.Next()
	}
}

// KeyByIP rate limits unauthenticated and authenticated routes alike by
// client address, matching the per-IP window contract.
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}

// MemoryCounterStore is the process-local fixed-window counter. State
// does not survive restarts and is not shared between replicas.
type MemoryCounterStore struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	now     func() time.Time
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.clients[key]

	if !ok || now.After(b.windowEnd) {
		s.clients[key] = &clientBucket{
			count:     1,
			windowEnd: now.Add(window),
		}

		return 1, window, nil
	}

	b.count++

	return b.count, b.windowEnd.Sub(now), nil
}

// Sweep drops buckets whose window has ended. Run it periodically so
// one-off clients do not accumulate forever.
func (s *MemoryCounterStore) Sweep() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, b := range s.clients {
		if now.After(b.windowEnd) {
			delete(s.clients, key)
		}
	}
}

// StartJanitor sweeps expired buckets until the context is cancelled.
func (s *MemoryCounterStore) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)

	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Sweep()
			}
		}
	}()
}
