package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/simp-lee/clientes/internal/pkg"
)

const rateLimitMessage = "Demasiadas solicitudes. Espera un momento e inténtalo de nuevo."

// RateLimitConfig controls the per-client token bucket.
type RateLimitConfig struct {
	RPS   float64
	Burst int
	// IdleTTL is how long an unused client bucket is kept. Zero means 10 minutes.
	IdleTTL time.Duration
	// Now is used for bucket bookkeeping; nil means time.Now.
	Now func() time.Time
}

// limiterStore keeps one token bucket per client key and evicts idle buckets.
type limiterStore struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
	lastGC  time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(cfg RateLimitConfig) *limiterStore {
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &limiterStore{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(cfg.RPS),
		burst:   cfg.Burst,
		idleTTL: ttl,
		now:     now,
		lastGC:  now(),
	}
}

// allow reports whether key may proceed now. Idle buckets are evicted at most once per TTL.
func (s *limiterStore) allow(key string) bool {
	t := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Sub(s.lastGC) >= s.idleTTL {
		cutoff := t.Add(-s.idleTTL)
		for k, ent := range s.entries {
			if ent.lastSeen.Before(cutoff) {
				delete(s.entries, k)
			}
		}
		s.lastGC = t
	}

	ent, ok := s.entries[key]
	if !ok {
		ent = &limiterEntry{lim: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = ent
	}
	ent.lastSeen = t
	return ent.lim.AllowN(t, 1)
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RateLimit returns a gin middleware that limits requests per client IP.
// Rejected requests get 429 with a Retry-After hint; htmx requests also get
// an error toast instead of a swap.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	store := newLimiterStore(cfg)
	retryAfter := "1"
	if cfg.RPS > 0 && cfg.RPS < 1 {
		retryAfter = strconv.Itoa(int(1/cfg.RPS + 0.5))
	}

	return func(c *gin.Context) {
		if store.allow(c.ClientIP()) {
			c.Next()
			return
		}

		c.Header("Retry-After", retryAfter)
		if pkg.IsHTMX(c) {
			pkg.RejectHTMX(c, http.StatusTooManyRequests, rateLimitMessage)
			return
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, pkg.Response{
			Code:    http.StatusTooManyRequests,
			Message: "too many requests",
		})
	}
}
