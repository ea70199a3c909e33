// Package ratelimit throttles clients with one token bucket per key.
package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Config holds rate limiter configuration.
type Config struct {
	PerMinute float64       // sustained requests per minute; <= 0 disables limiting
	Burst     int           // bucket capacity
	IdleTTL   time.Duration // how long an unused bucket is kept
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PerMinute: 5,
		Burst:     3,
		IdleTTL:   30 * time.Minute,
	}
}

// Result is the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter keeps a token bucket per key in an expiring cache.
type Limiter struct {
	cfg     Config
	buckets *cache.Cache
	mu      sync.Mutex
	now     func() time.Time
}

// New creates a limiter.
func New(cfg Config) *Limiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultConfig().IdleTTL
	}
	return &Limiter{
		cfg:     cfg,
		buckets: cache.New(cfg.IdleTTL, cfg.IdleTTL*2),
		now:     time.Now,
	}
}

// Enabled reports whether requests can be refused at all.
func (l *Limiter) Enabled() bool { return l.cfg.PerMinute > 0 }

// Allow consumes a token for key.
func (l *Limiter) Allow(key string) Result {
	if !l.Enabled() {
		return Result{Allowed: true}
	}
	lim := l.bucket(key)
	now := l.now()

	res := Result{Limit: l.cfg.Burst}
	r := lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		res.RetryAfter = delay
	} else {
		res.Allowed = true
	}
	res.Remaining = max(0, int(math.Floor(lim.TokensAt(now))))
	return res
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.buckets.Get(key); ok {
		l.buckets.Set(key, v, cache.DefaultExpiration)
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(rate.Limit(l.cfg.PerMinute/60), l.cfg.Burst)
	l.buckets.Set(key, lim, cache.DefaultExpiration)
	return lim
}

// Clients is the number of tracked keys.
func (l *Limiter) Clients() int { return l.buckets.ItemCount() }

// Middleware limits requests per client IP. Refused requests get the
// rate limit headers and are passed to onLimited.
func (l *Limiter) Middleware(onLimited func(w http.ResponseWriter, r *http.Request, res Result)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := l.Allow(ClientIP(r))
			if res.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			}
			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
				onLimited(w, r, res)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of the request's remote address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
