package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/mediashare/go-media-backend/internal/auth"
)

// bucketTTL is how long an idle per-client bucket survives before the
// opportunistic sweep may drop it.
const bucketTTL = 10 * time.Minute

// sweepEvery bounds how many lookups happen between sweeps of idle buckets.
const sweepEvery = 5000

// keyFunc maps a request to the identity that owns its token bucket.
type keyFunc func(*gin.Context) string

// KeyByUserOrIP keys buckets by the account behind a valid bearer token and
// by client IP otherwise. The limiter is installed ahead of the auth gate, so
// when RequireAuth has not stored an identity yet the key function verifies
// the Authorization header itself; an absent or bad token falls back to IP.
// The prefixes keep the two namespaces from colliding.
func KeyByUserOrIP(tokens *auth.TokenManager) keyFunc {
	return func(c *gin.Context) string {
		if id, ok := IdentityFrom(c); ok && id.UserID > 0 {
			return "user:" + strconv.FormatInt(id.UserID, 10)
		}
		scheme, value, found := strings.Cut(c.GetHeader("Authorization"), " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			if id, err := tokens.Verify(strings.TrimSpace(value)); err == nil && id.UserID > 0 {
				return "user:" + strconv.FormatInt(id.UserID, 10)
			}
		}
		return "ip:" + c.ClientIP()
	}
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is an in-process token-bucket limiter with one bucket per key.
// Buckets appear on first use and idle ones are swept during lookups, so the
// map stays bounded without a background goroutine. Safe for concurrent use.
//
// Limits are process-local; a horizontally scaled deployment needs a shared
// limiter in front of it for a global cap.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn keyFunc

	mu      sync.Mutex
	buckets map[string]*bucket
	lookups int
}

// NewRateLimiter returns a limiter replenishing rps tokens per second per
// key, with the given burst capacity. A burst below 1 is raised to 1 so a
// configured limiter always admits at least single requests.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		buckets: make(map[string]*bucket),
	}
}

// bucketFor fetches or creates the bucket for key. Every sweepEvery lookups
// it first evicts buckets idle longer than bucketTTL; the sweep runs before
// the fetch so a stale bucket gets dropped even when it is the one asked for.
func (rl *RateLimiter) bucketFor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= sweepEvery {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= bucketTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lookups = 0
	}

	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = now
		return b.lim
	}
	b := &bucket{lim: rate.NewLimiter(rl.rps, rl.burst), lastSeen: now}
	rl.buckets[key] = b
	return b.lim
}

// Handler enforces the limit, answering 429 with the standard error envelope
// and a Retry-After hint when a key is out of tokens.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.bucketFor(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get("X-Request-ID"),
			"code":       "too_many_requests",
			"error": gin.H{
				"message": "rate limit exceeded",
				"status":  http.StatusTooManyRequests,
			},
		})
	}
}
