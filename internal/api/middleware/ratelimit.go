package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter is a per-client token bucket.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*tokenBucket
	rate    int
	period  time.Duration
}

type tokenBucket struct {
	tokens     float64
	lastUpdate time.Time
	rate       float64
	capacity   float64
}

func NewRateLimiter(rate int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*tokenBucket),
		rate:    rate,
		period:  period,
	}
	go rl.cleanupRoutine()
	return rl
}

// Allow consumes one token for the client, refilling by elapsed time.
func (rl *RateLimiter) Allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, exists := rl.clients[clientID]
	if !exists {
		bucket = &tokenBucket{
			tokens:     float64(rl.rate),
			lastUpdate: time.Now(),
			rate:       float64(rl.rate) / rl.period.Seconds(),
			capacity:   float64(rl.rate),
		}
		rl.clients[clientID] = bucket
	}

	now := time.Now()
	bucket.tokens += now.Sub(bucket.lastUpdate).Seconds() * bucket.rate
	if bucket.tokens > bucket.capacity {
		bucket.tokens = bucket.capacity
	}
	bucket.lastUpdate = now

	if bucket.tokens < 1 {
		return false
	}
	bucket.tokens--
	return true
}

// cleanupRoutine drops buckets idle long enough to be full again.
func (rl *RateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-rl.period * 2)
		for id, bucket := range rl.clients {
			if bucket.lastUpdate.Before(cutoff) {
				delete(rl.clients, id)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit rejects clients exceeding rate requests per period with 429.
func RateLimit(rate int, period time.Duration) func(next http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, period)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !limiter.Allow(host) {
				RespondError(w, http.StatusTooManyRequests, CodeRateLimit, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
