package middleware

import (
	"net/http"
	"sync"
	"time"
)

// rateLimiter tracks request budgets per client IP
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

// clientLimiter tracks the remaining budget for a single client
type clientLimiter struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter creates rate limiting middleware allowing limit requests
// per minute per client IP.
func NewRateLimiter(limit int) func(http.Handler) http.Handler {
	limiter := &rateLimiter{
		clients: make(map[string]*clientLimiter),
	}

	// Drop idle clients so the map does not grow unbounded
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			limiter.cleanup()
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.allow(clientIP(r), limit) {
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *rateLimiter) allow(ip string, limit int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	client, exists := rl.clients[ip]
	if !exists {
		client = &clientLimiter{
			tokens:     limit,
			lastRefill: now,
		}
		rl.clients[ip] = client
	}

	if now.Sub(client.lastRefill) >= time.Minute {
		client.tokens = limit
		client.lastRefill = now
	}

	if client.tokens > 0 {
		client.tokens--
		return true
	}
	return false
}

func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, client := range rl.clients {
		if now.Sub(client.lastRefill) > 2*time.Minute {
			delete(rl.clients, ip)
		}
	}
}

// clientIP extracts the client IP, honouring proxy headers
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
