package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-client token-bucket rate limiter.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// Burst is the maximum number of requests allowed in a burst.
	Burst int
	// CostDivisorBytes scales a request's token cost to its body size: a
	// request of N bytes costs 1+N/CostDivisorBytes tokens instead of a
	// flat 1, so a large /v1/search payload — which drives proportionally
	// more window evaluations in the search engine — draws down a
	// client's budget faster than a cheap request. Zero disables
	// size-based weighting (every request costs 1 token).
	CostDivisorBytes int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter returns a per-client-IP token-bucket rate limiting
// middleware. Requests that exceed the limit receive 429 Too Many
// Requests with a Retry-After header; requests that are let through
// carry the standard X-RateLimit-* headers.
func RateLimiter(cfg RateLimitConfig) func(http.Handler) http.Handler {
	var clients sync.Map

	go func() {
		for {
			time.Sleep(5 * time.Minute)
			clients.Range(func(key, value any) bool {
				cl := value.(*clientLimiter)
				if time.Since(cl.lastSeen) > 10*time.Minute {
					clients.Delete(key)
				}
				return true
			})
		}
	}()

	getLimiter := func(ip string) *rate.Limiter {
		if v, ok := clients.Load(ip); ok {
			cl := v.(*clientLimiter)
			cl.lastSeen = time.Now()
			return cl.limiter
		}
		limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
		clients.Store(ip, &clientLimiter{limiter: limiter, lastSeen: time.Now()})
		return limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			limiter := getLimiter(ip)
			cost := requestCost(r, cfg)

			reservation := limiter.ReserveN(time.Now(), cost)
			if !reservation.OK() {
				writeTooManyRequests(w, 0)
				return
			}

			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()
				writeTooManyRequests(w, int(delay.Seconds())+1)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}

// requestCost computes a request's token cost under cfg's size weighting,
// clamped to [1, cfg.Burst]: an oversized request costs at most a full
// bucket, so ReserveN can still grant it once the bucket has refilled
// instead of refusing it because its cost exceeds the burst size.
func requestCost(r *http.Request, cfg RateLimitConfig) int {
	if cfg.CostDivisorBytes <= 0 || r.ContentLength <= 0 {
		return 1
	}
	cost := 1 + int(r.ContentLength)/cfg.CostDivisorBytes
	if cost > cfg.Burst {
		cost = cfg.Burst
	}
	return cost
}

// clientIP extracts the client address, ignoring X-Forwarded-For since
// it is attacker-controlled and would let a client bypass its own limit.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeTooManyRequests(w http.ResponseWriter, retryAfterSecs int) {
	if retryAfterSecs > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSecs))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    429,
		"message": "rate limit exceeded",
	})
}
