/*
Package limiter provides per-client-IP rate limiting with token buckets.

Each IP gets its own rate.Limiter; a background loop drops limiters whose bucket has refilled,
so idle clients do not accumulate in memory.
*/
package limiter

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"connect/internal/pkg/errs"
	"connect/internal/pkg/logx"
	"connect/internal/pkg/resp"
)

// cleanupInterval is how often idle limiters are swept.
const cleanupInterval = 3 * time.Minute

// IPRateLimiter hands out one token bucket per client IP address.
type IPRateLimiter struct {
	// mu protects the limits map.
	mu sync.Mutex

	// limits maps client IP to its limiter.
	limits map[string]*rate.Limiter

	// r is the refill rate (events per second).
	r rate.Limit

	// b is the bucket size.
	b int
}

// NewIPRateLimiter creates a limiter allowing r events per second with burst b per IP.
// The sweeping goroutine stops when ctx is done.
func NewIPRateLimiter(ctx context.Context, r rate.Limit, b int) *IPRateLimiter {
	i := &IPRateLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
	}

	go i.cleanUpVisitors(ctx)

	return i
}

// GetLimiter returns the limiter for ip, creating it on first use.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.limits[ip]
	if !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.limits[ip] = limiter
	}

	return limiter
}

// Allow reports whether the client at ip may perform one more event now.
func (i *IPRateLimiter) Allow(ip string) bool {
	return i.GetLimiter(ip).Allow()
}

// sweep removes limiters whose bucket is full again and returns how many were dropped.
func (i *IPRateLimiter) sweep(now time.Time) int {
	i.mu.Lock()
	defer i.mu.Unlock()

	removed := 0
	for ip, limiter := range i.limits {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(i.limits, ip)
			removed++
		}
	}
	return removed
}

func (i *IPRateLimiter) cleanUpVisitors(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := i.sweep(now); removed > 0 {
				logx.Debug("Rate limiter cleanup removed inactive IPs", "removed", removed)
			}
		}
	}
}

// ClientIP extracts the host part of r.RemoteAddr.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	if ip == "" {
		ip = "unknown_ip"
	}
	return ip
}

// Middleware rejects requests over the limit with ErrRateLimitExceeded (HTTP 429).
func (i *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !i.Allow(ClientIP(r)) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		next.ServeHTTP(w, r)
	})
}
