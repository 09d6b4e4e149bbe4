// Package ratelimit limits outbound requests per remote host.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter keeps one token bucket per host, so a slow cover CDN never
// eats into the budget of the search API.
type HostLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing rps requests per second per host
// with the given burst.
func NewHostLimiter(rps float64, burst int) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// Wait blocks until a request to rawURL's host is allowed or ctx is done.
func (h *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	return h.forHost(u.Host).Wait(ctx)
}

// Hosts returns how many hosts have a bucket.
func (h *HostLimiter) Hosts() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.limiters)
}

func (h *HostLimiter) forHost(host string) *rate.Limiter {
	h.mu.RLock()
	limiter, ok := h.limiters[host]
	h.mu.RUnlock()
	if ok {
		return limiter
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if limiter, ok = h.limiters[host]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(h.limit, h.burst)
	h.limiters[host] = limiter
	return limiter
}
