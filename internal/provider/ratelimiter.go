package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter paces outbound calls to providers with request quotas, such as
// CoinGecko's free tier. One limiter is shared by every adapter built on the
// same provider client, so the quota holds across categories.
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	burst    float64
	interval time.Duration // time to mint one token
	last     time.Time
}

// NewRateLimiter allows bursts of burst calls, then one call per interval.
func NewRateLimiter(burst int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:   float64(burst),
		burst:    float64(burst),
		interval: interval,
		last:     time.Now(),
	}
}

// Wait blocks until a token is available or ctx expires. The wait is computed
// from the token deficit rather than polled, so a caller deadline shorter than
// the deficit fails fast.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.advance(time.Now())
		if r.tokens >= 1 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - r.tokens) * float64(r.interval))
		r.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// advance mints fractional tokens for the time elapsed since the last call,
// capped at the burst size.
func (r *RateLimiter) advance(now time.Time) {
	elapsed := now.Sub(r.last)
	if elapsed <= 0 {
		return
	}
	r.tokens += float64(elapsed) / float64(r.interval)
	if r.tokens > r.burst {
		r.tokens = r.burst
	}
	r.last = now
}
