package provider

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterBurstIsImmediate(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(3, time.Minute)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("burst call %d: %v", i, err)
		}
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Fatal("calls within the burst must not block")
	}
}

func TestRateLimiterMintsTokensOverTime(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(4, time.Second)
	base := time.Now()
	limiter.tokens = 0
	limiter.last = base

	limiter.advance(base.Add(2500 * time.Millisecond))
	if limiter.tokens < 2.4 || limiter.tokens > 2.6 {
		t.Fatalf("expected ~2.5 tokens after 2.5 intervals, got %f", limiter.tokens)
	}

	limiter.advance(base.Add(time.Hour))
	if limiter.tokens != 4 {
		t.Fatalf("tokens must cap at the burst size, got %f", limiter.tokens)
	}
}

func TestRateLimiterPacesAfterBurst(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(1, 20*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Fatalf("second call must wait for a minted token, returned after %v", elapsed)
	}
}

func TestRateLimiterWaitStopsOnContext(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(1, time.Minute)
	_ = limiter.Wait(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := limiter.Wait(ctx); err == nil {
		t.Fatal("expected context deadline error")
	}
	if time.Since(start) > 200*time.Millisecond {
		t.Fatal("wait must return promptly once the context expires")
	}
}
