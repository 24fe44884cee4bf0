package storage

import (
	"testing"
	"time"
)

func TestMemoryRateLimiter(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	limiter := NewMemoryRateLimiter(2, time.Second)
	t.Cleanup(func() { _ = limiter.Close() })

	for i := range 2 {
		result, err := limiter.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !result.Allowed {
			t.Fatalf("request %d denied, want allowed", i)
		}
	}

	result, err := limiter.Allow(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if result.Allowed {
		t.Fatal("third request allowed, want denied")
	}
	if result.RetryAfter <= 0 || result.RetryAfter > time.Second {
		t.Errorf("RetryAfter = %v, want within (0, 1s]", result.RetryAfter)
	}

	other, err := limiter.Allow(ctx, "10.0.0.2")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !other.Allowed {
		t.Error("separate key denied, want allowed")
	}
}

func TestMemoryRateLimiterEvictIdle(t *testing.T) {
	t.Parallel()

	limiter := NewMemoryRateLimiter(1, time.Second)
	t.Cleanup(func() { _ = limiter.Close() })

	if _, err := limiter.Allow(t.Context(), "10.0.0.1"); err != nil {
		t.Fatalf("Allow() error = %v", err)
	}

	limiter.evictIdle(time.Now().Add(limiter.idleAfter + time.Second))

	limiter.limiterMu.Lock()
	n := len(limiter.limiters)
	limiter.limiterMu.Unlock()
	if n != 0 {
		t.Errorf("limiters = %d after eviction, want 0", n)
	}

	if err := limiter.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
