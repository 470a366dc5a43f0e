package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	if l := NewLimiter(10, 5); l.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", l.defaultBurst)
	}
	if l := NewLimiter(10, -1); l.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://en.wikipedia.org/w/api.php"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "https://en.wikipedia.org/robots.txt"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "://bad"); err == nil {
		t.Error("expected error for unparsable URL")
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 1)

	start := time.Now()
	if err := limiter.WaitWithDelay(context.Background(), "https://en.wikipedia.org", 50*time.Millisecond); err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}
	if d := time.Since(start); d < 50*time.Millisecond {
		t.Errorf("expected delay >= 50ms, got %v", d)
	}
}

func TestLimiter_WaitWithDelay_Cancelled(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.WaitWithDelay(ctx, "https://en.wikipedia.org", time.Second); err == nil {
		t.Error("expected context error")
	}
}

func TestLimiter_PerHost(t *testing.T) {
	limiter := NewLimiter(1, 1)
	wiki := "https://en.wikipedia.org/w/api.php"

	if !limiter.Allow(wiki) {
		t.Fatal("expected first request to be allowed")
	}
	if limiter.Allow(wiki) {
		t.Error("expected second request to exhaust the bucket")
	}
	if !limiter.Allow("https://de.wikipedia.org/w/api.php") {
		t.Error("expected a different host to have its own bucket")
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(1000, 10)
	limiter.SetHostRate("slow.example", 1, 1)

	if !limiter.Allow("http://slow.example/a") {
		t.Fatal("expected first request to be allowed")
	}
	if limiter.Allow("http://slow.example/b") {
		t.Error("expected overridden host to be throttled")
	}
}
