package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_AllowsUpToMax(t *testing.T) {
	l := NewMemoryLimiter()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if !l.Allow(ctx, "signup", "a@b.com", 3, time.Hour) {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow(ctx, "signup", "a@b.com", 3, time.Hour) {
		t.Fatal("attempt over the cap should be denied")
	}
}

func TestMemoryLimiter_DeniedAttemptDoesNotExtendWindow(t *testing.T) {
	l := NewMemoryLimiter()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		l.Allow(ctx, "signup", "a@b.com", 3, time.Hour)
	}

	// Hammer the limiter while capped; none of these may count.
	now = now.Add(30 * time.Minute)
	for i := 0; i < 10; i++ {
		if l.Allow(ctx, "signup", "a@b.com", 3, time.Hour) {
			t.Fatal("capped attempt should be denied")
		}
	}

	// One second past the original window the oldest attempts fall out.
	now = now.Add(30*time.Minute + time.Second)
	if !l.Allow(ctx, "signup", "a@b.com", 3, time.Hour) {
		t.Fatal("attempt should be allowed once the window has passed")
	}
}

func TestMemoryLimiter_NamespacesAreIndependent(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		l.Allow(ctx, "signup", "a@b.com", 3, time.Hour)
	}
	if l.Allow(ctx, "signup", "a@b.com", 3, time.Hour) {
		t.Fatal("signup namespace should be capped")
	}
	if !l.Allow(ctx, "resend", "a@b.com", 3, time.Hour) {
		t.Fatal("resend namespace must not be affected by signup attempts")
	}
	if !l.Allow(ctx, "signup", "other@b.com", 3, time.Hour) {
		t.Fatal("other identifiers must not be affected")
	}
}
