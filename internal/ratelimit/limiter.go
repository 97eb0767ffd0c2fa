// Package ratelimit enforces sliding-window attempt caps per
// action+identifier pair.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter gates an attempt for an (action, identifier) pair against a
// sliding-window cap. Allow is a pure boolean gate: the attempt that
// trips the limit is itself not recorded, so the window count never
// exceeds maxAttempts attempts that actually proceeded.
type Limiter interface {
	Allow(ctx context.Context, action, identifier string, maxAttempts int, window time.Duration) bool
}

// limitKey is a structured composite key. Keeping action and identifier
// as separate fields avoids collisions between namespaces that plain
// string concatenation would allow.
type limitKey struct {
	action     string
	identifier string
}

// MemoryLimiter is an in-process sliding-window limiter. Entries are
// pruned lazily on each check; there is no background eviction.
type MemoryLimiter struct {
	mu       sync.Mutex
	attempts map[limitKey][]time.Time
	now      func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		attempts: make(map[limitKey][]time.Time),
		now:      time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, action, identifier string, maxAttempts int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-window)
	key := limitKey{action: action, identifier: identifier}

	recent := l.attempts[key][:0]
	for _, at := range l.attempts[key] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}

	if len(recent) >= maxAttempts {
		l.attempts[key] = recent
		return false
	}

	l.attempts[key] = append(recent, now)
	return true
}
