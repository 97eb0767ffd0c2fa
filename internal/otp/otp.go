// Package otp generates and validates the short-lived numeric codes
// used for email verification.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// CodeLength is the number of digits in a verification code.
	CodeLength = 6

	// DefaultExpiry is how long a code stays valid after issuance.
	DefaultExpiry = 5 * time.Minute

	// DefaultMaxAttempts is the number of failed guesses allowed
	// against a single code before it is destroyed.
	DefaultMaxAttempts = 3
)

var codeSpan = big.NewInt(900000)

// Generate returns a 6-digit code uniformly distributed over
// [100000, 999999], drawn from crypto/rand.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// ExpiryFrom returns the expiry timestamp for a code issued at now.
func ExpiryFrom(now time.Time, ttl time.Duration) time.Time {
	return now.Add(ttl)
}

// IsExpired reports whether a code with the given expiry is past it.
func IsExpired(expiresAt, now time.Time) bool {
	return now.After(expiresAt)
}

// RemainingSeconds returns the whole seconds until expiry, never negative.
func RemainingSeconds(expiresAt, now time.Time) int {
	remaining := int(expiresAt.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanAttempt reports whether another guess is permitted.
func CanAttempt(attempts, maxAttempts int) bool {
	return attempts < maxAttempts
}
