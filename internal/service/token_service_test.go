package service

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/businesspro/auth-api/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTokenService(t *testing.T, expiry time.Duration) *TokenService {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ts, err := NewTokenService(&config.JWTConfig{SecretKey: testSecret, Expiry: expiry}, logger)
	if err != nil {
		t.Fatalf("NewTokenService error: %v", err)
	}
	return ts
}

func TestTokenService_RoundTrip(t *testing.T) {
	ts := newTokenService(t, 7*24*time.Hour)

	token, err := ts.Issue("account-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	accountID, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if accountID != "account-123" {
		t.Fatalf("account ID mismatch: got %q", accountID)
	}
}

func TestTokenService_Expired(t *testing.T) {
	ts := newTokenService(t, time.Minute)

	token, err := ts.Issue("account-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	ts.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := ts.Verify(token); err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	ts := newTokenService(t, time.Hour)
	token, err := ts.Issue("account-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	other := newTokenService(t, time.Hour)
	other.secretKey = []byte("ffffffffffffffffffffffffffffffff")
	if _, err := other.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_Malformed(t *testing.T) {
	ts := newTokenService(t, time.Hour)
	if _, err := ts.Verify("not.a.jwt"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewTokenService_RejectsShortSecret(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	if _, err := NewTokenService(&config.JWTConfig{SecretKey: "short", Expiry: time.Hour}, logger); err == nil {
		t.Fatal("expected an error for a short secret")
	}
}
