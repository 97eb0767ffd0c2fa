package store

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/businesspro/auth-api/internal/models"
)

func newRedisOTPStore(t *testing.T) (*RedisOTPStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewRedisOTPStore(client, logger), mr
}

func TestRedisOTPStore_RoundTrip(t *testing.T) {
	s, _ := newRedisOTPStore(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond)

	record := &models.OTPRecord{
		Email:      "Ada@Example.com",
		Code:       "123456",
		Attempts:   1,
		LastSentAt: now,
		CreatedAt:  now,
		ExpiresAt:  now.Add(5 * time.Minute),
	}
	if err := s.Put(ctx, record); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, err := s.Get(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got == nil {
		t.Fatal("expected a record")
	}
	if got.Code != "123456" || got.Attempts != 1 || got.Email != "ada@example.com" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if !got.ExpiresAt.Equal(record.ExpiresAt) {
		t.Fatalf("ExpiresAt mismatch: %v vs %v", got.ExpiresAt, record.ExpiresAt)
	}
}

func TestRedisOTPStore_MissingIsNilNil(t *testing.T) {
	s, _ := newRedisOTPStore(t)

	got, err := s.Get(context.Background(), "nobody@example.com")
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil), got (%+v, %v)", got, err)
	}
}

func TestRedisOTPStore_TTLEvictsRecord(t *testing.T) {
	s, mr := newRedisOTPStore(t)
	ctx := context.Background()
	now := time.Now()

	record := &models.OTPRecord{
		Email:      "ada@example.com",
		Code:       "123456",
		LastSentAt: now,
		CreatedAt:  now,
		ExpiresAt:  now.Add(5 * time.Minute),
	}
	if err := s.Put(ctx, record); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	mr.FastForward(6 * time.Minute)

	got, err := s.Get(ctx, "ada@example.com")
	if err != nil || got != nil {
		t.Fatalf("expected record evicted by TTL, got (%+v, %v)", got, err)
	}
}

func TestRedisOTPStore_Delete(t *testing.T) {
	s, _ := newRedisOTPStore(t)
	ctx := context.Background()
	now := time.Now()

	record := &models.OTPRecord{
		Email:      "ada@example.com",
		Code:       "123456",
		LastSentAt: now,
		CreatedAt:  now,
		ExpiresAt:  now.Add(5 * time.Minute),
	}
	if err := s.Put(ctx, record); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := s.Delete(ctx, "ada@example.com"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	got, _ := s.Get(ctx, "ada@example.com")
	if got != nil {
		t.Fatalf("record should be gone, got %+v", got)
	}
}
