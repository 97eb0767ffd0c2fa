package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/businesspro/auth-api/internal/models"
)

// RedisOTPStore keeps OTP records in Redis with a TTL matching the
// code's expiry, so stale records evict themselves. Expiry is still
// checked by the service at read time; the TTL is memory hygiene, not
// the source of truth.
type RedisOTPStore struct {
	client redis.UniversalClient
	logger *logrus.Logger
}

func NewRedisOTPStore(client redis.UniversalClient, logger *logrus.Logger) *RedisOTPStore {
	return &RedisOTPStore{
		client: client,
		logger: logger,
	}
}

func (s *RedisOTPStore) key(email string) string {
	return fmt.Sprintf("otp:%s", models.NormalizeEmail(email))
}

func (s *RedisOTPStore) Put(ctx context.Context, record *models.OTPRecord) error {
	stored := *record
	stored.Email = models.NormalizeEmail(record.Email)

	dataJSON, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal OTP record: %w", err)
	}

	ttl := time.Until(stored.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	if err := s.client.Set(ctx, s.key(stored.Email), dataJSON, ttl).Err(); err != nil {
		s.logger.WithError(err).Error("Failed to store OTP record in Redis")
		return fmt.Errorf("failed to store OTP record: %w", err)
	}
	return nil
}

func (s *RedisOTPStore) Get(ctx context.Context, email string) (*models.OTPRecord, error) {
	dataJSON, err := s.client.Get(ctx, s.key(email)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		s.logger.WithError(err).Error("Failed to get OTP record from Redis")
		return nil, fmt.Errorf("failed to get OTP record: %w", err)
	}

	var record models.OTPRecord
	if err := json.Unmarshal([]byte(dataJSON), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal OTP record: %w", err)
	}
	return &record, nil
}

func (s *RedisOTPStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, s.key(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete OTP record: %w", err)
	}
	return nil
}
