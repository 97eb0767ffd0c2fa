package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	DynamoDB  DynamoDBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	OTP       OTPConfig
	RateLimit RateLimitConfig
	Email     EmailConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DynamoDBConfig selects the persistent account backend. An empty
// TableName keeps accounts in process memory.
type DynamoDBConfig struct {
	Endpoint  string
	Region    string
	TableName string
}

// RedisConfig selects the shared OTP/rate-limit backend. An empty
// Endpoint keeps both in process memory.
type RedisConfig struct {
	Endpoint string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey string
	Expiry    time.Duration
}

type OTPConfig struct {
	Expiry         time.Duration
	MaxAttempts    int
	ResendCooldown time.Duration
}

type RateLimitConfig struct {
	SignupMax    int
	SignupWindow time.Duration
	SigninMax    int
	SigninWindow time.Duration
	VerifyMax    int
	VerifyWindow time.Duration
	ResendMax    int
	ResendWindow time.Duration
}

type EmailConfig struct {
	PostmarkToken string
	FromEmail     string
	FromName      string
	SendTimeout   time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		DynamoDB: DynamoDBConfig{
			Endpoint:  getEnv("DYNAMODB_ENDPOINT", ""),
			Region:    getEnv("DYNAMODB_REGION", "us-east-1"),
			TableName: getEnv("DYNAMODB_TABLE_NAME", ""),
		},
		Redis: RedisConfig{
			Endpoint: getEnv("REDIS_ENDPOINT", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", ""),
			Expiry:    getEnvAsDuration("JWT_EXPIRY", 7*24*time.Hour),
		},
		OTP: OTPConfig{
			Expiry:         getEnvAsDuration("OTP_EXPIRY", 5*time.Minute),
			MaxAttempts:    getEnvAsInt("OTP_MAX_ATTEMPTS", 3),
			ResendCooldown: getEnvAsDuration("OTP_RESEND_COOLDOWN", time.Minute),
		},
		RateLimit: RateLimitConfig{
			SignupMax:    getEnvAsInt("RATE_LIMIT_SIGNUP_MAX", 3),
			SignupWindow: getEnvAsDuration("RATE_LIMIT_SIGNUP_WINDOW", time.Hour),
			SigninMax:    getEnvAsInt("RATE_LIMIT_SIGNIN_MAX", 5),
			SigninWindow: getEnvAsDuration("RATE_LIMIT_SIGNIN_WINDOW", 15*time.Minute),
			VerifyMax:    getEnvAsInt("RATE_LIMIT_VERIFY_MAX", 5),
			VerifyWindow: getEnvAsDuration("RATE_LIMIT_VERIFY_WINDOW", 15*time.Minute),
			ResendMax:    getEnvAsInt("RATE_LIMIT_RESEND_MAX", 3),
			ResendWindow: getEnvAsDuration("RATE_LIMIT_RESEND_WINDOW", time.Hour),
		},
		Email: EmailConfig{
			PostmarkToken: getEnv("POSTMARK_SERVER_TOKEN", ""),
			FromEmail:     getEnv("EMAIL_FROM", "no-reply@businesspro.example"),
			FromName:      getEnv("EMAIL_FROM_NAME", "BusinessPro"),
			SendTimeout:   getEnvAsDuration("EMAIL_SEND_TIMEOUT", 10*time.Second),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}

	if len(cfg.JWT.SecretKey) < 32 {
		return nil, fmt.Errorf("JWT_SECRET_KEY must be at least 32 bytes (256 bits)")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
