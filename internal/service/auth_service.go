package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/businesspro/auth-api/internal/config"
	"github.com/businesspro/auth-api/internal/email"
	"github.com/businesspro/auth-api/internal/models"
	"github.com/businesspro/auth-api/internal/otp"
	"github.com/businesspro/auth-api/internal/ratelimit"
	"github.com/businesspro/auth-api/internal/store"
)

// Rate limiter namespaces. Each action keeps its own window so limits
// don't cross-contaminate.
const (
	actionSignup = "signup"
	actionSignin = "signin"
	actionVerify = "verify"
	actionResend = "resend"
)

const bcryptCost = 12

// AuthService is the verification state machine: it drives accounts
// through Unregistered -> PendingVerification -> Verified, consuming
// the rate limiter, OTP helpers, stores and email sender. Mutations
// for the same email are serialized by a per-email lock.
type AuthService struct {
	accounts    store.AccountStore
	otps        store.OTPStore
	limiter     ratelimit.Limiter
	sender      email.Sender
	tokens      *TokenService
	otpCfg      config.OTPConfig
	limits      config.RateLimitConfig
	sendTimeout time.Duration
	logger      *logrus.Logger
	locks       *emailLocks
	now         func() time.Time
}

func NewAuthService(
	accounts store.AccountStore,
	otps store.OTPStore,
	limiter ratelimit.Limiter,
	sender email.Sender,
	tokens *TokenService,
	otpCfg config.OTPConfig,
	limits config.RateLimitConfig,
	sendTimeout time.Duration,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		accounts:    accounts,
		otps:        otps,
		limiter:     limiter,
		sender:      sender,
		tokens:      tokens,
		otpCfg:      otpCfg,
		limits:      limits,
		sendTimeout: sendTimeout,
		logger:      logger,
		locks:       newEmailLocks(),
		now:         time.Now,
	}
}

// Tokens exposes the session issuer for the auth middleware.
func (s *AuthService) Tokens() *TokenService {
	return s.tokens
}

type SignupParams struct {
	FirstName    string
	LastName     string
	Email        string
	Company      string
	Password     string
	AgreeToTerms bool
}

// OTPIssued is the result of an operation that (re)issued a code.
type OTPIssued struct {
	Email     string
	OTPSent   bool
	ExpiresIn int
}

// Signup registers an unverified account and dispatches its first
// verification code. Account and OTP record are created together; if
// the email dispatch fails, both are rolled back so no unverifiable
// account is left behind.
func (s *AuthService) Signup(ctx context.Context, params SignupParams) (*OTPIssued, error) {
	emailKey := models.NormalizeEmail(params.Email)
	unlock := s.locks.lock(emailKey)
	defer unlock()

	existing, err := s.accounts.FindByEmail(ctx, emailKey)
	if err != nil {
		return nil, fmt.Errorf("signup lookup: %w", err)
	}
	if existing != nil {
		return nil, ErrConflict
	}

	if !s.limiter.Allow(ctx, actionSignup, emailKey, s.limits.SignupMax, s.limits.SignupWindow) {
		return nil, ErrRateLimited
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	code, err := otp.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate OTP: %w", err)
	}

	now := s.now()
	account := &models.Account{
		ID:           uuid.New().String(),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        emailKey,
		Company:      params.Company,
		PasswordHash: string(hash),
		AgreeToTerms: params.AgreeToTerms,
		IsVerified:   false,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if err == store.ErrDuplicateEmail {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	record := &models.OTPRecord{
		Email:      emailKey,
		Code:       code,
		Attempts:   0,
		LastSentAt: now,
		CreatedAt:  now,
		ExpiresAt:  otp.ExpiryFrom(now, s.otpCfg.Expiry),
	}
	if err := s.otps.Put(ctx, record); err != nil {
		s.rollbackSignup(ctx, account.ID, emailKey)
		return nil, fmt.Errorf("store OTP: %w", err)
	}

	if err := s.dispatchOTP(ctx, emailKey, params.FirstName, code); err != nil {
		s.logger.WithError(err).WithField("email", emailKey).Error("Verification email dispatch failed, rolling back signup")
		s.rollbackSignup(ctx, account.ID, emailKey)
		return nil, ErrEmailDelivery
	}

	return &OTPIssued{
		Email:     emailKey,
		OTPSent:   true,
		ExpiresIn: int(s.otpCfg.Expiry.Seconds()),
	}, nil
}

// VerifyOTP consumes a submitted code. On success the account becomes
// verified, the OTP record is destroyed and a session token is issued.
func (s *AuthService) VerifyOTP(ctx context.Context, emailAddr, submitted string) (*models.Account, string, error) {
	emailKey := models.NormalizeEmail(emailAddr)
	unlock := s.locks.lock(emailKey)
	defer unlock()

	if !s.limiter.Allow(ctx, actionVerify, emailKey, s.limits.VerifyMax, s.limits.VerifyWindow) {
		return nil, "", ErrRateLimited
	}

	record, err := s.otps.Get(ctx, emailKey)
	if err != nil {
		return nil, "", fmt.Errorf("get OTP: %w", err)
	}
	if record == nil {
		return nil, "", ErrOTPNotFound
	}

	if !otp.CanAttempt(record.Attempts, s.otpCfg.MaxAttempts) {
		s.deleteOTP(ctx, emailKey)
		return nil, "", ErrMaxAttempts
	}

	if otp.IsExpired(record.ExpiresAt, s.now()) {
		s.deleteOTP(ctx, emailKey)
		return nil, "", ErrOTPExpired
	}

	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(submitted)) != 1 {
		record.Attempts++
		if err := s.otps.Put(ctx, record); err != nil {
			return nil, "", fmt.Errorf("update OTP attempts: %w", err)
		}
		return nil, "", &InvalidCodeError{RemainingAttempts: s.otpCfg.MaxAttempts - record.Attempts}
	}

	account, err := s.accounts.FindByEmail(ctx, emailKey)
	if err != nil {
		return nil, "", fmt.Errorf("verify lookup: %w", err)
	}
	if account == nil {
		return nil, "", ErrNotFound
	}

	account, err = s.accounts.MarkVerified(ctx, account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("mark verified: %w", err)
	}

	s.deleteOTP(ctx, emailKey)

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	// Welcome email is best effort and must never affect the response.
	go s.sendWelcome(emailKey, account.FirstName)

	return account, token, nil
}

// ResendOTP replaces the active code for an unverified account,
// subject to the per-send cooldown and the resend rate limit. The
// replacement resets the attempt counter.
func (s *AuthService) ResendOTP(ctx context.Context, emailAddr string) (*OTPIssued, error) {
	emailKey := models.NormalizeEmail(emailAddr)
	unlock := s.locks.lock(emailKey)
	defer unlock()

	if !s.limiter.Allow(ctx, actionResend, emailKey, s.limits.ResendMax, s.limits.ResendWindow) {
		return nil, ErrRateLimited
	}

	account, err := s.accounts.FindByEmail(ctx, emailKey)
	if err != nil {
		return nil, fmt.Errorf("resend lookup: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}
	if account.IsVerified {
		return nil, ErrAlreadyVerified
	}

	now := s.now()
	existing, err := s.otps.Get(ctx, emailKey)
	if err != nil {
		return nil, fmt.Errorf("get OTP: %w", err)
	}
	if existing != nil {
		elapsed := now.Sub(existing.LastSentAt)
		if elapsed < s.otpCfg.ResendCooldown {
			remaining := s.otpCfg.ResendCooldown - elapsed
			return nil, &CooldownError{
				RemainingSeconds: int((remaining + time.Second - 1) / time.Second),
			}
		}
	}

	code, err := otp.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate OTP: %w", err)
	}

	record := &models.OTPRecord{
		Email:      emailKey,
		Code:       code,
		Attempts:   0,
		LastSentAt: now,
		CreatedAt:  now,
		ExpiresAt:  otp.ExpiryFrom(now, s.otpCfg.Expiry),
	}
	if err := s.otps.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("store OTP: %w", err)
	}

	if err := s.dispatchOTP(ctx, emailKey, account.FirstName, code); err != nil {
		s.logger.WithError(err).WithField("email", emailKey).Error("Verification email dispatch failed, discarding reissued OTP")
		s.deleteOTP(ctx, emailKey)
		return nil, ErrEmailDelivery
	}

	return &OTPIssued{
		Email:     emailKey,
		OTPSent:   true,
		ExpiresIn: int(s.otpCfg.Expiry.Seconds()),
	}, nil
}

// Signin authenticates a verified account. Absent account, unverified
// account and wrong password all collapse into the same error so the
// endpoint cannot be used to enumerate emails.
func (s *AuthService) Signin(ctx context.Context, emailAddr, password string) (*models.Account, string, error) {
	emailKey := models.NormalizeEmail(emailAddr)

	if !s.limiter.Allow(ctx, actionSignin, emailKey, s.limits.SigninMax, s.limits.SigninWindow) {
		return nil, "", ErrRateLimited
	}

	account, err := s.accounts.FindByEmail(ctx, emailKey)
	if err != nil {
		return nil, "", fmt.Errorf("signin lookup: %w", err)
	}
	if account == nil || !account.IsVerified {
		return nil, "", ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrUnauthorized
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return account, token, nil
}

// GetAccount returns the account for an authenticated ID.
func (s *AuthService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}
	return account, nil
}

// UpdateProfile applies the allow-listed profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.Account, error) {
	account, err := s.accounts.UpdateProfile(ctx, id, update)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return account, nil
}

func (s *AuthService) dispatchOTP(ctx context.Context, to, firstName, code string) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	return s.sender.SendOTP(sendCtx, to, firstName, code)
}

func (s *AuthService) sendWelcome(to, firstName string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
	defer cancel()
	if err := s.sender.SendWelcome(ctx, to, firstName); err != nil {
		s.logger.WithError(err).WithField("email", to).Warn("Failed to send welcome email")
	}
}

func (s *AuthService) rollbackSignup(ctx context.Context, accountID, emailKey string) {
	if err := s.accounts.Delete(ctx, accountID); err != nil && err != store.ErrNotFound {
		s.logger.WithError(err).WithField("account_id", accountID).Error("Signup rollback: failed to delete account")
	}
	s.deleteOTP(ctx, emailKey)
}

func (s *AuthService) deleteOTP(ctx context.Context, emailKey string) {
	if err := s.otps.Delete(ctx, emailKey); err != nil {
		s.logger.WithError(err).WithField("email", emailKey).Error("Failed to delete OTP record")
	}
}
