package service

import (
	"errors"
	"fmt"
)

// Taxonomy errors surfaced to the HTTP boundary. Messages are written
// for end users; anything not in this list is treated as an internal
// error and never shown to the caller.
var (
	ErrConflict        = errors.New("user with this email already exists")
	ErrRateLimited     = errors.New("too many attempts, please try again later")
	ErrNotFound        = errors.New("user not found")
	ErrUnauthorized    = errors.New("invalid email or password")
	ErrOTPNotFound     = errors.New("no OTP found for this email, please request a new one")
	ErrOTPExpired      = errors.New("OTP has expired, please request a new one")
	ErrMaxAttempts     = errors.New("maximum OTP attempts exceeded, please request a new OTP")
	ErrAlreadyVerified = errors.New("user is already verified")
	ErrEmailDelivery   = errors.New("failed to send verification email, please try again")
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token expired")
)

// InvalidCodeError is returned on a wrong OTP guess and carries how
// many guesses remain before the record is destroyed.
type InvalidCodeError struct {
	RemainingAttempts int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid OTP, %d attempts remaining", e.RemainingAttempts)
}

// CooldownError is returned when a resend is requested before the
// cooldown between sends has elapsed.
type CooldownError struct {
	RemainingSeconds int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %d seconds before requesting a new OTP", e.RemainingSeconds)
}
