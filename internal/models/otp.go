package models

import "time"

// OTPRecord is the single active verification code for an email.
// It is replaced wholesale on resend and deleted on successful
// verification, attempts exhaustion, or expiry detection.
type OTPRecord struct {
	Email      string    `json:"email"`
	Code       string    `json:"code"`
	Attempts   int       `json:"attempts"`
	LastSentAt time.Time `json:"last_sent_at"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
