package models

import (
	"strings"
	"time"
)

type Account struct {
	ID           string     `json:"id" dynamodbav:"id"`
	FirstName    string     `json:"firstName" dynamodbav:"first_name"`
	LastName     string     `json:"lastName" dynamodbav:"last_name"`
	Email        string     `json:"email" dynamodbav:"email"`
	Company      string     `json:"company" dynamodbav:"company"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	AgreeToTerms bool       `json:"agreeToTerms" dynamodbav:"agree_to_terms"`
	IsVerified   bool       `json:"isVerified" dynamodbav:"is_verified"`
	VerifiedAt   *time.Time `json:"verifiedAt,omitempty" dynamodbav:"verified_at,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" dynamodbav:"updated_at"`
}

func (a *Account) GetPK() string {
	return "ACCOUNT#" + a.ID
}

func (a *Account) GetSK() string {
	return "METADATA"
}

// ProfileUpdate carries the only fields a profile update may touch.
// Nil means "leave unchanged".
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Company   *string
}

// NormalizeEmail lowercases and trims an email so it can serve as a
// lookup key. Every store and service entry point must use it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
