// Package store holds the persistence interfaces for accounts and OTP
// records, with an in-memory implementation as the default backend and
// Redis/DynamoDB implementations for deployments that need durability.
package store

import (
	"context"
	"errors"

	"github.com/businesspro/auth-api/internal/models"
)

var (
	ErrDuplicateEmail = errors.New("account with this email already exists")
	ErrNotFound       = errors.New("account not found")
)

// AccountStore persists accounts. Find methods return (nil, nil) when
// no account matches; mutation methods return ErrNotFound.
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.Account, error)
	MarkVerified(ctx context.Context, id string) (*models.Account, error)
	Delete(ctx context.Context, id string) error
}

// OTPStore keeps at most one verification record per email. Put
// replaces any existing record wholesale.
type OTPStore interface {
	Put(ctx context.Context, record *models.OTPRecord) error
	Get(ctx context.Context, email string) (*models.OTPRecord, error)
	Delete(ctx context.Context, email string) error
}
