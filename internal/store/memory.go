package store

import (
	"context"
	"sync"
	"time"

	"github.com/businesspro/auth-api/internal/models"
)

// MemoryAccountStore keeps accounts in process memory, keyed by ID with
// a secondary index on the normalized email.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
	byEmail  map[string]string
	now      func() time.Time
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts: make(map[string]*models.Account),
		byEmail:  make(map[string]string),
		now:      time.Now,
	}
}

func (s *MemoryAccountStore) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := models.NormalizeEmail(account.Email)
	if _, exists := s.byEmail[email]; exists {
		return ErrDuplicateEmail
	}

	now := s.now()
	account.Email = email
	account.CreatedAt = now
	account.UpdatedAt = now

	stored := *account
	s.accounts[account.ID] = &stored
	s.byEmail[email] = account.ID
	return nil
}

func (s *MemoryAccountStore) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	return clone(s.accounts[id]), nil
}

func (s *MemoryAccountStore) FindByID(_ context.Context, id string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return clone(account), nil
}

func (s *MemoryAccountStore) UpdateProfile(_ context.Context, id string, update models.ProfileUpdate) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}

	if update.FirstName != nil {
		account.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		account.LastName = *update.LastName
	}
	if update.Company != nil {
		account.Company = *update.Company
	}
	account.UpdatedAt = s.now()

	return clone(account), nil
}

func (s *MemoryAccountStore) MarkVerified(_ context.Context, id string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}

	// Idempotent: a second call must not regress VerifiedAt.
	if !account.IsVerified {
		now := s.now()
		account.IsVerified = true
		account.VerifiedAt = &now
		account.UpdatedAt = now
	}

	return clone(account), nil
}

func (s *MemoryAccountStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrNotFound
	}

	delete(s.byEmail, models.NormalizeEmail(account.Email))
	delete(s.accounts, id)
	return nil
}

func clone(account *models.Account) *models.Account {
	copied := *account
	if account.VerifiedAt != nil {
		at := *account.VerifiedAt
		copied.VerifiedAt = &at
	}
	return &copied
}

// MemoryOTPStore keeps the single active OTP record per email in
// process memory.
type MemoryOTPStore struct {
	mu      sync.Mutex
	records map[string]*models.OTPRecord
}

func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{
		records: make(map[string]*models.OTPRecord),
	}
}

func (s *MemoryOTPStore) Put(_ context.Context, record *models.OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	stored.Email = models.NormalizeEmail(record.Email)
	s.records[stored.Email] = &stored
	return nil
}

func (s *MemoryOTPStore) Get(_ context.Context, email string) (*models.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[models.NormalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (s *MemoryOTPStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, models.NormalizeEmail(email))
	return nil
}
