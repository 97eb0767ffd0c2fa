package store

import (
	"context"
	"testing"
	"time"

	"github.com/businesspro/auth-api/internal/models"
)

func newAccount(id, email string) *models.Account {
	return &models.Account{
		ID:           id,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		Company:      "Analytical Engines",
		PasswordHash: "$2a$12$notarealhash",
		AgreeToTerms: true,
	}
}

func TestMemoryAccountStore_CreateAndFind(t *testing.T) {
	s := NewMemoryAccountStore()
	ctx := context.Background()

	if err := s.Create(ctx, newAccount("id-1", "Ada@Example.COM")); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	found, err := s.FindByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if found == nil || found.ID != "id-1" {
		t.Fatalf("expected account id-1, got %+v", found)
	}
	if found.Email != "ada@example.com" {
		t.Fatalf("email should be stored normalized, got %q", found.Email)
	}
	if found.CreatedAt.IsZero() || found.UpdatedAt.IsZero() {
		t.Fatal("timestamps should be set on create")
	}

	byID, err := s.FindByID(ctx, "id-1")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if byID == nil || byID.Email != "ada@example.com" {
		t.Fatalf("unexpected account: %+v", byID)
	}

	missing, err := s.FindByEmail(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil) for missing email, got (%+v, %v)", missing, err)
	}
}

func TestMemoryAccountStore_DuplicateEmail(t *testing.T) {
	s := NewMemoryAccountStore()
	ctx := context.Background()

	if err := s.Create(ctx, newAccount("id-1", "ada@example.com")); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	err := s.Create(ctx, newAccount("id-2", "ADA@example.com"))
	if err != ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestMemoryAccountStore_MarkVerifiedIdempotent(t *testing.T) {
	s := NewMemoryAccountStore()
	ctx := context.Background()

	if err := s.Create(ctx, newAccount("id-1", "ada@example.com")); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	first, err := s.MarkVerified(ctx, "id-1")
	if err != nil {
		t.Fatalf("MarkVerified error: %v", err)
	}
	if !first.IsVerified || first.VerifiedAt == nil {
		t.Fatalf("account should be verified with a timestamp, got %+v", first)
	}

	// The second call must not regress the original timestamp.
	s.now = func() time.Time { return first.VerifiedAt.Add(time.Hour) }
	second, err := s.MarkVerified(ctx, "id-1")
	if err != nil {
		t.Fatalf("second MarkVerified error: %v", err)
	}
	if !second.VerifiedAt.Equal(*first.VerifiedAt) {
		t.Fatalf("VerifiedAt regressed: %v -> %v", first.VerifiedAt, second.VerifiedAt)
	}

	if _, err := s.MarkVerified(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryAccountStore_UpdateProfileAllowList(t *testing.T) {
	s := NewMemoryAccountStore()
	ctx := context.Background()

	if err := s.Create(ctx, newAccount("id-1", "ada@example.com")); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	before, _ := s.FindByID(ctx, "id-1")

	company := "Babbage & Co"
	s.now = func() time.Time { return before.UpdatedAt.Add(time.Minute) }
	updated, err := s.UpdateProfile(ctx, "id-1", models.ProfileUpdate{Company: &company})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if updated.Company != company {
		t.Fatalf("company not updated: %q", updated.Company)
	}
	if updated.FirstName != "Ada" || updated.Email != "ada@example.com" {
		t.Fatal("untouched fields must be preserved")
	}
	if !updated.UpdatedAt.After(before.UpdatedAt) {
		t.Fatal("UpdatedAt must be refreshed")
	}

	if _, err := s.UpdateProfile(ctx, "missing", models.ProfileUpdate{}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryAccountStore_DeleteFreesEmail(t *testing.T) {
	s := NewMemoryAccountStore()
	ctx := context.Background()

	if err := s.Create(ctx, newAccount("id-1", "ada@example.com")); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := s.Delete(ctx, "id-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	found, _ := s.FindByEmail(ctx, "ada@example.com")
	if found != nil {
		t.Fatalf("account should be gone, got %+v", found)
	}
	if err := s.Create(ctx, newAccount("id-2", "ada@example.com")); err != nil {
		t.Fatalf("email should be reusable after delete: %v", err)
	}
	if err := s.Delete(ctx, "id-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryOTPStore_SingleRecordPerEmail(t *testing.T) {
	s := NewMemoryOTPStore()
	ctx := context.Background()
	now := time.Now()

	first := &models.OTPRecord{Email: "Ada@Example.com", Code: "111111", LastSentAt: now, CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute)}
	if err := s.Put(ctx, first); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	replacement := &models.OTPRecord{Email: "ada@example.com", Code: "222222", Attempts: 0, LastSentAt: now, CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute)}
	if err := s.Put(ctx, replacement); err != nil {
		t.Fatalf("Put replacement error: %v", err)
	}

	got, err := s.Get(ctx, "ADA@example.com")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got == nil || got.Code != "222222" {
		t.Fatalf("expected the replacement record, got %+v", got)
	}

	if err := s.Delete(ctx, "ada@example.com"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	got, _ = s.Get(ctx, "ada@example.com")
	if got != nil {
		t.Fatalf("record should be gone, got %+v", got)
	}
}
