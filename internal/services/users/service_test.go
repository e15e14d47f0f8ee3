package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nkoval/vitrine/internal/domain/enums"
)

type fakeAccountStore struct {
	accounts map[int64]AccountRecord
	byEmail  map[string]int64
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{
		accounts: map[int64]AccountRecord{},
		byEmail:  map[string]int64{},
	}
}

func (f *fakeAccountStore) add(rec AccountRecord) {
	f.accounts[rec.ID] = rec
	f.byEmail[rec.Email] = rec.ID
}

func (f *fakeAccountStore) GetAccount(_ context.Context, userID int64) (AccountRecord, error) {
	rec, ok := f.accounts[userID]
	if !ok {
		return AccountRecord{}, ErrNotFound
	}
	return rec, nil
}

func (f *fakeAccountStore) GetAccountByEmail(_ context.Context, email string) (AccountRecord, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return AccountRecord{}, ErrNotFound
	}
	return f.accounts[id], nil
}

func (f *fakeAccountStore) SetBan(_ context.Context, userID int64, banned bool, reason string, _ int64) error {
	rec := f.accounts[userID]
	rec.Banned = banned
	rec.BanReason = reason
	f.accounts[userID] = rec
	return nil
}

func (f *fakeAccountStore) SetVIPUntil(_ context.Context, userID int64, until *time.Time) error {
	rec := f.accounts[userID]
	rec.VIPExpiresAt = until
	f.accounts[userID] = rec
	return nil
}

func (f *fakeAccountStore) CountStats(context.Context, time.Time) (Stats, error) {
	return Stats{TotalUsers: int64(len(f.accounts))}, nil
}

type fakeRevoker struct {
	revoked []int64
}

func (f *fakeRevoker) DeleteAllForUser(_ context.Context, userID int64) error {
	f.revoked = append(f.revoked, userID)
	return nil
}

func newUsersForTest() (*Service, *fakeAccountStore, *fakeRevoker) {
	store := newFakeAccountStore()
	revoker := &fakeRevoker{}
	svc := NewService(store, revoker)
	svc.now = func() time.Time { return time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC) }
	return svc, store, revoker
}

func TestLookupByIDAndEmail(t *testing.T) {
	svc, store, _ := newUsersForTest()
	store.add(AccountRecord{ID: 7, Email: "anna@example.com", Role: enums.RoleEscort})

	byID, err := svc.Lookup(context.Background(), " 7 ")
	if err != nil {
		t.Fatalf("lookup by id: %v", err)
	}
	if byID.Email != "anna@example.com" {
		t.Fatalf("email=%s", byID.Email)
	}

	byEmail, err := svc.Lookup(context.Background(), "Anna@example.com")
	if err != nil {
		t.Fatalf("lookup by email: %v", err)
	}
	if byEmail.ID != 7 {
		t.Fatalf("id=%d", byEmail.ID)
	}

	if _, err := svc.Lookup(context.Background(), "not-a-query"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestBanRevokesSessions(t *testing.T) {
	svc, store, revoker := newUsersForTest()
	store.add(AccountRecord{ID: 7, Email: "anna@example.com"})

	if err := svc.Ban(context.Background(), 7, "payment fraud", 1); err != nil {
		t.Fatalf("ban: %v", err)
	}
	if !store.accounts[7].Banned || store.accounts[7].BanReason != "payment fraud" {
		t.Fatalf("account after ban: %+v", store.accounts[7])
	}
	if len(revoker.revoked) != 1 || revoker.revoked[0] != 7 {
		t.Fatalf("sessions not revoked: %v", revoker.revoked)
	}

	if err := svc.Unban(context.Background(), 7, 1); err != nil {
		t.Fatalf("unban: %v", err)
	}
	if store.accounts[7].Banned || store.accounts[7].BanReason != "" {
		t.Fatalf("account after unban: %+v", store.accounts[7])
	}
}

func TestBanRequiresReasonAndExistingUser(t *testing.T) {
	svc, store, _ := newUsersForTest()
	store.add(AccountRecord{ID: 7})

	if err := svc.Ban(context.Background(), 7, "  ", 1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := svc.Ban(context.Background(), 99, "spam", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGrantVIPRejectsPastExpiry(t *testing.T) {
	svc, store, _ := newUsersForTest()
	store.add(AccountRecord{ID: 7})

	past := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)
	if err := svc.GrantVIP(context.Background(), 7, &past); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	future := time.Date(2026, time.September, 25, 0, 0, 0, 0, time.UTC)
	if err := svc.GrantVIP(context.Background(), 7, &future); err != nil {
		t.Fatalf("grant vip: %v", err)
	}
	if store.accounts[7].VIPExpiresAt == nil || !store.accounts[7].VIPExpiresAt.Equal(future) {
		t.Fatalf("vip expiry not stored: %+v", store.accounts[7])
	}

	// nil expiry revokes.
	if err := svc.GrantVIP(context.Background(), 7, nil); err != nil {
		t.Fatalf("revoke vip: %v", err)
	}
	if store.accounts[7].VIPExpiresAt != nil {
		t.Fatalf("vip not revoked: %+v", store.accounts[7])
	}
}
