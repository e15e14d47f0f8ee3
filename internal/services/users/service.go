package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nkoval/vitrine/internal/domain/enums"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("user not found")
)

// AccountRecord is the admin-facing account row.
type AccountRecord struct {
	ID           int64
	Email        string
	Role         enums.AccountRole
	Banned       bool
	BanReason    string
	VIPExpiresAt *time.Time
	CreatedAt    time.Time
}

// Stats is the admin dashboard snapshot.
type Stats struct {
	TotalUsers      int64
	TotalEscorts    int64
	ActiveVIPs      int64
	ActiveListings  int64
	PendingListings int64
	BannedUsers     int64
}

type Store interface {
	GetAccount(ctx context.Context, userID int64) (AccountRecord, error)
	GetAccountByEmail(ctx context.Context, email string) (AccountRecord, error)
	SetBan(ctx context.Context, userID int64, banned bool, reason string, updatedBy int64) error
	SetVIPUntil(ctx context.Context, userID int64, until *time.Time) error
	CountStats(ctx context.Context, now time.Time) (Stats, error)
}

// SessionRevoker drops every live session of a user. Bans take effect
// immediately instead of at token expiry.
type SessionRevoker interface {
	DeleteAllForUser(ctx context.Context, userID int64) error
}

type Service struct {
	store    Store
	sessions SessionRevoker
	now      func() time.Time
}

func NewService(store Store, sessions SessionRevoker) *Service {
	return &Service{
		store:    store,
		sessions: sessions,
		now:      time.Now,
	}
}

// Lookup finds an account by numeric id or email.
func (s *Service) Lookup(ctx context.Context, query string) (AccountRecord, error) {
	if s.store == nil {
		return AccountRecord{}, fmt.Errorf("users store is nil")
	}

	cleanQuery := strings.TrimSpace(query)
	if cleanQuery == "" {
		return AccountRecord{}, ErrValidation
	}

	if numeric, err := strconv.ParseInt(cleanQuery, 10, 64); err == nil {
		return s.store.GetAccount(ctx, numeric)
	}

	if strings.Contains(cleanQuery, "@") {
		return s.store.GetAccountByEmail(ctx, strings.ToLower(cleanQuery))
	}

	return AccountRecord{}, ErrValidation
}

func (s *Service) Ban(ctx context.Context, userID int64, reason string, adminID int64) error {
	if userID <= 0 {
		return ErrValidation
	}
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: ban reason is required", ErrValidation)
	}
	if s.store == nil {
		return fmt.Errorf("users store is nil")
	}

	if _, err := s.store.GetAccount(ctx, userID); err != nil {
		return err
	}

	if err := s.store.SetBan(ctx, userID, true, strings.TrimSpace(reason), adminID); err != nil {
		return fmt.Errorf("ban user: %w", err)
	}

	if s.sessions != nil {
		if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}
	}

	return nil
}

func (s *Service) Unban(ctx context.Context, userID int64, adminID int64) error {
	if userID <= 0 {
		return ErrValidation
	}
	if s.store == nil {
		return fmt.Errorf("users store is nil")
	}

	if _, err := s.store.GetAccount(ctx, userID); err != nil {
		return err
	}

	if err := s.store.SetBan(ctx, userID, false, "", adminID); err != nil {
		return fmt.Errorf("unban user: %w", err)
	}

	return nil
}

// GrantVIP extends VIP until the given time. A nil until revokes it.
func (s *Service) GrantVIP(ctx context.Context, userID int64, until *time.Time) error {
	if userID <= 0 {
		return ErrValidation
	}
	if until != nil && !until.After(s.now()) {
		return fmt.Errorf("%w: vip expiry must be in the future", ErrValidation)
	}
	if s.store == nil {
		return fmt.Errorf("users store is nil")
	}

	if _, err := s.store.GetAccount(ctx, userID); err != nil {
		return err
	}

	if err := s.store.SetVIPUntil(ctx, userID, until); err != nil {
		return fmt.Errorf("set vip expiry: %w", err)
	}

	return nil
}

func (s *Service) DashboardStats(ctx context.Context) (Stats, error) {
	if s.store == nil {
		return Stats{}, fmt.Errorf("users store is nil")
	}
	return s.store.CountStats(ctx, s.now().UTC())
}
