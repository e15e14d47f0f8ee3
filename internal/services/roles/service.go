package roles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nkoval/vitrine/internal/domain/enums"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrRoleNotFound = errors.New("stored role not found")
)

const defaultFreshness = 7 * 24 * time.Hour

// RoleRecord is a visitor's audience role selection with its timestamp.
type RoleRecord struct {
	Role       enums.StoredRole
	SelectedAt time.Time
}

type Store interface {
	Save(ctx context.Context, visitorID string, record RoleRecord, ttl time.Duration) error
	Load(ctx context.Context, visitorID string) (RoleRecord, error)
	Delete(ctx context.Context, visitorID string) error
}

// Service persists the role a visitor picked in the role-selection prompt.
// A selection older than the freshness window is treated as absent, so the
// prompt reappears instead of silently reusing a stale choice.
type Service struct {
	store     Store
	freshness time.Duration
	now       func() time.Time
}

func NewService(store Store, freshness time.Duration) *Service {
	if freshness <= 0 {
		freshness = defaultFreshness
	}

	return &Service{
		store:     store,
		freshness: freshness,
		now:       time.Now,
	}
}

func (s *Service) Set(ctx context.Context, visitorID, rawRole string) (enums.StoredRole, error) {
	if strings.TrimSpace(visitorID) == "" {
		return "", fmt.Errorf("visitor id is required: %w", ErrValidation)
	}
	if s.store == nil {
		return "", fmt.Errorf("role store is nil")
	}

	role, err := enums.ParseStoredRole(rawRole)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	record := RoleRecord{
		Role:       role,
		SelectedAt: s.now().UTC(),
	}
	if err := s.store.Save(ctx, visitorID, record, s.freshness); err != nil {
		return "", fmt.Errorf("save stored role: %w", err)
	}

	return role, nil
}

// Get returns the stored role, or ok=false when none was selected or the
// selection has gone stale. A stale record is deleted on read.
func (s *Service) Get(ctx context.Context, visitorID string) (enums.StoredRole, bool, error) {
	if strings.TrimSpace(visitorID) == "" {
		return "", false, fmt.Errorf("visitor id is required: %w", ErrValidation)
	}
	if s.store == nil {
		return "", false, fmt.Errorf("role store is nil")
	}

	record, err := s.store.Load(ctx, visitorID)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load stored role: %w", err)
	}

	if s.now().UTC().Sub(record.SelectedAt) > s.freshness {
		if err := s.store.Delete(ctx, visitorID); err != nil {
			return "", false, fmt.Errorf("delete stale role: %w", err)
		}
		return "", false, nil
	}

	return record.Role, true, nil
}

// Clear drops the stored role. Called on logout so the next visitor on the
// same device is prompted again.
func (s *Service) Clear(ctx context.Context, visitorID string) error {
	if strings.TrimSpace(visitorID) == "" {
		return nil
	}
	if s.store == nil {
		return fmt.Errorf("role store is nil")
	}

	if err := s.store.Delete(ctx, visitorID); err != nil {
		return fmt.Errorf("clear stored role: %w", err)
	}

	return nil
}
