package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nkoval/vitrine/internal/domain/enums"
	authsvc "github.com/nkoval/vitrine/internal/services/auth"
)

var ErrValidation = errors.New("validation error")

// MembershipRecord is the raw row the store returns.
type MembershipRecord struct {
	UserID       int64
	VIPExpiresAt *time.Time
}

type Store interface {
	GetMembership(ctx context.Context, userID int64) (MembershipRecord, error)
}

type Config struct {
	DefaultIsVIP bool
}

type Service struct {
	store Store
	cfg   Config
	now   func() time.Time
}

// Snapshot is the membership state evaluated against the clock at read time.
type Snapshot struct {
	UserID   int64
	IsVIP    bool
	VIPUntil *time.Time
}

func NewService(store Store, cfg Config) *Service {
	return &Service{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

func (s *Service) Get(ctx context.Context, userID int64) (Snapshot, error) {
	if userID <= 0 {
		return Snapshot{}, ErrValidation
	}
	if s.store == nil {
		return Snapshot{}, fmt.Errorf("membership store is nil")
	}

	rec, err := s.store.GetMembership(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	now := s.now().UTC()
	isVIP := s.cfg.DefaultIsVIP
	if rec.VIPExpiresAt != nil {
		isVIP = rec.VIPExpiresAt.After(now)
	}

	return Snapshot{
		UserID:   userID,
		IsVIP:    isVIP,
		VIPUntil: rec.VIPExpiresAt,
	}, nil
}

// EffectiveTier maps a session identity onto the viewer tier used for gating a
// specific listing. Admin wins over ownership, ownership over VIP, VIP over a
// plain authenticated account. A nil identity is a guest.
func (s *Service) EffectiveTier(ctx context.Context, identity *authsvc.Identity, listingOwnerID int64) (enums.ViewerTier, error) {
	if identity == nil {
		return enums.TierGuest, nil
	}

	if identity.Role == string(enums.RoleAdmin) {
		return enums.TierAdmin, nil
	}
	if listingOwnerID > 0 && identity.UserID == listingOwnerID {
		return enums.TierOwner, nil
	}

	snapshot, err := s.Get(ctx, identity.UserID)
	if err != nil {
		return "", fmt.Errorf("membership snapshot: %w", err)
	}
	if snapshot.IsVIP {
		return enums.TierVIP, nil
	}

	return enums.TierRegistered, nil
}
