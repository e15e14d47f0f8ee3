package rules

import (
	"errors"
	"fmt"

	"github.com/nkoval/vitrine/internal/domain/enums"
)

// Unlimited marks a tier limit with no cap.
const Unlimited = -1

var (
	ErrUnknownTier   = errors.New("unknown viewer tier")
	ErrNegativeTotal = errors.New("negative media total")
)

// TierLimits is one row of the tier policy table.
type TierLimits struct {
	Tier      enums.ViewerTier
	MaxPhotos int
	MaxVideos int
	Label     string
}

// tierPolicy is the single source of truth for per-tier media caps.
// No other package may hard-code these numbers.
var tierPolicy = map[enums.ViewerTier]TierLimits{
	enums.TierGuest:      {Tier: enums.TierGuest, MaxPhotos: 3, MaxVideos: 0, Label: "Guest"},
	enums.TierRegistered: {Tier: enums.TierRegistered, MaxPhotos: 8, MaxVideos: 1, Label: "Member"},
	enums.TierVIP:        {Tier: enums.TierVIP, MaxPhotos: Unlimited, MaxVideos: Unlimited, Label: "VIP"},
	enums.TierOwner:      {Tier: enums.TierOwner, MaxPhotos: Unlimited, MaxVideos: Unlimited, Label: "Owner"},
	enums.TierAdmin:      {Tier: enums.TierAdmin, MaxPhotos: Unlimited, MaxVideos: Unlimited, Label: "Admin"},
}

// LimitsFor returns the policy row for a tier. The tier set is closed, so a miss
// is a configuration fault in the caller, not a runtime condition to recover from.
func LimitsFor(tier enums.ViewerTier) (TierLimits, error) {
	limits, ok := tierPolicy[tier]
	if !ok {
		return TierLimits{}, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	return limits, nil
}

// VisibilityResult says how much of a listing's media a viewer may see.
type VisibilityResult struct {
	VisibleCount int
	TotalCount   int
	Locked       bool
}

// ResolveVisibleCount computes the visible prefix of a media collection for a tier.
// Pure: same inputs always yield the same result.
func ResolveVisibleCount(total int, tier enums.ViewerTier, kind enums.MediaKind) (VisibilityResult, error) {
	if total < 0 {
		return VisibilityResult{}, fmt.Errorf("%w: %d", ErrNegativeTotal, total)
	}

	limits, err := LimitsFor(tier)
	if err != nil {
		return VisibilityResult{}, err
	}

	limit := limits.MaxPhotos
	if kind == enums.MediaKindVideo {
		limit = limits.MaxVideos
	}

	if limit == Unlimited || total <= limit {
		return VisibilityResult{
			VisibleCount: total,
			TotalCount:   total,
			Locked:       false,
		}, nil
	}

	return VisibilityResult{
		VisibleCount: limit,
		TotalCount:   total,
		Locked:       true,
	}, nil
}
