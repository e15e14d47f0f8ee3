package enums

import (
	"fmt"
	"strings"
)

// ViewerTier is the access class used to gate listing content.
type ViewerTier string

const (
	TierGuest      ViewerTier = "guest"
	TierRegistered ViewerTier = "registered"
	TierVIP        ViewerTier = "vip"
	TierOwner      ViewerTier = "owner"
	TierAdmin      ViewerTier = "admin"
)

// AllViewerTiers lists every known tier. Policy tables must cover this set.
func AllViewerTiers() []ViewerTier {
	return []ViewerTier{TierGuest, TierRegistered, TierVIP, TierOwner, TierAdmin}
}

func ParseViewerTier(raw string) (ViewerTier, error) {
	switch ViewerTier(strings.ToLower(strings.TrimSpace(raw))) {
	case TierGuest:
		return TierGuest, nil
	case TierRegistered:
		return TierRegistered, nil
	case TierVIP:
		return TierVIP, nil
	case TierOwner:
		return TierOwner, nil
	case TierAdmin:
		return TierAdmin, nil
	default:
		return "", fmt.Errorf("unknown viewer tier %q", raw)
	}
}
