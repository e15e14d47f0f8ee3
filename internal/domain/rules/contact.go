package rules

import (
	"strings"

	"github.com/nkoval/vitrine/internal/domain/enums"
)

// ResolveContactMode decides whether a listing's contact fields are shown in the
// clear, masked, or withheld entirely. Advisory only: the transport layer must not
// serialize contact fields at all when the mode is hidden.
func ResolveContactMode(isAuthenticated bool, tier enums.ViewerTier) enums.ContactMode {
	switch tier {
	case enums.TierOwner, enums.TierAdmin, enums.TierVIP:
		return enums.ContactVisible
	}

	if !isAuthenticated {
		return enums.ContactHidden
	}

	// Authenticated non-VIP viewers see a masked number and an upgrade prompt.
	return enums.ContactMasked
}

// MaskPhone keeps the dialing prefix and the last two digits, replacing the rest
// with bullets. Non-digit separators are dropped so the masked form never leaks
// grouping that would narrow the number down.
func MaskPhone(phone string) string {
	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return ""
	}

	prefix := ""
	if strings.HasPrefix(strings.TrimSpace(phone), "+") {
		prefix = "+"
	}

	const keepHead, keepTail = 2, 2
	if len(digits) <= keepHead+keepTail {
		return prefix + strings.Repeat("•", len(digits))
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(string(digits[:keepHead]))
	b.WriteString(strings.Repeat("•", len(digits)-keepHead-keepTail))
	b.WriteString(string(digits[len(digits)-keepTail:]))
	return b.String()
}
