package moderation

import (
	"fmt"
	"sort"
)

// RejectReason is one entry of the closed reject-reason catalog.
type RejectReason struct {
	Code       string
	Label      string
	ReasonText string
}

var rejectReasons = map[string]RejectReason{
	"PHOTO_PROHIBITED": {
		Code:       "PHOTO_PROHIBITED",
		Label:      "Photos: prohibited content",
		ReasonText: "One or more photos contain prohibited content. Remove them and resubmit.",
	},
	"PHOTO_MISLEADING": {
		Code:       "PHOTO_MISLEADING",
		Label:      "Photos: misleading",
		ReasonText: "The photos do not match the person described in the listing.",
	},
	"PHOTO_LOW_QUALITY": {
		Code:       "PHOTO_LOW_QUALITY",
		Label:      "Photos: unusable quality",
		ReasonText: "The photos are too blurry or dark to review. Upload clearer images.",
	},
	"CONTACT_IN_MEDIA": {
		Code:       "CONTACT_IN_MEDIA",
		Label:      "Contact details in media",
		ReasonText: "Phone numbers or handles are embedded in the photos. Contact details belong in the contact field only.",
	},
	"LISTING_INCOMPLETE": {
		Code:       "LISTING_INCOMPLETE",
		Label:      "Listing incomplete",
		ReasonText: "Required listing fields are missing or placeholder text. Complete the listing and resubmit.",
	},
	"SPAM_LINKS": {
		Code:       "SPAM_LINKS",
		Label:      "Spam or external links",
		ReasonText: "The listing text contains spam or links to external sites.",
	},
	"DUPLICATE": {
		Code:       "DUPLICATE",
		Label:      "Duplicate listing",
		ReasonText: "An active listing for this person already exists.",
	},
	"OTHER": {
		Code:       "OTHER",
		Label:      "Other",
		ReasonText: "The listing needs changes before it can go live.",
	},
}

// RejectReasonByCode resolves a code against the catalog. Codes are matched
// case-insensitively.
func RejectReasonByCode(code string) (RejectReason, error) {
	reason, ok := rejectReasons[normalizeReasonCode(code)]
	if !ok {
		return RejectReason{}, fmt.Errorf("%w: %q", ErrUnknownReason, code)
	}
	return reason, nil
}

func ListRejectReasons() []RejectReason {
	out := make([]RejectReason, 0, len(rejectReasons))
	for _, reason := range rejectReasons {
		out = append(out, reason)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
