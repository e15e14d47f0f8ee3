package moderation

import (
	"errors"
	"testing"
)

func TestRejectReasonByCodeIsCaseInsensitive(t *testing.T) {
	reason, err := RejectReasonByCode("  spam_links ")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if reason.Code != "SPAM_LINKS" || reason.ReasonText == "" {
		t.Fatalf("reason=%+v", reason)
	}
}

func TestRejectReasonByCodeUnknown(t *testing.T) {
	_, err := RejectReasonByCode("NOPE")
	if !errors.Is(err, ErrUnknownReason) {
		t.Fatalf("expected ErrUnknownReason, got %v", err)
	}
}

func TestListRejectReasonsIsSortedAndComplete(t *testing.T) {
	items := ListRejectReasons()
	if len(items) != len(rejectReasons) {
		t.Fatalf("expected %d reasons, got %d", len(rejectReasons), len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].Code >= items[i].Code {
			t.Fatalf("catalog not sorted at %d: %s >= %s", i, items[i-1].Code, items[i].Code)
		}
	}
	for _, item := range items {
		if item.Label == "" || item.ReasonText == "" {
			t.Fatalf("incomplete catalog entry: %+v", item)
		}
	}
}
