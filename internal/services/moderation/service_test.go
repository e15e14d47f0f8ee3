package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nkoval/vitrine/internal/domain/enums"
	mediasvc "github.com/nkoval/vitrine/internal/services/media"
)

type fakeModerationStore struct {
	pending   []PendingListing
	statuses  map[int64]enums.ListingStatus
	reasons   map[int64]string
	decisions []DecisionRecord
}

func newFakeModerationStore() *fakeModerationStore {
	return &fakeModerationStore{
		statuses: map[int64]enums.ListingStatus{},
		reasons:  map[int64]string{},
	}
}

func (f *fakeModerationStore) NextPending(context.Context) (PendingListing, error) {
	if len(f.pending) == 0 {
		return PendingListing{}, ErrQueueEmpty
	}
	return f.pending[0], nil
}

func (f *fakeModerationStore) CountPending(context.Context) (int, error) {
	return len(f.pending), nil
}

func (f *fakeModerationStore) GetPending(_ context.Context, listingID int64) (PendingListing, error) {
	for _, p := range f.pending {
		if p.ListingID == listingID {
			return p, nil
		}
	}
	return PendingListing{}, ErrNotFound
}

func (f *fakeModerationStore) SetListingStatus(_ context.Context, listingID int64, status enums.ListingStatus, reason string) error {
	f.statuses[listingID] = status
	f.reasons[listingID] = reason
	for i, p := range f.pending {
		if p.ListingID == listingID {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeModerationStore) RecordDecision(_ context.Context, rec DecisionRecord) error {
	f.decisions = append(f.decisions, rec)
	return nil
}

type stubMedia struct {
	photos int
	videos int
}

func (s *stubMedia) List(_ context.Context, _ int64, kind enums.MediaKind, _ int) ([]mediasvc.Asset, error) {
	n := s.photos
	if kind == enums.MediaKindVideo {
		n = s.videos
	}
	out := make([]mediasvc.Asset, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, mediasvc.Asset{ID: int64(i + 1), Kind: kind, URL: "https://cdn.test/x"})
	}
	return out, nil
}

func TestNextReturnsFullCardAndQueueSize(t *testing.T) {
	store := newFakeModerationStore()
	store.pending = []PendingListing{
		{ListingID: 1, OwnerID: 5, Title: "A", City: "Berlin", CreatedAt: time.Now()},
		{ListingID: 2, OwnerID: 6, Title: "B", City: "Hamburg", CreatedAt: time.Now()},
	}
	svc := NewService(store, &stubMedia{photos: 9, videos: 1})

	item, err := svc.Next(context.Background())
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if item.Listing.ListingID != 1 {
		t.Fatalf("listing_id=%d", item.Listing.ListingID)
	}
	if item.QueueSize != 2 || item.ETABucket != "up_to_10" {
		t.Fatalf("queue=%d eta=%s", item.QueueSize, item.ETABucket)
	}
	// No tier clamp for reviewers.
	if len(item.PhotoURLs) != 9 || len(item.VideoURLs) != 1 {
		t.Fatalf("photos=%d videos=%d", len(item.PhotoURLs), len(item.VideoURLs))
	}
}

func TestNextOnEmptyQueue(t *testing.T) {
	svc := NewService(newFakeModerationStore(), &stubMedia{})
	_, err := svc.Next(context.Background())
	if !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("expected ErrQueueEmpty, got %v", err)
	}
}

func TestApproveActivatesAndLogs(t *testing.T) {
	store := newFakeModerationStore()
	store.pending = []PendingListing{{ListingID: 1, OwnerID: 5}}
	svc := NewService(store, &stubMedia{})

	if err := svc.Approve(context.Background(), 1, 900); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if store.statuses[1] != enums.ListingStatusActive {
		t.Fatalf("status=%s", store.statuses[1])
	}
	if len(store.decisions) != 1 || store.decisions[0].Decision != enums.ModerationStatusApproved {
		t.Fatalf("decisions=%+v", store.decisions)
	}
	if store.decisions[0].ModeratorID != 900 {
		t.Fatalf("moderator=%d", store.decisions[0].ModeratorID)
	}
}

func TestRejectUsesCatalogText(t *testing.T) {
	store := newFakeModerationStore()
	store.pending = []PendingListing{{ListingID: 1, OwnerID: 5}}
	svc := NewService(store, &stubMedia{})

	if err := svc.Reject(context.Background(), 1, 900, "contact_in_media"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if store.statuses[1] != enums.ListingStatusRejected {
		t.Fatalf("status=%s", store.statuses[1])
	}
	if store.reasons[1] == "" {
		t.Fatalf("reject reason text not stored")
	}
	if store.decisions[0].ReasonCode != "CONTACT_IN_MEDIA" {
		t.Fatalf("reason_code=%s", store.decisions[0].ReasonCode)
	}
	if store.decisions[0].Decision != enums.ModerationStatusRejected {
		t.Fatalf("decision=%s", store.decisions[0].Decision)
	}
}

func TestRejectRefusesUnknownReason(t *testing.T) {
	store := newFakeModerationStore()
	store.pending = []PendingListing{{ListingID: 1, OwnerID: 5}}
	svc := NewService(store, &stubMedia{})

	err := svc.Reject(context.Background(), 1, 900, "BECAUSE")
	if !errors.Is(err, ErrUnknownReason) {
		t.Fatalf("expected ErrUnknownReason, got %v", err)
	}
	if len(store.decisions) != 0 {
		t.Fatalf("no decision should be logged: %+v", store.decisions)
	}
}
