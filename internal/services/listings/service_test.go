package listings

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nkoval/vitrine/internal/domain/enums"
	authsvc "github.com/nkoval/vitrine/internal/services/auth"
	mediasvc "github.com/nkoval/vitrine/internal/services/media"
)

type fakeListingStore struct {
	listings map[int64]ListingRecord
	nextID   int64
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{listings: map[int64]ListingRecord{}, nextID: 1}
}

func (f *fakeListingStore) CreateListing(_ context.Context, rec ListingRecord) (ListingRecord, error) {
	rec.ID = f.nextID
	f.nextID++
	f.listings[rec.ID] = rec
	return rec, nil
}

func (f *fakeListingStore) GetListing(_ context.Context, id int64) (ListingRecord, error) {
	rec, ok := f.listings[id]
	if !ok {
		return ListingRecord{}, ErrNotFound
	}
	return rec, nil
}

func (f *fakeListingStore) UpdateListing(_ context.Context, rec ListingRecord) (ListingRecord, error) {
	if _, ok := f.listings[rec.ID]; !ok {
		return ListingRecord{}, ErrNotFound
	}
	f.listings[rec.ID] = rec
	return rec, nil
}

func (f *fakeListingStore) ListActive(_ context.Context, city string, limit, offset int) ([]ListingRecord, error) {
	out := make([]ListingRecord, 0)
	for _, rec := range f.listings {
		if rec.Status != enums.ListingStatusActive {
			continue
		}
		if city != "" && rec.City != city {
			continue
		}
		out = append(out, rec)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeListingStore) ListByOwner(_ context.Context, ownerID int64) ([]ListingRecord, error) {
	out := make([]ListingRecord, 0)
	for _, rec := range f.listings {
		if rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeListingStore) SetStatus(_ context.Context, id int64, status enums.ListingStatus, reason string) error {
	rec, ok := f.listings[id]
	if !ok {
		return ErrNotFound
	}
	rec.Status = status
	rec.RejectReason = reason
	f.listings[id] = rec
	return nil
}

type fakeMedia struct {
	counts map[enums.MediaKind]int
}

func (f *fakeMedia) Count(_ context.Context, _ int64, kind enums.MediaKind) (int, error) {
	return f.counts[kind], nil
}

func (f *fakeMedia) List(_ context.Context, listingID int64, kind enums.MediaKind, visibleLimit int) ([]mediasvc.Asset, error) {
	total := f.counts[kind]
	if visibleLimit < 0 || visibleLimit > total {
		visibleLimit = total
	}
	out := make([]mediasvc.Asset, 0, visibleLimit)
	for i := 0; i < visibleLimit; i++ {
		out = append(out, mediasvc.Asset{
			ID:       int64(i + 1),
			Kind:     kind,
			Position: i + 1,
			URL:      fmt.Sprintf("https://cdn.test/listings/%d/%s/%d", listingID, kind, i+1),
		})
	}
	return out, nil
}

type fakeTiers struct {
	tier enums.ViewerTier
}

func (f *fakeTiers) EffectiveTier(_ context.Context, identity *authsvc.Identity, ownerID int64) (enums.ViewerTier, error) {
	if identity == nil {
		return enums.TierGuest, nil
	}
	if identity.Role == string(enums.RoleAdmin) {
		return enums.TierAdmin, nil
	}
	if identity.UserID == ownerID {
		return enums.TierOwner, nil
	}
	return f.tier, nil
}

type fakeReveals struct {
	retryAfter int64
	calls      int
}

func (f *fakeReveals) AllowReveal(context.Context, int64) (int64, bool, error) {
	f.calls++
	if f.retryAfter > 0 {
		return f.retryAfter, false, nil
	}
	return 0, true, nil
}

func newListingsForTest(tier enums.ViewerTier) (*Service, *fakeListingStore, *fakeMedia, *fakeReveals) {
	store := newFakeListingStore()
	media := &fakeMedia{counts: map[enums.MediaKind]int{}}
	reveals := &fakeReveals{}
	svc := NewService(store, media, &fakeTiers{tier: tier}, reveals)
	svc.now = func() time.Time { return time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC) }
	return svc, store, media, reveals
}

func seedActiveListing(store *fakeListingStore, ownerID int64, phone string) ListingRecord {
	rec, _ := store.CreateListing(context.Background(), ListingRecord{
		OwnerID:      ownerID,
		Title:        "Evening companion",
		City:         "Berlin",
		PricePerHour: 200,
		ContactPhone: phone,
		Status:       enums.ListingStatusActive,
	})
	return rec
}

func TestViewGuestSeesClampedPhotosAndNoContact(t *testing.T) {
	svc, store, media, _ := newListingsForTest(enums.TierRegistered)
	media.counts[enums.MediaKindPhoto] = 12
	rec := seedActiveListing(store, 5, "+49 171 2345678")

	view, err := svc.View(context.Background(), nil, rec.ID)
	if err != nil {
		t.Fatalf("view: %v", err)
	}

	if view.Tier != enums.TierGuest {
		t.Fatalf("tier=%s", view.Tier)
	}
	if len(view.Photos.Items) != 3 || view.Photos.VisibleCount != 3 {
		t.Fatalf("expected 3 visible photos, got %d (items %d)", view.Photos.VisibleCount, len(view.Photos.Items))
	}
	if view.Photos.TotalCount != 12 || !view.Photos.Locked {
		t.Fatalf("expected locked section with total 12: %+v", view.Photos)
	}
	if view.Contact.Mode != enums.ContactHidden || view.Contact.Phone != "" {
		t.Fatalf("guest contact must be hidden: %+v", view.Contact)
	}
	if view.Listing.ContactPhone != "" {
		t.Fatalf("raw phone leaked on the listing record")
	}
}

func TestViewRegisteredGetsMaskedContact(t *testing.T) {
	svc, store, _, _ := newListingsForTest(enums.TierRegistered)
	rec := seedActiveListing(store, 5, "+49 171 2345678")

	view, err := svc.View(context.Background(), &authsvc.Identity{UserID: 9, Role: string(enums.RoleUser)}, rec.ID)
	if err != nil {
		t.Fatalf("view: %v", err)
	}

	if view.Contact.Mode != enums.ContactMasked {
		t.Fatalf("mode=%s", view.Contact.Mode)
	}
	if view.Contact.Phone != "+49••••••••78" {
		t.Fatalf("masked phone=%q", view.Contact.Phone)
	}
}

func TestViewVIPSeesEverything(t *testing.T) {
	svc, store, media, _ := newListingsForTest(enums.TierVIP)
	media.counts[enums.MediaKindPhoto] = 12
	media.counts[enums.MediaKindVideo] = 2
	rec := seedActiveListing(store, 5, "+49 171 2345678")

	view, err := svc.View(context.Background(), &authsvc.Identity{UserID: 9, Role: string(enums.RoleUser)}, rec.ID)
	if err != nil {
		t.Fatalf("view: %v", err)
	}

	if view.Photos.Locked || view.Photos.VisibleCount != 12 {
		t.Fatalf("vip photos should be fully visible: %+v", view.Photos)
	}
	if view.Videos.Locked || view.Videos.VisibleCount != 2 {
		t.Fatalf("vip videos should be fully visible: %+v", view.Videos)
	}
	if view.Contact.Mode != enums.ContactVisible || view.Contact.Phone != "+49 171 2345678" {
		t.Fatalf("vip contact: %+v", view.Contact)
	}
}

func TestViewHidesPendingListingFromStrangers(t *testing.T) {
	svc, store, _, _ := newListingsForTest(enums.TierRegistered)
	rec, _ := store.CreateListing(context.Background(), ListingRecord{
		OwnerID:      5,
		Title:        "Draft",
		City:         "Berlin",
		ContactPhone: "+4917100000",
		Status:       enums.ListingStatusPending,
	})

	_, err := svc.View(context.Background(), &authsvc.Identity{UserID: 9, Role: string(enums.RoleUser)}, rec.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for pending listing, got %v", err)
	}

	view, err := svc.View(context.Background(), &authsvc.Identity{UserID: 5, Role: string(enums.RoleEscort)}, rec.ID)
	if err != nil {
		t.Fatalf("owner view: %v", err)
	}
	if view.Tier != enums.TierOwner {
		t.Fatalf("owner tier=%s", view.Tier)
	}
}

func TestRevealRequiresUpgradeForRegistered(t *testing.T) {
	svc, store, _, reveals := newListingsForTest(enums.TierRegistered)
	rec := seedActiveListing(store, 5, "+49 171 2345678")

	_, err := svc.Reveal(context.Background(), &authsvc.Identity{UserID: 9, Role: string(enums.RoleUser)}, rec.ID)
	if !errors.Is(err, ErrUpgradeRequired) {
		t.Fatalf("expected ErrUpgradeRequired, got %v", err)
	}
	if reveals.calls != 0 {
		t.Fatalf("limiter must not be consumed on refused reveals")
	}
}

func TestRevealReturnsFullContactForVIP(t *testing.T) {
	svc, store, _, _ := newListingsForTest(enums.TierVIP)
	rec := seedActiveListing(store, 5, "+49 171 2345678")

	res, err := svc.Reveal(context.Background(), &authsvc.Identity{UserID: 9, Role: string(enums.RoleUser)}, rec.ID)
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if res.Phone != "+49 171 2345678" {
		t.Fatalf("phone=%q", res.Phone)
	}
}

func TestRevealReportsRetryAfterWhenThrottled(t *testing.T) {
	svc, store, _, reveals := newListingsForTest(enums.TierVIP)
	reveals.retryAfter = 7
	rec := seedActiveListing(store, 5, "+49 171 2345678")

	res, err := svc.Reveal(context.Background(), &authsvc.Identity{UserID: 9, Role: string(enums.RoleUser)}, rec.ID)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if res.RetryAfterSec != 7 {
		t.Fatalf("retry_after=%d", res.RetryAfterSec)
	}
	if res.Phone != "" {
		t.Fatalf("throttled reveal leaked the phone")
	}
}

func TestRevealRejectsGuests(t *testing.T) {
	svc, store, _, _ := newListingsForTest(enums.TierRegistered)
	rec := seedActiveListing(store, 5, "+49 171 2345678")

	_, err := svc.Reveal(context.Background(), nil, rec.ID)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestCreateRequiresEscortRole(t *testing.T) {
	svc, _, _, _ := newListingsForTest(enums.TierRegistered)
	in := CreateInput{Title: "T", City: "Berlin", PricePerHour: 100, ContactPhone: "+4917100000"}

	_, err := svc.Create(context.Background(), &authsvc.Identity{UserID: 9, Role: string(enums.RoleUser)}, in)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	rec, err := svc.Create(context.Background(), &authsvc.Identity{UserID: 9, Role: string(enums.RoleEscort)}, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Status != enums.ListingStatusPending {
		t.Fatalf("new listing status=%s", rec.Status)
	}
}

func TestUpdateResetsModerationState(t *testing.T) {
	svc, store, _, _ := newListingsForTest(enums.TierRegistered)
	rec := seedActiveListing(store, 5, "+49 171 2345678")

	updated, err := svc.Update(context.Background(), &authsvc.Identity{UserID: 5, Role: string(enums.RoleEscort)}, rec.ID, CreateInput{
		Title:        "New title",
		City:         "Hamburg",
		PricePerHour: 250,
		ContactPhone: "+49 171 2345678",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != enums.ListingStatusPending {
		t.Fatalf("updated status=%s", updated.Status)
	}
	if updated.City != "Hamburg" {
		t.Fatalf("city=%s", updated.City)
	}

	_, err = svc.Update(context.Background(), &authsvc.Identity{UserID: 9, Role: string(enums.RoleEscort)}, rec.ID, CreateInput{
		Title:        "Hijack",
		City:         "Berlin",
		ContactPhone: "+4917100000",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner update, got %v", err)
	}
}

func TestBrowseStripsContactAndFilters(t *testing.T) {
	svc, store, _, _ := newListingsForTest(enums.TierRegistered)
	seedActiveListing(store, 5, "+4911111111")
	store.CreateListing(context.Background(), ListingRecord{
		OwnerID: 6, Title: "Pending", City: "Berlin", ContactPhone: "+4922222222", Status: enums.ListingStatusPending,
	})

	recs, err := svc.Browse(context.Background(), "Berlin", 10, 0)
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 active listing, got %d", len(recs))
	}
	if recs[0].ContactPhone != "" {
		t.Fatalf("browse leaked a phone: %q", recs[0].ContactPhone)
	}
}
