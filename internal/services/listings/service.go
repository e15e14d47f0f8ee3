package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nkoval/vitrine/internal/domain/enums"
	"github.com/nkoval/vitrine/internal/domain/rules"
	"github.com/nkoval/vitrine/internal/pkg/validate"
	authsvc "github.com/nkoval/vitrine/internal/services/auth"
	mediasvc "github.com/nkoval/vitrine/internal/services/media"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("listing not found")
	ErrForbidden       = errors.New("operation not allowed")
	ErrUnauthenticated = errors.New("authentication required")
	ErrUpgradeRequired = errors.New("vip membership required")
	ErrRateLimited     = errors.New("too many reveal requests")
)

// ListingRecord is the persisted listing row.
type ListingRecord struct {
	ID           int64
	OwnerID      int64
	Title        string
	Description  string
	City         string
	PricePerHour int64
	ContactPhone string
	Status       enums.ListingStatus
	RejectReason string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Store interface {
	CreateListing(ctx context.Context, rec ListingRecord) (ListingRecord, error)
	GetListing(ctx context.Context, id int64) (ListingRecord, error)
	UpdateListing(ctx context.Context, rec ListingRecord) (ListingRecord, error)
	ListActive(ctx context.Context, city string, limit, offset int) ([]ListingRecord, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]ListingRecord, error)
	SetStatus(ctx context.Context, id int64, status enums.ListingStatus, reason string) error
}

// Media is the slice of the media service the listing view needs.
type Media interface {
	List(ctx context.Context, listingID int64, kind enums.MediaKind, visibleLimit int) ([]mediasvc.Asset, error)
	Count(ctx context.Context, listingID int64, kind enums.MediaKind) (int, error)
}

// TierResolver maps an identity onto a viewer tier for one listing.
type TierResolver interface {
	EffectiveTier(ctx context.Context, identity *authsvc.Identity, listingOwnerID int64) (enums.ViewerTier, error)
}

// RevealLimiter throttles full-contact requests per viewer.
type RevealLimiter interface {
	AllowReveal(ctx context.Context, userID int64) (int64, bool, error)
}

type Service struct {
	store   Store
	media   Media
	tiers   TierResolver
	reveals RevealLimiter
	now     func() time.Time
}

func NewService(store Store, media Media, tiers TierResolver, reveals RevealLimiter) *Service {
	return &Service{
		store:   store,
		media:   media,
		tiers:   tiers,
		reveals: reveals,
		now:     time.Now,
	}
}

// MediaSection is one kind of media as the viewer is allowed to see it.
type MediaSection struct {
	Items        []mediasvc.Asset
	VisibleCount int
	TotalCount   int
	Locked       bool
}

// Contact is the gated contact block of a listing view.
type Contact struct {
	Mode  enums.ContactMode
	Phone string
}

// View is a single listing rendered for one viewer tier.
type View struct {
	Listing ListingRecord
	Tier    enums.ViewerTier
	Photos  MediaSection
	Videos  MediaSection
	Contact Contact
}

// CreateInput is the owner-supplied part of a listing.
type CreateInput struct {
	Title        string
	Description  string
	City         string
	PricePerHour int64
	ContactPhone string
}

func (s *Service) Create(ctx context.Context, identity *authsvc.Identity, in CreateInput) (ListingRecord, error) {
	if identity == nil {
		return ListingRecord{}, ErrUnauthenticated
	}
	if identity.Role != string(enums.RoleEscort) && identity.Role != string(enums.RoleAdmin) {
		return ListingRecord{}, ErrForbidden
	}
	if err := validateInput(in); err != nil {
		return ListingRecord{}, err
	}
	if s.store == nil {
		return ListingRecord{}, fmt.Errorf("listing store is nil")
	}

	now := s.now().UTC()
	rec := ListingRecord{
		OwnerID:      identity.UserID,
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		City:         strings.TrimSpace(in.City),
		PricePerHour: in.PricePerHour,
		ContactPhone: strings.TrimSpace(in.ContactPhone),
		Status:       enums.ListingStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.store.CreateListing(ctx, rec)
	if err != nil {
		return ListingRecord{}, fmt.Errorf("create listing: %w", err)
	}

	return created, nil
}

// Update replaces the owner-editable fields and sends the listing back through
// moderation.
func (s *Service) Update(ctx context.Context, identity *authsvc.Identity, listingID int64, in CreateInput) (ListingRecord, error) {
	if identity == nil {
		return ListingRecord{}, ErrUnauthenticated
	}
	if err := validateInput(in); err != nil {
		return ListingRecord{}, err
	}

	rec, err := s.getOwned(ctx, identity, listingID)
	if err != nil {
		return ListingRecord{}, err
	}

	rec.Title = strings.TrimSpace(in.Title)
	rec.Description = strings.TrimSpace(in.Description)
	rec.City = strings.TrimSpace(in.City)
	rec.PricePerHour = in.PricePerHour
	rec.ContactPhone = strings.TrimSpace(in.ContactPhone)
	rec.Status = enums.ListingStatusPending
	rec.RejectReason = ""
	rec.UpdatedAt = s.now().UTC()

	updated, err := s.store.UpdateListing(ctx, rec)
	if err != nil {
		return ListingRecord{}, fmt.Errorf("update listing: %w", err)
	}

	return updated, nil
}

// Suspend takes the owner's listing off the catalog without deleting it.
func (s *Service) Suspend(ctx context.Context, identity *authsvc.Identity, listingID int64) error {
	if identity == nil {
		return ErrUnauthenticated
	}

	rec, err := s.getOwned(ctx, identity, listingID)
	if err != nil {
		return err
	}

	if err := s.store.SetStatus(ctx, rec.ID, enums.ListingStatusSuspended, ""); err != nil {
		return fmt.Errorf("suspend listing: %w", err)
	}

	return nil
}

func (s *Service) ListOwn(ctx context.Context, identity *authsvc.Identity) ([]ListingRecord, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	if s.store == nil {
		return nil, fmt.Errorf("listing store is nil")
	}

	recs, err := s.store.ListByOwner(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("list own listings: %w", err)
	}

	return recs, nil
}

// Browse returns a page of active listings without contact data or media; the
// catalog page shows titles only, the detail view applies the gating.
func (s *Service) Browse(ctx context.Context, city string, limit, offset int) ([]ListingRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if s.store == nil {
		return nil, fmt.Errorf("listing store is nil")
	}

	recs, err := s.store.ListActive(ctx, strings.TrimSpace(city), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("browse listings: %w", err)
	}

	for i := range recs {
		recs[i].ContactPhone = ""
	}

	return recs, nil
}

// View renders one listing for the caller's tier. Media beyond the tier cap is
// counted but never presigned, and the contact block follows the gate mode.
func (s *Service) View(ctx context.Context, identity *authsvc.Identity, listingID int64) (View, error) {
	if listingID <= 0 {
		return View{}, ErrValidation
	}
	if s.store == nil || s.media == nil || s.tiers == nil {
		return View{}, fmt.Errorf("listing dependencies are not configured")
	}

	rec, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return View{}, err
	}

	tier, err := s.tiers.EffectiveTier(ctx, identity, rec.OwnerID)
	if err != nil {
		return View{}, err
	}

	// Non-active listings exist only for their owner and the staff. Everyone
	// else gets the same not-found as a missing id so drafts stay invisible.
	if rec.Status != enums.ListingStatusActive && tier != enums.TierOwner && tier != enums.TierAdmin {
		return View{}, ErrNotFound
	}

	photos, err := s.mediaSection(ctx, rec.ID, enums.MediaKindPhoto, tier)
	if err != nil {
		return View{}, err
	}
	videos, err := s.mediaSection(ctx, rec.ID, enums.MediaKindVideo, tier)
	if err != nil {
		return View{}, err
	}

	mode := rules.ResolveContactMode(identity != nil, tier)
	contact := Contact{Mode: mode}
	switch mode {
	case enums.ContactVisible:
		contact.Phone = rec.ContactPhone
	case enums.ContactMasked:
		contact.Phone = rules.MaskPhone(rec.ContactPhone)
	}

	rec.ContactPhone = ""

	return View{
		Listing: rec,
		Tier:    tier,
		Photos:  photos,
		Videos:  videos,
		Contact: contact,
	}, nil
}

// RevealResult carries either the full contact or the wait before retrying.
type RevealResult struct {
	Phone         string
	RetryAfterSec int64
}

// Reveal hands out the unmasked contact to viewers whose tier already grants
// it, under a per-viewer rate limit. Lower tiers are refused with the reason
// the client needs to render the right prompt.
func (s *Service) Reveal(ctx context.Context, identity *authsvc.Identity, listingID int64) (RevealResult, error) {
	if listingID <= 0 {
		return RevealResult{}, ErrValidation
	}
	if identity == nil {
		return RevealResult{}, ErrUnauthenticated
	}
	if s.store == nil || s.tiers == nil || s.reveals == nil {
		return RevealResult{}, fmt.Errorf("listing dependencies are not configured")
	}

	rec, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return RevealResult{}, err
	}

	tier, err := s.tiers.EffectiveTier(ctx, identity, rec.OwnerID)
	if err != nil {
		return RevealResult{}, err
	}

	if rec.Status != enums.ListingStatusActive && tier != enums.TierOwner && tier != enums.TierAdmin {
		return RevealResult{}, ErrNotFound
	}

	if rules.ResolveContactMode(true, tier) != enums.ContactVisible {
		return RevealResult{}, ErrUpgradeRequired
	}

	retryAfter, allowed, err := s.reveals.AllowReveal(ctx, identity.UserID)
	if err != nil {
		return RevealResult{}, fmt.Errorf("reveal rate check: %w", err)
	}
	if !allowed {
		return RevealResult{RetryAfterSec: retryAfter}, ErrRateLimited
	}

	return RevealResult{Phone: rec.ContactPhone}, nil
}

func (s *Service) mediaSection(ctx context.Context, listingID int64, kind enums.MediaKind, tier enums.ViewerTier) (MediaSection, error) {
	total, err := s.media.Count(ctx, listingID, kind)
	if err != nil {
		return MediaSection{}, err
	}

	vis, err := rules.ResolveVisibleCount(total, tier, kind)
	if err != nil {
		return MediaSection{}, err
	}

	items, err := s.media.List(ctx, listingID, kind, vis.VisibleCount)
	if err != nil {
		return MediaSection{}, err
	}

	return MediaSection{
		Items:        items,
		VisibleCount: vis.VisibleCount,
		TotalCount:   vis.TotalCount,
		Locked:       vis.Locked,
	}, nil
}

// GetOwned returns the listing only to its owner or an admin.
func (s *Service) GetOwned(ctx context.Context, identity *authsvc.Identity, listingID int64) (ListingRecord, error) {
	if identity == nil {
		return ListingRecord{}, ErrUnauthenticated
	}
	return s.getOwned(ctx, identity, listingID)
}

func (s *Service) getOwned(ctx context.Context, identity *authsvc.Identity, listingID int64) (ListingRecord, error) {
	if listingID <= 0 {
		return ListingRecord{}, ErrValidation
	}
	if s.store == nil {
		return ListingRecord{}, fmt.Errorf("listing store is nil")
	}

	rec, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return ListingRecord{}, err
	}

	if rec.OwnerID != identity.UserID && identity.Role != string(enums.RoleAdmin) {
		return ListingRecord{}, ErrForbidden
	}

	return rec, nil
}

func validateInput(in CreateInput) error {
	if !validate.Required(in.Title) {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(in.Title) > 120 {
		return fmt.Errorf("%w: title is too long", ErrValidation)
	}
	if !validate.Required(in.City) {
		return fmt.Errorf("%w: city is required", ErrValidation)
	}
	if in.PricePerHour < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if !validate.Required(in.ContactPhone) {
		return fmt.Errorf("%w: contact phone is required", ErrValidation)
	}
	return nil
}
