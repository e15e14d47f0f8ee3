package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nkoval/vitrine/internal/domain/enums"
	mediasvc "github.com/nkoval/vitrine/internal/services/media"
)

var (
	ErrQueueEmpty    = errors.New("moderation queue is empty")
	ErrNotFound      = errors.New("listing not found")
	ErrUnknownReason = errors.New("unknown reject reason")
	ErrValidation    = errors.New("validation error")
)

// PendingListing is the queue row a moderator reviews.
type PendingListing struct {
	ListingID    int64
	OwnerID      int64
	Title        string
	Description  string
	City         string
	PricePerHour int64
	CreatedAt    time.Time
}

// DecisionRecord is the audit trail entry for one verdict.
type DecisionRecord struct {
	ListingID   int64
	ModeratorID int64
	Decision    enums.ModerationStatus
	ReasonCode  string
	ReasonText  string
	DecidedAt   time.Time
}

type Store interface {
	NextPending(ctx context.Context) (PendingListing, error)
	CountPending(ctx context.Context) (int, error)
	GetPending(ctx context.Context, listingID int64) (PendingListing, error)
	SetListingStatus(ctx context.Context, listingID int64, status enums.ListingStatus, reason string) error
	RecordDecision(ctx context.Context, rec DecisionRecord) error
}

// Media is the slice of the media service the review card needs.
type Media interface {
	List(ctx context.Context, listingID int64, kind enums.MediaKind, visibleLimit int) ([]mediasvc.Asset, error)
}

type Service struct {
	store Store
	media Media
	now   func() time.Time
}

// QueueItem is one review card: the pending listing, every uploaded photo
// presigned, and a queue-size hint for the reviewer.
type QueueItem struct {
	Listing   PendingListing
	QueueSize int
	ETABucket string
	PhotoURLs []string
	VideoURLs []string
}

func NewService(store Store, media Media) *Service {
	return &Service{
		store: store,
		media: media,
		now:   time.Now,
	}
}

func (s *Service) Next(ctx context.Context) (QueueItem, error) {
	if s.store == nil || s.media == nil {
		return QueueItem{}, fmt.Errorf("moderation service dependencies are not configured")
	}

	listing, err := s.store.NextPending(ctx)
	if err != nil {
		return QueueItem{}, err
	}

	queueSize, err := s.store.CountPending(ctx)
	if err != nil {
		return QueueItem{}, err
	}

	// Reviewers see every uploaded item, no tier clamp applies here.
	photos, err := s.media.List(ctx, listing.ListingID, enums.MediaKindPhoto, -1)
	if err != nil {
		return QueueItem{}, fmt.Errorf("load review photos: %w", err)
	}
	videos, err := s.media.List(ctx, listing.ListingID, enums.MediaKindVideo, -1)
	if err != nil {
		return QueueItem{}, fmt.Errorf("load review videos: %w", err)
	}

	item := QueueItem{
		Listing:   listing,
		QueueSize: queueSize,
		ETABucket: ETABucketFromQueueSize(queueSize),
	}
	for _, a := range photos {
		item.PhotoURLs = append(item.PhotoURLs, a.URL)
	}
	for _, a := range videos {
		item.VideoURLs = append(item.VideoURLs, a.URL)
	}

	return item, nil
}

func (s *Service) Approve(ctx context.Context, listingID, moderatorID int64) error {
	if listingID <= 0 {
		return fmt.Errorf("%w: invalid listing id", ErrValidation)
	}
	if s.store == nil {
		return fmt.Errorf("moderation store is nil")
	}

	listing, err := s.store.GetPending(ctx, listingID)
	if err != nil {
		return err
	}

	if err := s.store.SetListingStatus(ctx, listing.ListingID, enums.ListingStatusActive, ""); err != nil {
		return fmt.Errorf("activate listing: %w", err)
	}

	return s.store.RecordDecision(ctx, DecisionRecord{
		ListingID:   listing.ListingID,
		ModeratorID: moderatorID,
		Decision:    enums.ModerationStatusApproved,
		DecidedAt:   s.now().UTC(),
	})
}

// Reject refuses a pending listing with one of the closed reason codes. Free-form
// reasons are not accepted so owners always get an actionable message.
func (s *Service) Reject(ctx context.Context, listingID, moderatorID int64, reasonCode string) error {
	if listingID <= 0 {
		return fmt.Errorf("%w: invalid listing id", ErrValidation)
	}
	if s.store == nil {
		return fmt.Errorf("moderation store is nil")
	}

	reason, err := RejectReasonByCode(reasonCode)
	if err != nil {
		return err
	}

	listing, err := s.store.GetPending(ctx, listingID)
	if err != nil {
		return err
	}

	if err := s.store.SetListingStatus(ctx, listing.ListingID, enums.ListingStatusRejected, reason.ReasonText); err != nil {
		return fmt.Errorf("reject listing: %w", err)
	}

	return s.store.RecordDecision(ctx, DecisionRecord{
		ListingID:   listing.ListingID,
		ModeratorID: moderatorID,
		Decision:    enums.ModerationStatusRejected,
		ReasonCode:  reason.Code,
		ReasonText:  reason.ReasonText,
		DecidedAt:   s.now().UTC(),
	})
}

func (s *Service) QueueSize(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, fmt.Errorf("moderation store is nil")
	}
	return s.store.CountPending(ctx)
}

// ETABucketFromQueueSize maps the current backlog onto the coarse wait estimate
// shown to owners after submission.
func ETABucketFromQueueSize(queueSize int) string {
	if queueSize >= 50 {
		return "more_than_hour"
	}
	if queueSize <= 10 {
		return "up_to_10"
	}
	if queueSize <= 20 {
		return "up_to_20"
	}
	if queueSize <= 30 {
		return "up_to_30"
	}
	if queueSize <= 40 {
		return "up_to_40"
	}
	return "up_to_50"
}

func normalizeReasonCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
