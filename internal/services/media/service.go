package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nkoval/vitrine/internal/domain/enums"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrLimitReached = errors.New("media limit reached")
	ErrNotFound     = errors.New("media not found")
)

const signedURLTTL = 5 * time.Minute

// AssetRecord is what the store persists per uploaded item.
type AssetRecord struct {
	ID        int64
	ListingID int64
	Kind      enums.MediaKind
	Position  int
	ObjectKey string
	CreatedAt time.Time
}

type Store interface {
	CreateAsset(ctx context.Context, listingID int64, kind enums.MediaKind, objectKey string, maxActive int) (AssetRecord, error)
	ListAssets(ctx context.Context, listingID int64, kind enums.MediaKind) ([]AssetRecord, error)
	DeleteAsset(ctx context.Context, listingID, assetID int64) (AssetRecord, error)
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Config struct {
	MaxPhotos  int
	MaxVideos  int
	PresignTTL time.Duration
}

type Service struct {
	store   Store
	storage ObjectStorage
	cfg     Config
	now     func() time.Time
}

// Asset is an uploaded item with a short-lived signed URL.
type Asset struct {
	ID        int64
	Kind      enums.MediaKind
	Position  int
	URL       string
	CreatedAt time.Time
}

func NewService(store Store, storage ObjectStorage, cfg Config) *Service {
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = signedURLTTL
	}

	return &Service{
		store:   store,
		storage: storage,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *Service) Upload(ctx context.Context, listingID int64, kind enums.MediaKind, fileName, contentType string, body io.Reader, size int64) (Asset, error) {
	if listingID <= 0 || body == nil || size <= 0 {
		return Asset{}, ErrValidation
	}
	if kind != enums.MediaKindPhoto && kind != enums.MediaKindVideo {
		return Asset{}, ErrValidation
	}
	if s.store == nil || s.storage == nil {
		return Asset{}, fmt.Errorf("media dependencies are not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Asset{}, fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey := buildObjectKey(listingID, kind, fileName)

	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}

	if err := s.storage.Put(ctx, objectKey, body, size, contentType); err != nil {
		return Asset{}, fmt.Errorf("put object: %w", err)
	}

	maxActive := s.cfg.MaxPhotos
	if kind == enums.MediaKindVideo {
		maxActive = s.cfg.MaxVideos
	}

	record, err := s.store.CreateAsset(ctx, listingID, kind, objectKey, maxActive)
	if err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		if errors.Is(err, ErrLimitReached) {
			return Asset{}, ErrLimitReached
		}
		return Asset{}, fmt.Errorf("create media record: %w", err)
	}

	url, err := s.storage.PresignGet(ctx, record.ObjectKey, s.cfg.PresignTTL)
	if err != nil {
		return Asset{}, fmt.Errorf("presign media url: %w", err)
	}

	return Asset{
		ID:        record.ID,
		Kind:      record.Kind,
		Position:  record.Position,
		URL:       url,
		CreatedAt: record.CreatedAt,
	}, nil
}

// List returns every active asset of a kind, ordered by position. Presigning
// is skipped for records beyond visibleLimit; callers pass the resolver's
// visible count so locked items never receive a fetchable URL.
func (s *Service) List(ctx context.Context, listingID int64, kind enums.MediaKind, visibleLimit int) ([]Asset, error) {
	if listingID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil || s.storage == nil {
		return nil, fmt.Errorf("media dependencies are not configured")
	}

	records, err := s.store.ListAssets(ctx, listingID, kind)
	if err != nil {
		return nil, fmt.Errorf("list media records: %w", err)
	}

	if visibleLimit < 0 || visibleLimit > len(records) {
		visibleLimit = len(records)
	}

	assets := make([]Asset, 0, visibleLimit)
	for _, rec := range records[:visibleLimit] {
		url, err := s.storage.PresignGet(ctx, rec.ObjectKey, s.cfg.PresignTTL)
		if err != nil {
			return nil, fmt.Errorf("presign media url: %w", err)
		}
		assets = append(assets, Asset{
			ID:        rec.ID,
			Kind:      rec.Kind,
			Position:  rec.Position,
			URL:       url,
			CreatedAt: rec.CreatedAt,
		})
	}

	return assets, nil
}

// Count returns the number of active assets of a kind without presigning.
func (s *Service) Count(ctx context.Context, listingID int64, kind enums.MediaKind) (int, error) {
	if listingID <= 0 {
		return 0, ErrValidation
	}
	if s.store == nil {
		return 0, fmt.Errorf("media store is nil")
	}

	records, err := s.store.ListAssets(ctx, listingID, kind)
	if err != nil {
		return 0, fmt.Errorf("count media records: %w", err)
	}

	return len(records), nil
}

func (s *Service) Delete(ctx context.Context, listingID, assetID int64) error {
	if listingID <= 0 || assetID <= 0 {
		return ErrValidation
	}
	if s.store == nil || s.storage == nil {
		return fmt.Errorf("media dependencies are not configured")
	}

	record, err := s.store.DeleteAsset(ctx, listingID, assetID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, record.ObjectKey); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	return nil
}

func buildObjectKey(listingID int64, kind enums.MediaKind, fileName string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("listings/%d/%s/%s%s", listingID, kind, uuid.NewString(), ext)
}
