package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	mediasvc "github.com/nkoval/vitrine/internal/services/media"
)

// Job removes media left behind by rejected listings and downgrades accounts
// whose VIP term has run out.
type Job struct {
	assets    rejectedAssetStore
	storage   objectDeleter
	vips      vipExpirer
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

type rejectedAssetStore interface {
	ListRejectedAssetsOlderThan(ctx context.Context, cutoff time.Time) ([]mediasvc.AssetRecord, error)
	DeleteAssetByID(ctx context.Context, assetID int64) error
}

type objectDeleter interface {
	Delete(ctx context.Context, key string) error
}

type vipExpirer interface {
	ClearExpiredVIP(ctx context.Context, cutoff time.Time) (int64, error)
}

func New(assets rejectedAssetStore, storage objectDeleter, vips vipExpirer, retention time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		assets:    assets,
		storage:   storage,
		vips:      vips,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.vips != nil {
		cleared, err := j.vips.ClearExpiredVIP(ctx, j.now())
		if err != nil {
			return fmt.Errorf("clear expired vip grants: %w", err)
		}
		if cleared > 0 {
			j.logger.Info("expired vip grants cleared", zap.Int64("cleared", cleared))
		}
	}

	if j.assets == nil {
		return nil
	}

	cutoff := j.now().Add(-j.retention)
	stale, err := j.assets.ListRejectedAssetsOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list rejected listing media: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	for _, asset := range stale {
		if j.storage != nil {
			if err := j.storage.Delete(ctx, asset.ObjectKey); err != nil {
				j.logger.Warn("failed to delete media object from storage",
					zap.Error(err), zap.String("object_key", asset.ObjectKey))
			}
		}
		if err := j.assets.DeleteAssetByID(ctx, asset.ID); err != nil {
			return fmt.Errorf("delete rejected media record: %w", err)
		}
	}

	j.logger.Info("rejected listing media swept", zap.Int("deleted", len(stale)))
	return nil
}
