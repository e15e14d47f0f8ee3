package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkoval/vitrine/internal/domain/enums"
	mediasvc "github.com/nkoval/vitrine/internal/services/media"
)

type MediaRepo struct {
	pool *pgxpool.Pool
}

func NewMediaRepo(pool *pgxpool.Pool) *MediaRepo {
	return &MediaRepo{pool: pool}
}

// CreateAsset appends an item at the next free position. Positions are locked
// inside the transaction so concurrent uploads cannot exceed maxActive or
// collide on a slot.
func (r *MediaRepo) CreateAsset(ctx context.Context, listingID int64, kind enums.MediaKind, objectKey string, maxActive int) (mediasvc.AssetRecord, error) {
	if r.pool == nil {
		return mediasvc.AssetRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var record mediasvc.AssetRecord
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
SELECT position
FROM listing_media
WHERE listing_id = $1 AND kind = $2
ORDER BY position
FOR UPDATE
`, listingID, kind)
		if err != nil {
			return fmt.Errorf("query media positions: %w", err)
		}

		maxPosition := 0
		count := 0
		for rows.Next() {
			var position int
			if err := rows.Scan(&position); err != nil {
				rows.Close()
				return fmt.Errorf("scan media position: %w", err)
			}
			count++
			if position > maxPosition {
				maxPosition = position
			}
		}
		rows.Close()
		if rows.Err() != nil {
			return fmt.Errorf("iterate media positions: %w", rows.Err())
		}

		if maxActive > 0 && count >= maxActive {
			return mediasvc.ErrLimitReached
		}

		return tx.QueryRow(ctx, `
INSERT INTO listing_media (listing_id, kind, object_key, position, created_at)
VALUES ($1, $2, $3, $4, NOW())
RETURNING id, listing_id, kind, position, object_key, created_at
`, listingID, kind, objectKey, maxPosition+1).Scan(
			&record.ID, &record.ListingID, &record.Kind, &record.Position, &record.ObjectKey, &record.CreatedAt,
		)
	})
	if err != nil {
		if errors.Is(err, mediasvc.ErrLimitReached) {
			return mediasvc.AssetRecord{}, mediasvc.ErrLimitReached
		}
		return mediasvc.AssetRecord{}, fmt.Errorf("insert media asset: %w", err)
	}

	return record, nil
}

func (r *MediaRepo) ListAssets(ctx context.Context, listingID int64, kind enums.MediaKind) ([]mediasvc.AssetRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, listing_id, kind, position, object_key, created_at
FROM listing_media
WHERE listing_id = $1 AND kind = $2
ORDER BY position ASC, created_at ASC
`, listingID, kind)
	if err != nil {
		return nil, fmt.Errorf("list media assets: %w", err)
	}
	defer rows.Close()

	return collectAssets(rows)
}

func (r *MediaRepo) DeleteAsset(ctx context.Context, listingID, assetID int64) (mediasvc.AssetRecord, error) {
	if r.pool == nil {
		return mediasvc.AssetRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var record mediasvc.AssetRecord
	err := r.pool.QueryRow(ctx, `
DELETE FROM listing_media
WHERE id = $1 AND listing_id = $2
RETURNING id, listing_id, kind, position, object_key, created_at
`, assetID, listingID).Scan(
		&record.ID, &record.ListingID, &record.Kind, &record.Position, &record.ObjectKey, &record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return mediasvc.AssetRecord{}, mediasvc.ErrNotFound
		}
		return mediasvc.AssetRecord{}, fmt.Errorf("delete media asset: %w", err)
	}

	return record, nil
}

// ListRejectedAssetsOlderThan returns media of listings rejected before the
// cutoff, for the retention sweep.
func (r *MediaRepo) ListRejectedAssetsOlderThan(ctx context.Context, cutoff time.Time) ([]mediasvc.AssetRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT m.id, m.listing_id, m.kind, m.position, m.object_key, m.created_at
FROM listing_media m
JOIN listings l ON l.id = m.listing_id
WHERE l.status = 'rejected' AND l.updated_at < $1
ORDER BY m.created_at ASC
`, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("list rejected media: %w", err)
	}
	defer rows.Close()

	return collectAssets(rows)
}

func (r *MediaRepo) DeleteAssetByID(ctx context.Context, assetID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if assetID <= 0 {
		return nil
	}

	if _, err := r.pool.Exec(ctx, `
DELETE FROM listing_media
WHERE id = $1
`, assetID); err != nil {
		return fmt.Errorf("delete media asset by id: %w", err)
	}

	return nil
}

func collectAssets(rows pgx.Rows) ([]mediasvc.AssetRecord, error) {
	assets := make([]mediasvc.AssetRecord, 0)
	for rows.Next() {
		var record mediasvc.AssetRecord
		if err := rows.Scan(&record.ID, &record.ListingID, &record.Kind, &record.Position, &record.ObjectKey, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan media asset: %w", err)
		}
		assets = append(assets, record)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate media assets: %w", rows.Err())
	}

	return assets, nil
}
