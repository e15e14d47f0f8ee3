package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkoval/vitrine/internal/domain/enums"
	moderationsvc "github.com/nkoval/vitrine/internal/services/moderation"
)

type ModerationRepo struct {
	pool *pgxpool.Pool
}

func NewModerationRepo(pool *pgxpool.Pool) *ModerationRepo {
	return &ModerationRepo{pool: pool}
}

const pendingColumns = `
id, owner_id, title, description, city, price_per_hour, created_at`

func (r *ModerationRepo) NextPending(ctx context.Context) (moderationsvc.PendingListing, error) {
	if r.pool == nil {
		return moderationsvc.PendingListing{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT`+pendingColumns+`
FROM listings
WHERE status = 'pending'
ORDER BY updated_at ASC, id ASC
LIMIT 1
`)

	rec, err := scanPending(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return moderationsvc.PendingListing{}, moderationsvc.ErrQueueEmpty
		}
		return moderationsvc.PendingListing{}, fmt.Errorf("next pending listing: %w", err)
	}

	return rec, nil
}

func (r *ModerationRepo) CountPending(ctx context.Context) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM listings
WHERE status = 'pending'
`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending listings: %w", err)
	}

	return count, nil
}

func (r *ModerationRepo) GetPending(ctx context.Context, listingID int64) (moderationsvc.PendingListing, error) {
	if r.pool == nil {
		return moderationsvc.PendingListing{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT`+pendingColumns+`
FROM listings
WHERE id = $1 AND status = 'pending'
`, listingID)

	rec, err := scanPending(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return moderationsvc.PendingListing{}, moderationsvc.ErrNotFound
		}
		return moderationsvc.PendingListing{}, fmt.Errorf("get pending listing: %w", err)
	}

	return rec, nil
}

func (r *ModerationRepo) SetListingStatus(ctx context.Context, listingID int64, status enums.ListingStatus, reason string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE listings
SET status = $2, reject_reason = NULLIF($3, ''), updated_at = NOW()
WHERE id = $1
`, listingID, status, reason)
	if err != nil {
		return fmt.Errorf("set listing status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return moderationsvc.ErrNotFound
	}

	return nil
}

func (r *ModerationRepo) RecordDecision(ctx context.Context, rec moderationsvc.DecisionRecord) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO moderation_decisions (listing_id, moderator_id, decision, reason_code, reason_text, decided_at)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
`, rec.ListingID, rec.ModeratorID, rec.Decision, rec.ReasonCode, rec.ReasonText, rec.DecidedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert moderation decision: %w", err)
	}

	return nil
}

func scanPending(row pgx.Row) (moderationsvc.PendingListing, error) {
	var rec moderationsvc.PendingListing
	err := row.Scan(
		&rec.ListingID,
		&rec.OwnerID,
		&rec.Title,
		&rec.Description,
		&rec.City,
		&rec.PricePerHour,
		&rec.CreatedAt,
	)
	if err != nil {
		return moderationsvc.PendingListing{}, err
	}
	return rec, nil
}
