package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkoval/vitrine/internal/domain/enums"
	listingssvc "github.com/nkoval/vitrine/internal/services/listings"
)

type ListingRepo struct {
	pool *pgxpool.Pool
}

func NewListingRepo(pool *pgxpool.Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

const listingColumns = `
id, owner_id, title, description, city, price_per_hour, contact_phone,
status, COALESCE(reject_reason, ''), created_at, updated_at`

func (r *ListingRepo) CreateListing(ctx context.Context, rec listingssvc.ListingRecord) (listingssvc.ListingRecord, error) {
	if r.pool == nil {
		return listingssvc.ListingRecord{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO listings (owner_id, title, description, city, price_per_hour, contact_phone, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
RETURNING`+listingColumns,
		rec.OwnerID, rec.Title, rec.Description, rec.City, rec.PricePerHour, rec.ContactPhone, rec.Status,
	)

	created, err := scanListing(row)
	if err != nil {
		return listingssvc.ListingRecord{}, fmt.Errorf("insert listing: %w", err)
	}

	return created, nil
}

func (r *ListingRepo) GetListing(ctx context.Context, id int64) (listingssvc.ListingRecord, error) {
	if r.pool == nil {
		return listingssvc.ListingRecord{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT`+listingColumns+`
FROM listings
WHERE id = $1
`, id)

	rec, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return listingssvc.ListingRecord{}, listingssvc.ErrNotFound
		}
		return listingssvc.ListingRecord{}, fmt.Errorf("get listing: %w", err)
	}

	return rec, nil
}

func (r *ListingRepo) UpdateListing(ctx context.Context, rec listingssvc.ListingRecord) (listingssvc.ListingRecord, error) {
	if r.pool == nil {
		return listingssvc.ListingRecord{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
UPDATE listings
SET title = $2,
    description = $3,
    city = $4,
    price_per_hour = $5,
    contact_phone = $6,
    status = $7,
    reject_reason = NULLIF($8, ''),
    updated_at = NOW()
WHERE id = $1
RETURNING`+listingColumns,
		rec.ID, rec.Title, rec.Description, rec.City, rec.PricePerHour, rec.ContactPhone, rec.Status, rec.RejectReason,
	)

	updated, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return listingssvc.ListingRecord{}, listingssvc.ErrNotFound
		}
		return listingssvc.ListingRecord{}, fmt.Errorf("update listing: %w", err)
	}

	return updated, nil
}

func (r *ListingRepo) ListActive(ctx context.Context, city string, limit, offset int) ([]listingssvc.ListingRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+listingColumns+`
FROM listings
WHERE status = 'active' AND ($1 = '' OR city = $1)
ORDER BY updated_at DESC, id DESC
LIMIT $2 OFFSET $3
`, city, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list active listings: %w", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

func (r *ListingRepo) ListByOwner(ctx context.Context, ownerID int64) ([]listingssvc.ListingRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+listingColumns+`
FROM listings
WHERE owner_id = $1
ORDER BY created_at DESC, id DESC
`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owner listings: %w", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

func (r *ListingRepo) SetStatus(ctx context.Context, id int64, status enums.ListingStatus, reason string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE listings
SET status = $2, reject_reason = NULLIF($3, ''), updated_at = NOW()
WHERE id = $1
`, id, status, reason)
	if err != nil {
		return fmt.Errorf("set listing status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return listingssvc.ErrNotFound
	}

	return nil
}

func scanListing(row pgx.Row) (listingssvc.ListingRecord, error) {
	var rec listingssvc.ListingRecord
	err := row.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.Title,
		&rec.Description,
		&rec.City,
		&rec.PricePerHour,
		&rec.ContactPhone,
		&rec.Status,
		&rec.RejectReason,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return listingssvc.ListingRecord{}, err
	}
	return rec, nil
}

func collectListings(rows pgx.Rows) ([]listingssvc.ListingRecord, error) {
	out := make([]listingssvc.ListingRecord, 0)
	for rows.Next() {
		rec, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate listings: %w", rows.Err())
	}

	return out, nil
}
