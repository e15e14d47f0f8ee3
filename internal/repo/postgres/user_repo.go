package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	authsvc "github.com/nkoval/vitrine/internal/services/auth"
	membershipsvc "github.com/nkoval/vitrine/internal/services/membership"
	userssvc "github.com/nkoval/vitrine/internal/services/users"
)

const uniqueViolationCode = "23505"

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (authsvc.UserRecord, error) {
	if r.pool == nil {
		return authsvc.UserRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var record authsvc.UserRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, email, password_hash, role, is_banned
FROM users
WHERE email = $1
`, strings.ToLower(email)).Scan(&record.ID, &record.Email, &record.PasswordHash, &record.Role, &record.Banned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authsvc.UserRecord{}, authsvc.ErrUserNotFound
		}
		return authsvc.UserRecord{}, fmt.Errorf("get user by email: %w", err)
	}

	return record, nil
}

func (r *UserRepo) CreateUser(ctx context.Context, email, passwordHash, role string) (authsvc.UserRecord, error) {
	if r.pool == nil {
		return authsvc.UserRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var record authsvc.UserRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (email, password_hash, role, is_banned, created_at, updated_at)
VALUES ($1, $2, $3, FALSE, NOW(), NOW())
RETURNING id, email, password_hash, role, is_banned
`, strings.ToLower(email), passwordHash, role).Scan(&record.ID, &record.Email, &record.PasswordHash, &record.Role, &record.Banned)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return authsvc.UserRecord{}, authsvc.ErrEmailTaken
		}
		return authsvc.UserRecord{}, fmt.Errorf("insert user: %w", err)
	}

	return record, nil
}

func (r *UserRepo) GetAccount(ctx context.Context, userID int64) (userssvc.AccountRecord, error) {
	if r.pool == nil {
		return userssvc.AccountRecord{}, fmt.Errorf("postgres pool is nil")
	}

	return r.scanAccount(r.pool.QueryRow(ctx, `
SELECT id, email, role, is_banned, COALESCE(ban_reason, ''), vip_expires_at, created_at
FROM users
WHERE id = $1
`, userID))
}

func (r *UserRepo) GetAccountByEmail(ctx context.Context, email string) (userssvc.AccountRecord, error) {
	if r.pool == nil {
		return userssvc.AccountRecord{}, fmt.Errorf("postgres pool is nil")
	}

	return r.scanAccount(r.pool.QueryRow(ctx, `
SELECT id, email, role, is_banned, COALESCE(ban_reason, ''), vip_expires_at, created_at
FROM users
WHERE email = $1
`, strings.ToLower(email)))
}

func (r *UserRepo) SetBan(ctx context.Context, userID int64, banned bool, reason string, updatedBy int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET is_banned = $2,
    ban_reason = NULLIF($3, ''),
    banned_by = NULLIF($4, 0),
    updated_at = NOW()
WHERE id = $1
`, userID, banned, reason, updatedBy)
	if err != nil {
		return fmt.Errorf("update ban state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return userssvc.ErrNotFound
	}

	return nil
}

func (r *UserRepo) SetVIPUntil(ctx context.Context, userID int64, until *time.Time) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET vip_expires_at = $2, updated_at = NOW()
WHERE id = $1
`, userID, until)
	if err != nil {
		return fmt.Errorf("update vip expiry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return userssvc.ErrNotFound
	}

	return nil
}

func (r *UserRepo) CountStats(ctx context.Context, now time.Time) (userssvc.Stats, error) {
	if r.pool == nil {
		return userssvc.Stats{}, fmt.Errorf("postgres pool is nil")
	}

	var stats userssvc.Stats
	err := r.pool.QueryRow(ctx, `
SELECT
	(SELECT COUNT(*) FROM users),
	(SELECT COUNT(*) FROM users WHERE role = 'ESCORT'),
	(SELECT COUNT(*) FROM users WHERE vip_expires_at > $1),
	(SELECT COUNT(*) FROM listings WHERE status = 'active'),
	(SELECT COUNT(*) FROM listings WHERE status = 'pending'),
	(SELECT COUNT(*) FROM users WHERE is_banned)
`, now.UTC()).Scan(
		&stats.TotalUsers,
		&stats.TotalEscorts,
		&stats.ActiveVIPs,
		&stats.ActiveListings,
		&stats.PendingListings,
		&stats.BannedUsers,
	)
	if err != nil {
		return userssvc.Stats{}, fmt.Errorf("count dashboard stats: %w", err)
	}

	return stats, nil
}

func (r *UserRepo) GetMembership(ctx context.Context, userID int64) (membershipsvc.MembershipRecord, error) {
	if r.pool == nil {
		return membershipsvc.MembershipRecord{}, fmt.Errorf("postgres pool is nil")
	}

	record := membershipsvc.MembershipRecord{UserID: userID}
	err := r.pool.QueryRow(ctx, `
SELECT vip_expires_at
FROM users
WHERE id = $1
`, userID).Scan(&record.VIPExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Unknown accounts carry no membership rather than failing the view.
			return membershipsvc.MembershipRecord{UserID: userID}, nil
		}
		return membershipsvc.MembershipRecord{}, fmt.Errorf("get membership: %w", err)
	}

	return record, nil
}

// ClearExpiredVIP nulls out expiry timestamps that are already in the past so
// dashboard counts stay cheap.
func (r *UserRepo) ClearExpiredVIP(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET vip_expires_at = NULL, updated_at = NOW()
WHERE vip_expires_at IS NOT NULL AND vip_expires_at < $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("clear expired vip: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *UserRepo) scanAccount(row pgx.Row) (userssvc.AccountRecord, error) {
	var record userssvc.AccountRecord
	err := row.Scan(
		&record.ID,
		&record.Email,
		&record.Role,
		&record.Banned,
		&record.BanReason,
		&record.VIPExpiresAt,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return userssvc.AccountRecord{}, userssvc.ErrNotFound
		}
		return userssvc.AccountRecord{}, fmt.Errorf("scan account: %w", err)
	}

	return record, nil
}
