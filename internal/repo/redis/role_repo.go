package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nkoval/vitrine/internal/domain/enums"
	rolesvc "github.com/nkoval/vitrine/internal/services/roles"
)

const rolePrefix = "visitor_role:"

// RoleRepo persists the audience role a visitor picked, together with the
// selection timestamp. The key TTL matches the freshness window, so a stale
// role disappears even if the timestamp check is never reached.
type RoleRepo struct {
	client *goredis.Client
}

func NewRoleRepo(client *goredis.Client) *RoleRepo {
	return &RoleRepo{client: client}
}

func (r *RoleRepo) Save(ctx context.Context, visitorID string, record rolesvc.RoleRecord, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(visitorID) == "" || record.Role == "" {
		return rolesvc.ErrValidation
	}
	if ttl <= 0 {
		return fmt.Errorf("invalid role ttl")
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, roleKey(visitorID), map[string]interface{}{
		"role":        string(record.Role),
		"selected_at": record.SelectedAt.Unix(),
	})
	pipe.Expire(ctx, roleKey(visitorID), ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save visitor role: %w", err)
	}

	return nil
}

func (r *RoleRepo) Load(ctx context.Context, visitorID string) (rolesvc.RoleRecord, error) {
	if r.client == nil {
		return rolesvc.RoleRecord{}, fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(visitorID) == "" {
		return rolesvc.RoleRecord{}, rolesvc.ErrValidation
	}

	values, err := r.client.HGetAll(ctx, roleKey(visitorID)).Result()
	if err != nil {
		return rolesvc.RoleRecord{}, fmt.Errorf("load visitor role: %w", err)
	}
	if len(values) == 0 {
		return rolesvc.RoleRecord{}, rolesvc.ErrRoleNotFound
	}

	selectedUnix, err := strconv.ParseInt(values["selected_at"], 10, 64)
	if err != nil {
		return rolesvc.RoleRecord{}, fmt.Errorf("parse role selected_at: %w", err)
	}

	return rolesvc.RoleRecord{
		Role:       enums.StoredRole(values["role"]),
		SelectedAt: time.Unix(selectedUnix, 0).UTC(),
	}, nil
}

func (r *RoleRepo) Delete(ctx context.Context, visitorID string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(visitorID) == "" {
		return nil
	}

	if err := r.client.Del(ctx, roleKey(visitorID)).Err(); err != nil {
		return fmt.Errorf("delete visitor role: %w", err)
	}

	return nil
}

func roleKey(visitorID string) string {
	return rolePrefix + visitorID
}
