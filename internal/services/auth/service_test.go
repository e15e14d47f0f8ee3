package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/nkoval/vitrine/internal/domain/enums"
	redrepo "github.com/nkoval/vitrine/internal/repo/redis"
	authsvc "github.com/nkoval/vitrine/internal/services/auth"
)

type fakeUserStore struct {
	byEmail map[string]authsvc.UserRecord
	nextID  int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]authsvc.UserRecord{}, nextID: 1}
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (authsvc.UserRecord, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return authsvc.UserRecord{}, authsvc.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) CreateUser(_ context.Context, email, passwordHash, role string) (authsvc.UserRecord, error) {
	if _, ok := f.byEmail[email]; ok {
		return authsvc.UserRecord{}, authsvc.ErrEmailTaken
	}
	user := authsvc.UserRecord{
		ID:           f.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	f.nextID++
	f.byEmail[email] = user
	return user, nil
}

type fakeRoleClearer struct {
	cleared []string
}

func (f *fakeRoleClearer) Clear(_ context.Context, visitorID string) error {
	f.cleared = append(f.cleared, visitorID)
	return nil
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := svc.Register(ctx, "Anna@Example.com", "s3cret-pass", string(enums.RoleEscort)); err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := svc.Login(ctx, "anna@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Me.Role != string(enums.RoleEscort) {
		t.Fatalf("unexpected role: %s", res.Me.Role)
	}

	if _, err := svc.Login(ctx, "anna@example.com", "wrong-pass"); !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := svc.Register(ctx, "dup@example.com", "s3cret-pass", string(enums.RoleUser)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "dup@example.com", "other-pass1", string(enums.RoleUser)); !errors.Is(err, authsvc.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	loginRes, err := svc.Register(ctx, "rot@example.com", "s3cret-pass", string(enums.RoleUser))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	refreshRes, err := svc.Refresh(ctx, loginRes.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if refreshRes.RefreshToken == loginRes.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}

	if _, err := svc.Refresh(ctx, loginRes.RefreshToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("old refresh token should be unauthorized, got err=%v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, refreshRes.AccessToken); err != nil {
		t.Fatalf("new access token validation failed: %v", err)
	}
}

func TestLogoutInvalidatesSessionAndClearsRole(t *testing.T) {
	svc, roles, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	loginRes, err := svc.Register(ctx, "out@example.com", "s3cret-pass", string(enums.RoleUser))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken)
	if err != nil {
		t.Fatalf("validate access token before logout: %v", err)
	}

	if err := svc.Logout(ctx, claims.SID, "device-77"); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("access token should be unauthorized after logout, got err=%v", err)
	}

	if len(roles.cleared) != 1 || roles.cleared[0] != "device-77" {
		t.Fatalf("visitor role was not cleared on logout: %v", roles.cleared)
	}
}

func TestLoginBannedAccountRejected(t *testing.T) {
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mini.Close()

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	defer func() { _ = client.Close() }()

	users := newFakeUserStore()
	hash, err := authsvc.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	users.byEmail["banned@example.com"] = authsvc.UserRecord{
		ID:           9,
		Email:        "banned@example.com",
		PasswordHash: hash,
		Role:         string(enums.RoleUser),
		Banned:       true,
	}

	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(jwtManager, redrepo.NewSessionRepo(client), users, 45*24*time.Hour)

	if _, err := svc.Login(context.Background(), "banned@example.com", "s3cret-pass"); !errors.Is(err, authsvc.ErrAccountBanned) {
		t.Fatalf("expected ErrAccountBanned, got %v", err)
	}
}

func newAuthServiceForTest(t *testing.T) (*authsvc.Service, *fakeRoleClearer, func()) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	repo := redrepo.NewSessionRepo(client)
	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(jwtManager, repo, newFakeUserStore(), 45*24*time.Hour)
	roles := &fakeRoleClearer{}
	svc.AttachRoleStore(roles)

	cleanup := func() {
		_ = client.Close()
		mini.Close()
	}

	return svc, roles, cleanup
}
