package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	MinRefreshTTL = 24 * time.Hour
	MaxRefreshTTL = 90 * 24 * time.Hour
)

type SessionStore interface {
	Create(ctx context.Context, session SessionRecord, refreshToken string) error
	GetSession(ctx context.Context, sid string) (SessionRecord, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (SessionRecord, error)
	RotateRefresh(ctx context.Context, sid, oldRefreshToken, newRefreshToken string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, sid string) error
	DeleteAllForUser(ctx context.Context, userID int64) error
}

// UserStore is the account lookup the login flow needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (UserRecord, error)
	CreateUser(ctx context.Context, email, passwordHash, role string) (UserRecord, error)
}

// RoleClearer lets logout drop the visitor's persisted audience role so a
// returning guest on a shared device is re-prompted instead of inheriting the
// previous user's selection.
type RoleClearer interface {
	Clear(ctx context.Context, visitorID string) error
}

var ErrUserNotFound = errors.New("user not found")

type UserRecord struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	Banned       bool
}

type Service struct {
	jwt        *JWTManager
	sessions   SessionStore
	users      UserStore
	roles      RoleClearer
	refreshTTL time.Duration
	now        func() time.Time
}

func NewService(jwtManager *JWTManager, sessions SessionStore, users UserStore, refreshTTL time.Duration) *Service {
	if refreshTTL < MinRefreshTTL {
		refreshTTL = MinRefreshTTL
	}
	if refreshTTL > MaxRefreshTTL {
		refreshTTL = MaxRefreshTTL
	}

	return &Service{
		jwt:        jwtManager,
		sessions:   sessions,
		users:      users,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// AttachRoleStore wires the visitor role store so Logout can clear it.
func (s *Service) AttachRoleStore(roles RoleClearer) {
	s.roles = roles
}

func (s *Service) Register(ctx context.Context, email, password, role string) (AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return AuthResult{}, fmt.Errorf("email is required: %w", ErrInvalidInput)
	}
	if s.users == nil {
		return AuthResult{}, fmt.Errorf("user store is nil")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.CreateUser(ctx, email, hash, role)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	return s.issueForUser(ctx, user)
}

func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidInput
	}
	if s.users == nil {
		return AuthResult{}, fmt.Errorf("user store is nil")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("get user by email: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}
	if user.Banned {
		return AuthResult{}, ErrAccountBanned
	}

	return s.issueForUser(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return AuthResult{}, ErrInvalidInput
	}

	session, err := s.sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("get refresh token session: %w", err)
	}
	if s.now().After(session.ExpiresAt) {
		return AuthResult{}, ErrUnauthorized
	}

	newRefreshToken, err := NewRefreshToken()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate refresh token: %w", err)
	}

	newExpiresAt := s.now().Add(s.refreshTTL)
	if err := s.sessions.RotateRefresh(ctx, session.SID, refreshToken, newRefreshToken, newExpiresAt); err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(session.UserID, session.SID, session.Role)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		RefreshToken:  newRefreshToken,
		AccessExpires: accessExpires,
		Me: Me{
			ID:   session.UserID,
			Role: session.Role,
		},
	}, nil
}

// Logout deletes the session and, when a visitor id is supplied, clears the
// persisted audience role selected on that device.
func (s *Service) Logout(ctx context.Context, sid, visitorID string) error {
	if strings.TrimSpace(sid) == "" {
		return ErrInvalidInput
	}
	if err := s.sessions.DeleteSession(ctx, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if s.roles != nil && strings.TrimSpace(visitorID) != "" {
		if err := s.roles.Clear(ctx, visitorID); err != nil {
			return fmt.Errorf("clear visitor role: %w", err)
		}
	}

	return nil
}

func (s *Service) LogoutAll(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrInvalidInput
	}
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("delete all sessions: %w", err)
	}
	return nil
}

func (s *Service) ValidateAccessToken(ctx context.Context, accessToken string) (AccessClaims, error) {
	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		return AccessClaims{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return AccessClaims{}, ErrUnauthorized
		}
		return AccessClaims{}, fmt.Errorf("get session: %w", err)
	}

	if session.UserID != claims.UserID || session.Role != claims.Role {
		return AccessClaims{}, ErrUnauthorized
	}
	if s.now().After(session.ExpiresAt) {
		return AccessClaims{}, ErrUnauthorized
	}

	return claims, nil
}

func (s *Service) issueForUser(ctx context.Context, user UserRecord) (AuthResult, error) {
	sessionID, err := NewSessionID()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate session id: %w", err)
	}
	refreshToken, err := NewRefreshToken()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate refresh token: %w", err)
	}

	sessionExpiresAt := s.now().Add(s.refreshTTL)
	session := SessionRecord{
		SID:       sessionID,
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: sessionExpiresAt,
	}
	if err := s.sessions.Create(ctx, session, refreshToken); err != nil {
		return AuthResult{}, fmt.Errorf("create session: %w", err)
	}

	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(user.ID, sessionID, user.Role)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		AccessExpires: accessExpires,
		Me: Me{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
		},
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
