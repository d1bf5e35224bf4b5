package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/dkralj/banter/internal/domain"
	"github.com/dkralj/banter/internal/repository"
	"github.com/dkralj/banter/pkg/validator"
)

var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrInvalidCreds  = errors.New("invalid username or password")
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrUserNotFound  = errors.New("user not found")
	ErrForbidden     = errors.New("user is banned")
)

// AuthService owns credentials and login sessions. Tokens handed to clients
// are opaque random values; only their SHA-256 hash is persisted, and every
// resolution goes back to the sessions table so a ban or logout invalidates
// the token immediately.
type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	lifetime time.Duration
}

func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, lifetime time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		lifetime: lifetime,
	}
}

type LoginResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, username, password string, isAdmin bool) (*domain.User, error) {
	if errs := validator.ValidateRegister(username, password); errs.HasErrors() {
		return nil, errs
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password, ip, userAgent string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCreds
	}
	if !verifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCreds
	}
	if user.IsBanned {
		return nil, ErrForbidden
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		TokenHash: hashToken(token),
		UserID:    user.ID,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(s.lifetime),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &LoginResult{User: user, Token: token}, nil
}

// ResolveToken maps a bearer token to the identity snapshot used for the
// lifetime of a connection. Expired sessions and banned users never resolve.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*domain.Identity, error) {
	session, err := s.sessions.GetByTokenHash(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	if session == nil || session.Expired(time.Now()) {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.IsBanned {
		return nil, ErrForbidden
	}

	if err := s.users.TouchLastSeen(ctx, user.ID); err != nil {
		// Presence bookkeeping only; the login itself stands.
		return identityOf(user), nil
	}

	return identityOf(user), nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteByTokenHash(ctx, hashToken(token))
}

// RevokeUserSessions deletes every session of a user, so no stored token of
// theirs can authenticate again. Called on ban.
func (s *AuthService) RevokeUserSessions(ctx context.Context, userID int64) error {
	return s.sessions.DeleteByUser(ctx, userID)
}

func (s *AuthService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}

func identityOf(user *domain.User) *domain.Identity {
	return &domain.Identity{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		IsBanned: user.IsBanned,
	}
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)

	return fmt.Sprintf("%s:%s",
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

func verifyPassword(password, encoded string) bool {
	saltB64, hashB64, ok := strings.Cut(encoded, ":")
	if !ok {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(saltB64)
	if err != nil {
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(hashB64)
	if err != nil {
		return false
	}

	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return subtle.ConstantTimeCompare(hash, expectedHash) == 1
}
