package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// tokenPrefixLen is how many leading characters of a raw token are stored in
// clear for candidate lookup before the bcrypt compare.
const tokenPrefixLen = 8

// Service provides identity operations: anonymous sign-in, Telegram WebApp
// sign-in and session-token authentication.
type Service struct {
	userRepo   UserRepository
	verifier   *TelegramVerifier
	bcryptCost int
}

// NewService creates a new auth Service. verifier may be nil when Telegram
// sign-in is not configured.
func NewService(userRepo UserRepository, verifier *TelegramVerifier, bcryptCost int) *Service {
	return &Service{
		userRepo:   userRepo,
		verifier:   verifier,
		bcryptCost: bcryptCost,
	}
}

// generateToken creates a new session token. Returns the raw token, its
// prefix and the bcrypt hash. The raw token is: 32 random bytes -> base64url
// -> prepend "vs_".
func (s *Service) generateToken() (rawToken, prefix, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", "", fmt.Errorf("generating random bytes: %w", err)
	}

	rawToken = "vs_" + base64.RawURLEncoding.EncodeToString(b)
	prefix = rawToken[:tokenPrefixLen]

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(rawToken), s.bcryptCost)
	if err != nil {
		return "", "", "", fmt.Errorf("hashing token: %w", err)
	}
	hash = string(hashBytes)

	return rawToken, prefix, hash, nil
}

// SignInAnonymous creates an ephemeral per-session identity and returns it
// with its raw session token (only displayed once).
func (s *Service) SignInAnonymous(ctx context.Context) (*Identity, string, error) {
	rawToken, prefix, hash, err := s.generateToken()
	if err != nil {
		return nil, "", err
	}

	user := &User{
		ID:          uuid.New().String(),
		DisplayName: "Гость",
		Anonymous:   true,
		TokenPrefix: prefix,
		TokenHash:   hash,
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, "", fmt.Errorf("creating anonymous user: %w", err)
	}

	return identityFor(user), rawToken, nil
}

// SignInTelegram verifies Telegram WebApp init data, upserts the user and
// issues a fresh session token.
func (s *Service) SignInTelegram(ctx context.Context, initData string) (*Identity, string, error) {
	if s.verifier == nil {
		return nil, "", ErrTelegramNotConfigured
	}

	tgUser, err := s.verifier.Verify(initData)
	if err != nil {
		return nil, "", err
	}

	rawToken, prefix, hash, err := s.generateToken()
	if err != nil {
		return nil, "", err
	}

	user := &User{
		ID:          fmt.Sprintf("%d", tgUser.ID),
		DisplayName: tgUser.DisplayName(),
		Username:    tgUser.Username,
		Anonymous:   false,
		TokenPrefix: prefix,
		TokenHash:   hash,
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, "", fmt.Errorf("upserting telegram user: %w", err)
	}

	return identityFor(user), rawToken, nil
}

// Authenticate resolves a raw session token to an Identity. It extracts the
// prefix, looks up candidates, and bcrypt-compares each one.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*Identity, error) {
	if len(rawToken) < tokenPrefixLen {
		return nil, ErrInvalidToken
	}

	prefix := rawToken[:tokenPrefixLen]

	candidates, err := s.userRepo.FindByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("finding users by prefix: %w", err)
	}

	for _, u := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(u.TokenHash), []byte(rawToken)) == nil {
			return identityFor(&u), nil
		}
	}

	return nil, ErrInvalidToken
}

// ErrTelegramNotConfigured is returned when Telegram sign-in is attempted
// without a configured bot token.
var ErrTelegramNotConfigured = errors.New("telegram sign-in is not configured")

func identityFor(u *User) *Identity {
	return &Identity{
		UserID:      u.ID,
		DisplayName: u.DisplayName,
		Username:    u.Username,
		Anonymous:   u.Anonymous,
	}
}
