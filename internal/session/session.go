package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKey is the store key the access token lives under.
const TokenKey = "token"

// Session is the explicit authentication state handed to the API client.
// The token is cached in memory and mirrored to the store on every change.
type Session struct {
	store Store

	mu    sync.RWMutex
	token string
}

// New loads any persisted token from store.
func New(store Store) (*Session, error) {
	tok, _, err := store.Get(TokenKey)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &Session{store: store, token: tok}, nil
}

// Token returns the current access token or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool { return s.Token() != "" }

// Login replaces the token and persists it.
func (s *Session) Login(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(TokenKey, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	s.token = token
	return nil
}

// Logout clears the token from memory and from the store.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(TokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	s.token = ""
	return nil
}

// ExpiresAt reads the exp claim of a JWT access token without verifying it.
// ok is false for opaque tokens or tokens without exp. It is informational only.
func (s *Session) ExpiresAt() (exp time.Time, ok bool) {
	tok := s.Token()
	if tok == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	_, _, err := jwt.NewParser(jwt.WithoutClaimsValidation()).ParseUnverified(tok, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
