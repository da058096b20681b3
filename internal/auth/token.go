package auth

import (
	"context"
	"sync"
	"time"

	"github.com/fivetwenty-io/sdp-client/internal/constants"
)

// TokenManager manages OAuth2 access tokens for API requests.
type TokenManager interface {
	// GetToken returns a valid access token, exchanging credentials when the
	// cached one is missing or expired.
	GetToken(ctx context.Context) (string, error)

	// RefreshToken invalidates the cached token and forces a new exchange.
	RefreshToken(ctx context.Context) error

	// SetToken seeds the manager with an externally obtained token.
	SetToken(token string, expiresAt time.Time)
}

// Token is one issued access token together with its refresh material and
// the provider's expiry bookkeeping.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresIn    int64     `json:"expires_in,omitempty"`
	APIDomain    string    `json:"api_domain,omitempty"`
	ExpiresAt    time.Time `json:"-"`
}

// Valid reports whether the token can still be presented. Tokens within the
// expiration buffer count as invalid so a request does not leave with a
// token that dies mid-flight. A zero ExpiresAt means the provider reported
// no expiry.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(constants.TokenExpirationBuffer).Before(t.ExpiresAt)
}

// TokenStore guards the single cached token.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the stored token, or nil when none is cached.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the stored token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear drops the stored token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}
