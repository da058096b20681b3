package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister writes refreshed token material back to wherever the CLI
// keeps its configuration, keyed by portal.
type ConfigPersister interface {
	UpdatePortalToken(portal, accessToken string, expiresAt time.Time, refreshToken string) error
}

// ConfigTokenManager wraps a ZohoTokenManager and persists tokens through a
// ConfigPersister whenever an exchange mints a new one, so refreshed tokens
// survive process exit.
type ConfigTokenManager struct {
	manager    *ZohoTokenManager
	persister  ConfigPersister
	portal     string
	mu         sync.Mutex
	lastToken  string
	lastExpiry time.Time
}

// NewConfigTokenManager creates a config-persisting token manager. An
// initial token, when present, seeds the underlying manager so the first
// call does not exchange.
func NewConfigTokenManager(config *OAuth2Config, persister ConfigPersister, portal string, initialToken string, initialExpiry time.Time) *ConfigTokenManager {
	manager := NewZohoTokenManager(config)

	if initialToken != "" {
		manager.SetToken(initialToken, initialExpiry)
	}

	return &ConfigTokenManager{
		manager:    manager,
		persister:  persister,
		portal:     portal,
		lastToken:  initialToken,
		lastExpiry: initialExpiry,
	}
}

// GetToken returns a valid access token, refreshing and persisting when the
// cached one has expired.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.manager.GetToken(ctx)
	if err != nil {
		return "", err
	}

	m.persistIfChanged()

	return token, nil
}

// RefreshToken forces a refresh and persists the result.
func (m *ConfigTokenManager) RefreshToken(ctx context.Context) error {
	if err := m.manager.RefreshToken(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.manager.CurrentToken()
	if current == nil {
		return nil
	}

	if err := m.persistToken(current); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to persist refreshed token: %v\n", err)
	}

	m.lastToken = current.AccessToken
	m.lastExpiry = current.ExpiresAt

	return nil
}

// SetToken manually installs an access token without persisting it.
func (m *ConfigTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.manager.SetToken(token, expiresAt)
	m.lastToken = token
	m.lastExpiry = expiresAt
}

// IsTokenExpiringSoon reports whether the cached token expires within the
// given window. A missing token counts as expiring.
func (m *ConfigTokenManager) IsTokenExpiringSoon(within time.Duration) bool {
	token := m.manager.CurrentToken()
	if token == nil {
		return true
	}

	return time.Now().Add(within).After(token.ExpiresAt)
}

// GetTokenExpiry returns the cached token's expiry, or the zero time when no
// token is cached.
func (m *ConfigTokenManager) GetTokenExpiry() time.Time {
	token := m.manager.CurrentToken()
	if token == nil {
		return time.Time{}
	}

	return token.ExpiresAt
}

// persistIfChanged persists asynchronously when the cached token differs
// from the last one written, swallowing persistence failures with a warning
// so a config problem never fails a request.
func (m *ConfigTokenManager) persistIfChanged() {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.manager.CurrentToken()
	if current == nil {
		return
	}

	if current.AccessToken == m.lastToken && current.ExpiresAt.Equal(m.lastExpiry) {
		return
	}

	m.lastToken = current.AccessToken
	m.lastExpiry = current.ExpiresAt

	go func(token *Token) {
		if err := m.persistToken(token); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to persist refreshed token: %v\n", err)
		}
	}(current)
}

// persistToken writes the token through the persister.
func (m *ConfigTokenManager) persistToken(token *Token) error {
	if m.persister == nil {
		return ErrNoConfigPersister
	}

	err := m.persister.UpdatePortalToken(m.portal, token.AccessToken, token.ExpiresAt, token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to update portal token: %w", err)
	}

	return nil
}
