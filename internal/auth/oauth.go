package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/sdp-client/internal/constants"
	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
)

// OAuth2Config holds the material for token exchanges against a Zoho
// accounts server. Exactly one grant source is consulted per exchange:
// RefreshToken wins over GrantCode. AccessToken seeds the store with a
// pre-issued token and skips exchanges entirely until it expires.
type OAuth2Config struct {
	// TokenURL is the full token endpoint,
	// e.g. https://accounts.zoho.com/oauth/v2/token.
	TokenURL string

	ClientID     string
	ClientSecret string

	// RefreshToken is a long-lived token from a prior authorization_code
	// exchange.
	RefreshToken string

	// GrantCode is a one-time self-client grant from the Zoho developer
	// console. The refresh token minted by its exchange replaces it.
	GrantCode string

	// AccessToken is a pre-issued token used as-is.
	AccessToken string

	// Scope optionally narrows the requested scope,
	// e.g. "SDPOnDemand.requests.ALL".
	Scope string
}

// TokenURL builds the Zoho token endpoint for an accounts server base URL.
func TokenURL(accountsURL string) string {
	return strings.TrimSuffix(accountsURL, "/") + "/oauth/v2/token"
}

// ZohoTokenManager exchanges Zoho OAuth2 grants for access tokens and caches
// the result until it expires. Exchanges hold a mutex with a double-checked
// validity test so concurrent callers cannot fire duplicate requests.
type ZohoTokenManager struct {
	config     *OAuth2Config
	store      *TokenStore
	httpClient *http.Client
	mu         sync.Mutex
}

// NewZohoTokenManager creates a token manager for the given configuration.
func NewZohoTokenManager(config *OAuth2Config) *ZohoTokenManager {
	manager := &ZohoTokenManager{
		config: config,
		store:  NewTokenStore(),
		httpClient: &http.Client{
			Timeout: constants.TokenExchangeTimeout,
		},
	}

	if config.AccessToken != "" {
		manager.store.Set(&Token{
			AccessToken: config.AccessToken,
			TokenType:   "bearer",
		})
	}

	return manager
}

// NewRefreshTokenManager creates a manager that exchanges a refresh token
// against the given accounts server.
func NewRefreshTokenManager(accountsURL, clientID, clientSecret, refreshToken string) *ZohoTokenManager {
	return NewZohoTokenManager(&OAuth2Config{
		TokenURL:     TokenURL(accountsURL),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RefreshToken: refreshToken,
	})
}

// NewGrantCodeTokenManager creates a manager that redeems a one-time grant
// code against the given accounts server.
func NewGrantCodeTokenManager(accountsURL, clientID, clientSecret, grantCode string) *ZohoTokenManager {
	return NewZohoTokenManager(&OAuth2Config{
		TokenURL:     TokenURL(accountsURL),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		GrantCode:    grantCode,
	})
}

// GetToken returns a valid access token, exchanging credentials when the
// cached token is missing or expiring.
func (m *ZohoTokenManager) GetToken(ctx context.Context) (string, error) {
	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	token, err := m.requestToken(ctx)
	if err != nil {
		return "", err
	}

	m.store.Set(token)

	return token.AccessToken, nil
}

// RefreshToken drops the cached token and forces a new exchange. A failed
// exchange leaves the store empty so a rejected token is never presented
// again.
func (m *ZohoTokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.Clear()

	token, err := m.requestToken(ctx)
	if err != nil {
		return err
	}

	m.store.Set(token)

	return nil
}

// SetToken manually installs an access token.
func (m *ZohoTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	})
}

// CurrentToken returns the cached token, or nil when none is cached. Callers
// persisting tokens read the refresh token and expiry from here.
func (m *ZohoTokenManager) CurrentToken() *Token {
	return m.store.Get()
}

// tokenResponse is the Zoho token endpoint's response body. Error fields and
// token fields can appear in the same document; the endpoint reports some
// failures with HTTP 200 and only the error field set.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	APIDomain        string `json:"api_domain"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// requestToken performs one exchange against the token endpoint. Callers
// must hold m.mu.
func (m *ZohoTokenManager) requestToken(ctx context.Context) (*Token, error) {
	form := url.Values{}
	form.Set("client_id", m.config.ClientID)
	form.Set("client_secret", m.config.ClientSecret)

	switch {
	case m.config.RefreshToken != "":
		form.Set("grant_type", "refresh_token")
		form.Set("refresh_token", m.config.RefreshToken)
	case m.config.GrantCode != "":
		form.Set("grant_type", "authorization_code")
		form.Set("code", m.config.GrantCode)
	default:
		return nil, sdp.ErrNoCredentials
	}

	if m.config.Scope != "" {
		form.Set("scope", m.config.Scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting token: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	token, err := parseTokenResponse(resp.StatusCode, body)
	if err != nil {
		return nil, err
	}

	// Grant codes are single-use. Hold on to the refresh token the exchange
	// minted so the next expiry refreshes instead of replaying the code.
	if token.RefreshToken != "" {
		m.config.RefreshToken = token.RefreshToken
		m.config.GrantCode = ""
	}

	return token, nil
}

// parseTokenResponse validates the endpoint's reply. Non-2xx statuses, error
// fields inside 2xx bodies, and bodies without an access token all fail.
func parseTokenResponse(statusCode int, body []byte) (*Token, error) {
	var payload tokenResponse

	// A decode failure still yields an AuthError below; the raw body is
	// attached either way.
	_ = json.Unmarshal(body, &payload)

	if statusCode < 200 || statusCode >= 300 || payload.Error != "" {
		return nil, &sdp.AuthError{
			StatusCode:  statusCode,
			ErrorCode:   payload.Error,
			Description: payload.ErrorDescription,
			Body:        string(body),
		}
	}

	if payload.AccessToken == "" {
		return nil, &sdp.AuthError{
			StatusCode:  statusCode,
			Description: "token response carried no access_token",
			Body:        string(body),
		}
	}

	token := &Token{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		TokenType:    payload.TokenType,
		ExpiresIn:    payload.ExpiresIn,
		APIDomain:    payload.APIDomain,
	}

	ttl := constants.DefaultTokenTTL
	if payload.ExpiresIn > 0 {
		ttl = time.Duration(payload.ExpiresIn) * time.Second
	}

	token.ExpiresAt = time.Now().Add(ttl)

	return token, nil
}
