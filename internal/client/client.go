// Package client is the concrete sdp.Client implementation: it wires the
// token manager, the low-level HTTP client, and the per-resource clients.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/sdp-client/internal/auth"
	"github.com/fivetwenty-io/sdp-client/internal/constants"
	"github.com/fivetwenty-io/sdp-client/internal/http"
	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
)

// Client implements the sdp.Client interface.
// Static errors for err113 compliance.
var (
	ErrNoTokenManagerConfigured = errors.New("no token manager configured")
)

type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       sdp.Logger

	// Resource clients
	requests    sdp.RequestsClient
	technicians sdp.TechniciansClient
}

// createTokenManager creates the appropriate token manager for the
// configured credentials. Precedence: static access token, refresh token,
// one-time grant code.
func createTokenManager(config *sdp.Config) (auth.TokenManager, error) {
	if config.AccessToken != "" {
		return &staticTokenManager{token: config.AccessToken}, nil
	}

	if config.ClientID != "" && config.ClientSecret != "" &&
		(config.RefreshToken != "" || config.GrantCode != "") {
		return auth.NewZohoTokenManager(&auth.OAuth2Config{
			TokenURL:     auth.TokenURL(accountsURL(config)),
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RefreshToken: config.RefreshToken,
			GrantCode:    config.GrantCode,
			Scope:        config.Scope,
		}), nil
	}

	return nil, sdp.ErrNoCredentials
}

// accountsURL returns the configured Zoho accounts endpoint or the US
// default. Data-center derivation happens in pkg/sdpclient before the config
// reaches this layer.
func accountsURL(config *sdp.Config) string {
	if config.AccountsURL != "" {
		return config.AccountsURL
	}

	return constants.DefaultAccountsURL
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *sdp.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if len(config.ExtraHeaders) > 0 {
		httpOpts = append(httpOpts, http.WithExtraHeaders(config.ExtraHeaders))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a ServiceDesk Plus API client. config.PortalURL must already
// be the normalized API base (pkg/sdpclient.New handles normalization and
// data-center derivation for callers).
func New(config *sdp.Config) (*Client, error) {
	if config == nil {
		return nil, sdp.ErrConfigRequired
	}

	if config.PortalURL == "" {
		return nil, sdp.ErrPortalURLRequired
	}

	tokenManager, err := createTokenManager(config)
	if err != nil {
		return nil, err
	}

	return NewWithTokenManager(config, tokenManager)
}

// NewWithTokenManager creates a client around an externally constructed
// token manager, e.g. one that persists refreshed tokens to a config file.
func NewWithTokenManager(config *sdp.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, sdp.ErrConfigRequired
	}

	if config.PortalURL == "" {
		return nil, sdp.ErrPortalURLRequired
	}

	httpClient := http.NewClient(config.PortalURL, tokenManager, createHTTPClientOptions(config)...)

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      config.PortalURL,
		logger:       config.Logger,
	}

	client.initializeResourceClients()

	return client, nil
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// GetToken returns the current access token from the token manager.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	if c.tokenManager == nil {
		return "", ErrNoTokenManagerConfigured
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}

	return token, nil
}

// Resource client accessors

// Requests implements sdp.Client.Requests.
func (c *Client) Requests() sdp.RequestsClient {
	return c.requests
}

// Technicians implements sdp.Client.Technicians.
func (c *Client) Technicians() sdp.TechniciansClient {
	return c.technicians
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.requests = NewRequestsClient(c.httpClient)
	c.technicians = NewTechniciansClient(c.httpClient)
}

// staticTokenManager provides a static token.
type staticTokenManager struct {
	token string
}

func (m *staticTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, nil
}

func (m *staticTokenManager) RefreshToken(ctx context.Context) error {
	return sdp.ErrStaticTokenCannotRefresh
}

func (m *staticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.token = token
}
