// Package sdpclient provides the main entry point for creating ServiceDesk Plus Cloud API clients
package sdpclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/sdp-client/internal/auth"
	"github.com/fivetwenty-io/sdp-client/internal/client"
	"github.com/fivetwenty-io/sdp-client/internal/constants"
	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
)

// Static errors for err113 compliance.
var (
	ErrUnknownDataCenter = errors.New("unknown data center")
)

// accountsHosts maps Zoho data center codes to their accounts endpoints.
var accountsHosts = map[string]string{
	"us": "https://accounts.zoho.com",
	"eu": "https://accounts.zoho.eu",
	"in": "https://accounts.zoho.in",
	"au": "https://accounts.zoho.com.au",
	"jp": "https://accounts.zoho.jp",
	"cn": "https://accounts.zoho.com.cn",
	"uk": "https://accounts.zoho.uk",
	"ca": "https://accounts.zohocloud.ca",
	"sa": "https://accounts.zoho.sa",
}

// New creates a new ServiceDesk Plus API client. It normalizes the portal
// URL, derives the Zoho accounts endpoint from the data center when no
// accounts URL is set, and resolves credentials from a grant file or secret
// store when none are configured directly.
func New(ctx context.Context, config *sdp.Config) (sdp.Client, error) {
	if config == nil {
		return nil, sdp.ErrConfigRequired
	}

	if config.PortalURL == "" {
		return nil, sdp.ErrPortalURLRequired
	}

	config.PortalURL = NormalizePortalURL(config.PortalURL)

	parsed, err := url.Parse(config.PortalURL)
	if err != nil {
		return nil, fmt.Errorf("parsing portal URL: %w", err)
	}

	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", sdp.ErrNoHostInURL, config.PortalURL)
	}

	if config.AccountsURL == "" {
		accountsURL, err := AccountsURLForDataCenter(config.DataCenter)
		if err != nil {
			return nil, err
		}

		config.AccountsURL = accountsURL
	}

	if err := resolveCredentials(ctx, config); err != nil {
		return nil, err
	}

	client, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client, nil
}

// NormalizePortalURL shapes a portal URL into the API base the client talks
// to: a missing scheme defaults to https, trailing slashes are trimmed, and
// the /api/v3 suffix is appended when absent. It accepts a bare host, a
// portal-qualified URL, or an already normalized base.
func NormalizePortalURL(raw string) string {
	portal := strings.TrimRight(strings.TrimSpace(raw), "/")

	if !strings.HasPrefix(portal, "http://") && !strings.HasPrefix(portal, "https://") {
		portal = "https://" + portal
	}

	if !strings.HasSuffix(portal, constants.APIBasePath) {
		portal += constants.APIBasePath
	}

	return portal
}

// AccountsURLForDataCenter returns the Zoho accounts endpoint for a
// two-letter data center code. An empty code means the US data center.
func AccountsURLForDataCenter(dataCenter string) (string, error) {
	if dataCenter == "" {
		return constants.DefaultAccountsURL, nil
	}

	accountsURL, ok := accountsHosts[strings.ToLower(dataCenter)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDataCenter, dataCenter)
	}

	return accountsURL, nil
}

// hasDirectCredentials reports whether the config carries usable credentials
// without consulting a grant file or secret store.
func hasDirectCredentials(config *sdp.Config) bool {
	if config.AccessToken != "" {
		return true
	}

	return config.ClientID != "" && config.ClientSecret != "" &&
		(config.RefreshToken != "" || config.GrantCode != "")
}

// resolveCredentials fills the direct credential fields from the grant file
// or secret store. When neither is configured the config is left untouched
// and construction fails downstream with sdp.ErrNoCredentials.
func resolveCredentials(ctx context.Context, config *sdp.Config) error {
	if hasDirectCredentials(config) {
		return nil
	}

	if config.GrantFile != "" {
		grant, err := auth.LoadGrantFile(config.GrantFile)
		if err != nil {
			return fmt.Errorf("loading grant file: %w", err)
		}

		config.ClientID = grant.ClientID
		config.ClientSecret = grant.ClientSecret
		config.GrantCode = grant.Code

		return nil
	}

	if config.SecretStore != nil {
		exchange, err := auth.ConfigFromSecretStore(ctx, config.SecretStore, config.AccountsURL)
		if err != nil {
			return fmt.Errorf("resolving credentials from secret store: %w", err)
		}

		config.ClientID = exchange.ClientID
		config.ClientSecret = exchange.ClientSecret
		config.RefreshToken = exchange.RefreshToken
		config.GrantCode = exchange.GrantCode
	}

	return nil
}

// NewWithToken creates a client that sends the given access token as-is. The
// token cannot be refreshed, so a 401 that survives the built-in retry
// surfaces to the caller.
func NewWithToken(ctx context.Context, portalURL, accessToken string) (sdp.Client, error) {
	return New(ctx, &sdp.Config{
		PortalURL:   portalURL,
		AccessToken: accessToken,
	})
}

// NewWithRefreshToken creates a client that mints access tokens with the
// refresh_token grant, the recommended mode for long-running processes.
func NewWithRefreshToken(ctx context.Context, portalURL, clientID, clientSecret, refreshToken string) (sdp.Client, error) {
	return New(ctx, &sdp.Config{
		PortalURL:    portalURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RefreshToken: refreshToken,
	})
}

// NewWithGrantFile creates a client from a self-client grant file exported
// by the Zoho developer console. The embedded grant code is single-use;
// capture the refresh token the first exchange returns for later runs.
func NewWithGrantFile(ctx context.Context, portalURL, grantPath string) (sdp.Client, error) {
	return New(ctx, &sdp.Config{
		PortalURL: portalURL,
		GrantFile: grantPath,
	})
}
