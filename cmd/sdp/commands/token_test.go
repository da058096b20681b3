//nolint:testpackage // Need access to internal helpers
package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewTokenCommand(t *testing.T) {
	cmd := NewTokenCommand()
	assert.Equal(t, "token", cmd.Use)
	assert.Equal(t, "Manage authentication tokens", cmd.Short)

	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 2)

	var commandNames []string
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "status")
	assert.Contains(t, commandNames, "refresh")
}

func TestTokenStatusCommand(t *testing.T) {
	cmd := newTokenStatusCommand()
	assert.Equal(t, "status", cmd.Use)
	assert.Equal(t, "Show token status and expiration", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	assert.NotNil(t, cmd.Flags().Lookup("portal"))
	assert.NotNil(t, cmd.Flags().Lookup("all"))
}

func TestTokenRefreshCommand(t *testing.T) {
	cmd := newTokenRefreshCommand()
	assert.Equal(t, "refresh", cmd.Use)
	assert.Equal(t, "Manually refresh the access token", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	assert.NotNil(t, cmd.Flags().Lookup("portal"))
}

func TestBuildTokenStatusDataNoToken(t *testing.T) {
	portalConfig := &PortalConfig{URL: "https://example.com/app/itdesk"}

	tokenStatus := buildTokenStatusData(portalConfig, "itdesk")

	assert.Equal(t, "itdesk", tokenStatus["portal"])
	assert.Equal(t, "https://example.com/app/itdesk", tokenStatus["url"])
	assert.Equal(t, "No token", tokenStatus["status"])
	assert.Equal(t, false, tokenStatus["authenticated"])
	assert.NotContains(t, tokenStatus, "expiry_status")
}

func TestBuildTokenStatusDataWithToken(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	refreshed := time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC)
	portalConfig := &PortalConfig{
		URL:            "https://example.com/app/itdesk",
		Token:          "access-token",
		TokenExpiresAt: &expiry,
		RefreshToken:   "refresh-token",
		LastRefreshed:  &refreshed,
	}

	tokenStatus := buildTokenStatusData(portalConfig, "itdesk")

	assert.Equal(t, "Token present", tokenStatus["status"])
	assert.Equal(t, true, tokenStatus["authenticated"])
	assert.Equal(t, "Valid", tokenStatus["expiry_status"])
	assert.Equal(t, true, tokenStatus["refresh_token_available"])
	assert.Equal(t, "2026-02-28T09:00:00Z", tokenStatus["last_refreshed"])
	assert.Contains(t, tokenStatus, "expires_at")
	assert.Contains(t, tokenStatus, "time_until_expiry")
}

func TestBuildTokenStatusDataUnknownExpiry(t *testing.T) {
	portalConfig := &PortalConfig{
		URL:   "https://example.com/app/itdesk",
		Token: "access-token",
	}

	tokenStatus := buildTokenStatusData(portalConfig, "itdesk")

	assert.Equal(t, "Unknown expiration", tokenStatus["expiry_status"])
	assert.Equal(t, false, tokenStatus["refresh_token_available"])
}

func TestAddExpirationInfo(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	tokenStatus := map[string]interface{}{}
	addExpirationInfo(tokenStatus, &expired)
	assert.Equal(t, "Expired", tokenStatus["expiry_status"])

	soon := time.Now().Add(2 * time.Minute)
	tokenStatus = map[string]interface{}{}
	addExpirationInfo(tokenStatus, &soon)
	assert.Equal(t, "Expires soon", tokenStatus["expiry_status"])

	valid := time.Now().Add(time.Hour)
	tokenStatus = map[string]interface{}{}
	addExpirationInfo(tokenStatus, &valid)
	assert.Equal(t, "Valid", tokenStatus["expiry_status"])
	assert.Contains(t, tokenStatus, "expires_at")
	assert.Contains(t, tokenStatus, "time_until_expiry")
}
