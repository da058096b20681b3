package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fivetwenty-io/sdp-client/internal/auth"
	"github.com/fivetwenty-io/sdp-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const tokenExpiringSoonWindow = 5 * time.Minute

// NewTokenCommand creates the token command group.
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage authentication tokens",
		Long:  "Commands for managing OAuth tokens including status and refresh",
	}

	cmd.AddCommand(newTokenStatusCommand())
	cmd.AddCommand(newTokenRefreshCommand())

	return cmd
}

func newTokenStatusCommand() *cobra.Command {
	var (
		portalFlag string
		showAll    bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show token status and expiration",
		Long:  "Display information about the current access token including expiration time",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			if len(config.Portals) == 0 {
				return constants.ErrNoPortalsConfigured
			}

			// If --all flag is specified, show every portal
			if showAll {
				return displayAllTokenStatus(config)
			}

			if portalFlag == "" {
				if config.CurrentPortal != "" {
					if portalConfig, exists := config.Portals[config.CurrentPortal]; exists {
						return displayTokenStatus(portalConfig, config.CurrentPortal)
					}
				}

				return displayAllTokenStatus(config)
			}

			portalConfig, err := validatePortalExists(config, portalFlag)
			if err != nil {
				return err
			}

			return displayTokenStatus(portalConfig, portalFlag)
		},
	}

	cmd.Flags().StringVar(&portalFlag, "portal", "", "show token status for specific portal")
	cmd.Flags().BoolVar(&showAll, "all", false, "show token status for all configured portals")

	return cmd
}

func newTokenRefreshCommand() *cobra.Command {
	var portalFlag string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Manually refresh the access token",
		Long:  "Force a token exchange against the accounts server using the stored refresh token",
		RunE: func(cmd *cobra.Command, args []string) error {
			portalConfig, portalName, err := prepareClientConfig(portalFlag)
			if err != nil {
				return err
			}

			if portalConfig.RefreshToken == "" {
				return constants.ErrNoRefreshToken
			}

			return refreshPortalToken(portalConfig, portalName)
		},
	}

	cmd.Flags().StringVar(&portalFlag, "portal", "", "refresh token for specific portal")

	return cmd
}

func refreshPortalToken(portalConfig *PortalConfig, portalName string) error {
	_, _ = fmt.Fprintf(os.Stdout, "Refreshing token for portal: %s\n", portalName)

	accountsURL := resolveAccountsURL(portalConfig)
	tokenManager := auth.NewRefreshTokenManager(accountsURL, portalConfig.ClientID, portalConfig.ClientSecret, portalConfig.RefreshToken)

	ctx, cancel := context.WithTimeout(context.Background(), constants.TokenExchangeTimeout)
	defer cancel()

	err := tokenManager.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	newToken := tokenManager.CurrentToken()
	if newToken == nil {
		return constants.ErrNoRefreshToken
	}

	persister := NewConfigPersister()

	err = persister.UpdatePortalToken(portalName, newToken.AccessToken, newToken.ExpiresAt, newToken.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	return outputConfigUpdateResult("Refreshed token", "token", "", portalName)
}

func displayTokenStatus(portalConfig *PortalConfig, portalName string) error {
	output := viper.GetString("output")
	tokenStatus := buildTokenStatusData(portalConfig, portalName)

	switch output {
	case constants.FormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(tokenStatus)
		if err != nil {
			return fmt.Errorf("encoding token status to JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		err := encoder.Encode(tokenStatus)
		if err != nil {
			return fmt.Errorf("failed to encode token status as YAML: %w", err)
		}

		return nil
	default:
		return displayTokenStatusTable(tokenStatus)
	}
}

func displayAllTokenStatus(config *Config) error {
	output := viper.GetString("output")

	if output == constants.FormatJSON || output == constants.FormatYAML {
		allStatus := make(map[string]interface{})

		for name, portalConfig := range config.Portals {
			allStatus[name] = buildTokenStatusData(portalConfig, name)
		}

		switch output {
		case constants.FormatJSON:
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")

			err := encoder.Encode(allStatus)
			if err != nil {
				return fmt.Errorf("encoding all token status to JSON: %w", err)
			}

			return nil
		case constants.FormatYAML:
			encoder := yaml.NewEncoder(os.Stdout)

			err := encoder.Encode(allStatus)
			if err != nil {
				return fmt.Errorf("failed to encode all status as YAML: %w", err)
			}

			return nil
		}
	}

	// For table output, show each portal separately
	first := true

	for name, portalConfig := range config.Portals {
		if !first {
			_, _ = os.Stdout.WriteString("\n")
		}

		first = false

		err := displayTokenStatus(portalConfig, name)
		if err != nil {
			return err
		}
	}

	return nil
}

func buildTokenStatusData(portalConfig *PortalConfig, portalName string) map[string]interface{} {
	tokenStatus := map[string]interface{}{
		"portal": portalName,
		"url":    portalConfig.URL,
	}

	if portalConfig.Token == "" {
		tokenStatus["status"] = "No token"
		tokenStatus["authenticated"] = false

		return tokenStatus
	}

	tokenStatus["status"] = "Token present"
	tokenStatus["authenticated"] = true

	// Zoho access tokens are opaque, so expiry comes only from what the
	// exchange reported at mint time.
	if portalConfig.TokenExpiresAt != nil {
		addExpirationInfo(tokenStatus, portalConfig.TokenExpiresAt)
	} else {
		tokenStatus["expiry_status"] = "Unknown expiration"
	}

	if portalConfig.LastRefreshed != nil {
		tokenStatus["last_refreshed"] = portalConfig.LastRefreshed.Format(time.RFC3339)
	}

	tokenStatus["refresh_token_available"] = portalConfig.RefreshToken != ""

	return tokenStatus
}

// addExpirationInfo adds expiration status and timing information.
func addExpirationInfo(tokenStatus map[string]interface{}, expiresAt *time.Time) {
	tokenStatus["expires_at"] = expiresAt.Format(time.RFC3339)

	timeUntilExpiry := time.Until(*expiresAt)

	switch {
	case timeUntilExpiry <= 0:
		tokenStatus["expiry_status"] = "Expired"
	case timeUntilExpiry <= tokenExpiringSoonWindow:
		tokenStatus["expiry_status"] = "Expires soon"
	default:
		tokenStatus["expiry_status"] = "Valid"
	}

	tokenStatus["time_until_expiry"] = timeUntilExpiry.String()
}

func displayTokenStatusTable(tokenStatus map[string]interface{}) error {
	_, _ = fmt.Fprintf(os.Stdout, "Token Status for portal: %s\n", tokenStatus["portal"])
	_, _ = fmt.Fprintf(os.Stdout, "URL: %s\n\n", tokenStatus["url"])

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	err := table.Append([]string{"Authenticated", fmt.Sprintf("%v", tokenStatus["authenticated"])})
	if err != nil {
		return fmt.Errorf("failed to append authenticated status: %w", err)
	}

	err = table.Append([]string{"Status", fmt.Sprintf("%v", tokenStatus["status"])})
	if err != nil {
		return fmt.Errorf("failed to append status: %w", err)
	}

	optionalRows := []struct {
		key   string
		label string
	}{
		{"expiry_status", "Expiry Status"},
		{"expires_at", "Expires At"},
		{"time_until_expiry", "Time Until Expiry"},
		{"last_refreshed", "Last Refreshed"},
		{"refresh_token_available", "Refresh Token Available"},
	}

	for _, row := range optionalRows {
		if value, ok := tokenStatus[row.key]; ok {
			err := table.Append([]string{row.label, fmt.Sprintf("%v", value)})
			if err != nil {
				return fmt.Errorf("failed to append %s to table: %w", row.label, err)
			}
		}
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render token status table: %w", err)
	}

	return nil
}
