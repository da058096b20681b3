package commands

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"syscall"

	"github.com/fivetwenty-io/sdp-client/internal/auth"
	"github.com/fivetwenty-io/sdp-client/internal/client"
	"github.com/fivetwenty-io/sdp-client/internal/constants"
	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
	"github.com/fivetwenty-io/sdp-client/pkg/sdpclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		portalURL    string
		portalName   string
		dataCenter   string
		clientID     string
		clientSecret string
		grantCode    string
		refreshToken string
		grantFile    string
		scope        string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to ServiceDesk Plus Cloud",
		Long:  "Exchange Zoho OAuth credentials for an access token and save the portal to the CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Get portal URL
			if portalURL == "" {
				portalURL = viper.GetString("portal")
			}

			if portalURL == "" {
				config := loadConfig()
				if config.CurrentPortal != "" {
					if portalConfig, exists := config.Portals[config.CurrentPortal]; exists {
						portalURL = portalConfig.URL
					}
				}
			}

			if portalURL == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Portal URL: ")
				portalURL, _ = reader.ReadString('\n')
				portalURL = strings.TrimSpace(portalURL)
			}

			if portalURL == "" {
				return sdp.ErrPortalURLRequired
			}

			normalizedURL := sdpclient.NormalizePortalURL(portalURL)

			if dataCenter == "" {
				dataCenter = viper.GetString("data_center")
			}

			accountsURL, err := sdpclient.AccountsURLForDataCenter(dataCenter)
			if err != nil {
				return err
			}

			// Grant files carry the client credentials alongside the code, so
			// they short-circuit the prompts.
			if grantFile != "" {
				grant, err := auth.LoadGrantFile(grantFile)
				if err != nil {
					return fmt.Errorf("loading grant file: %w", err)
				}

				clientID = grant.ClientID
				clientSecret = grant.ClientSecret
				grantCode = grant.Code
			}

			if clientID == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Client ID: ")
				clientID, _ = reader.ReadString('\n')
				clientID = strings.TrimSpace(clientID)
			}

			if clientID == "" {
				return constants.ErrNoClientID
			}

			if clientSecret == "" {
				fmt.Print("Client secret: ")
				byteSecret, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read client secret: %w", err)
				}
				clientSecret = string(byteSecret)
				fmt.Println()
			}

			if clientSecret == "" {
				return constants.ErrNoClientSecret
			}

			if grantCode == "" && refreshToken == "" {
				fmt.Print("Grant code (from the Zoho API console): ")
				byteCode, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read grant code: %w", err)
				}
				grantCode = strings.TrimSpace(string(byteCode))
				fmt.Println()

				if grantCode == "" {
					return constants.ErrNoGrantCode
				}
			}

			oauth2Config := &auth.OAuth2Config{
				TokenURL:     auth.TokenURL(accountsURL),
				ClientID:     clientID,
				ClientSecret: clientSecret,
				GrantCode:    grantCode,
				RefreshToken: refreshToken,
				Scope:        scope,
			}

			tokenManager := auth.NewZohoTokenManager(oauth2Config)

			exchangeCtx, cancel := context.WithTimeout(context.Background(), constants.TokenExchangeTimeout)
			defer cancel()

			_, err = tokenManager.GetToken(exchangeCtx)
			if err != nil {
				return fmt.Errorf("failed to authenticate with accounts server: %w", err)
			}

			newToken := tokenManager.CurrentToken()

			// Verify the token actually reaches the portal before saving it.
			ctx := context.Background()

			verifyConfig := &sdp.Config{
				PortalURL:   normalizedURL,
				AccountsURL: accountsURL,
				DataCenter:  dataCenter,
			}

			if viper.GetBool("verbose") {
				verifyConfig.Debug = true
				verifyConfig.Logger = newLoggerAdapter()
			}

			apiClient, err := client.NewWithTokenManager(verifyConfig, tokenManager)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			_, err = apiClient.Requests().List(ctx, sdp.NewListInfo().WithRowCount(1))
			if err != nil {
				return fmt.Errorf("failed to verify portal access: %w", err)
			}

			// Determine the key to use for storing the portal config
			if portalName == "" {
				portalName = extractPortalName(normalizedURL)
			}

			configStruct := loadConfig()

			if configStruct.Portals == nil {
				configStruct.Portals = make(map[string]*PortalConfig)
			}

			portalConfig, exists := configStruct.Portals[portalName]
			if !exists {
				portalConfig = &PortalConfig{}
				configStruct.Portals[portalName] = portalConfig
			}

			portalConfig.URL = normalizedURL
			portalConfig.DataCenter = dataCenter
			portalConfig.ClientID = clientID
			portalConfig.ClientSecret = clientSecret
			portalConfig.Scope = scope

			// Store token material (grant codes are single use and never saved)
			if newToken != nil {
				portalConfig.Token = newToken.AccessToken
				if !newToken.ExpiresAt.IsZero() {
					expiresAt := newToken.ExpiresAt
					portalConfig.TokenExpiresAt = &expiresAt
				}

				if newToken.RefreshToken != "" {
					portalConfig.RefreshToken = newToken.RefreshToken
				} else if refreshToken != "" {
					portalConfig.RefreshToken = refreshToken
				}
			}

			// Set as current portal if this is the first one or none is set
			if configStruct.CurrentPortal == "" || len(configStruct.Portals) == 1 {
				configStruct.CurrentPortal = portalName
			}

			if err := saveConfigStruct(configStruct); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("Successfully logged in to %s\n", normalizedURL)
			if configStruct.CurrentPortal == portalName {
				fmt.Printf("Portal '%s' set as current\n", portalName)
			}
			if portalConfig.RefreshToken != "" {
				fmt.Println("Refresh token stored, future tokens will be minted automatically")
			}

			return nil
		},
	}

	// Add flags
	cmd.Flags().StringVarP(&portalURL, "portal-url", "u", "", "portal URL, e.g. https://sdpondemand.manageengine.com/app/itdesk")
	cmd.Flags().StringVarP(&portalName, "name", "n", "", "name to store the portal under (defaults to the app segment of the URL)")
	cmd.Flags().StringVar(&dataCenter, "data-center", "", "Zoho data center code (us, eu, in, au, jp, cn, uk, ca, sa)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret")
	cmd.Flags().StringVar(&grantCode, "grant-code", "", "self-client grant code for the first exchange")
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "existing refresh token to reuse instead of a grant code")
	cmd.Flags().StringVar(&grantFile, "grant-file", "", "path to a self-client grant JSON file")
	cmd.Flags().StringVar(&scope, "scope", "", "OAuth scopes to request, e.g. SDPOnDemand.requests.ALL")

	return cmd
}

// extractPortalName derives a config key from a normalized portal URL. The
// app segment is the most recognizable part of an SDP URL, so
// https://sdpondemand.manageengine.com/app/itdesk/api/v3 becomes "itdesk".
func extractPortalName(portalURL string) string {
	parsed, err := url.Parse(portalURL)
	if err != nil || parsed.Host == "" {
		return portalURL
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i, segment := range segments {
		if segment == "app" && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1]
		}
	}

	host := parsed.Host
	if idx := strings.Index(host, "."); idx > 0 {
		return host[:idx]
	}

	return host
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	var portalFlag string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Logout from ServiceDesk Plus Cloud",
		Long:  "Clear stored tokens for a portal without removing its OAuth client settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			portalName := portalFlag
			if portalName == "" {
				portalName = config.CurrentPortal
			}

			if portalName == "" {
				return constants.ErrNoPortalsConfigured
			}

			portalConfig, exists := config.Portals[portalName]
			if !exists {
				return fmt.Errorf("portal '%s': %w", portalName, sdp.ErrPortalNotFound)
			}

			portalConfig.Token = ""
			portalConfig.TokenExpiresAt = nil
			portalConfig.RefreshToken = ""
			portalConfig.LastRefreshed = nil

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("Successfully logged out of portal '%s'\n", portalName)

			return nil
		},
	}

	cmd.Flags().StringVar(&portalFlag, "portal", "", "portal to log out of (defaults to the current portal)")

	return cmd
}
