package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fivetwenty-io/sdp-client/internal/auth"
	"github.com/fivetwenty-io/sdp-client/internal/client"
	"github.com/fivetwenty-io/sdp-client/internal/constants"
	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
	"github.com/fivetwenty-io/sdp-client/pkg/sdpclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	// Multi-portal configuration
	Portals       map[string]*PortalConfig `json:"portals,omitempty"        yaml:"portals,omitempty"`
	CurrentPortal string                   `json:"current_portal,omitempty" yaml:"current_portal,omitempty"`

	// Global settings
	Output     string `json:"output"                yaml:"output"`
	DataCenter string `json:"data_center,omitempty" yaml:"data_center,omitempty"`
}

// PortalConfig represents configuration for a single ServiceDesk Plus portal.
type PortalConfig struct {
	URL            string     `json:"url"                        yaml:"url"`
	DataCenter     string     `json:"data_center,omitempty"      yaml:"data_center,omitempty"`
	AccountsURL    string     `json:"accounts_url,omitempty"     yaml:"accounts_url,omitempty"`
	ClientID       string     `json:"client_id,omitempty"        yaml:"client_id,omitempty"`
	ClientSecret   string     `json:"client_secret,omitempty"    yaml:"client_secret,omitempty"`
	Scope          string     `json:"scope,omitempty"            yaml:"scope,omitempty"`
	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	RefreshToken   string     `json:"refresh_token,omitempty"    yaml:"refresh_token,omitempty"`
	LastRefreshed  *time.Time `json:"last_refreshed,omitempty"   yaml:"last_refreshed,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage SDP CLI configuration including portals and settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigPortalsCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var portalFlag string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration (global or portal-specific)",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			// If --portal flag is provided, show only that portal's configuration
			if portalFlag != "" {
				return showPortalSpecificConfig(config, portalFlag)
			}

			output := viper.GetString("output")
			switch output {
			case constants.FormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(config)
			case constants.FormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(config)
			default:
				return displayConfigTable(config)
			}
		},
	}

	cmd.Flags().StringVar(&portalFlag, "portal", "", "show configuration for specific portal")

	return cmd
}

func newConfigSetCommand() *cobra.Command {
	var portalFlag string

	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a specific configuration value (global or portal-specific)",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			config := loadConfig()

			// If --portal flag is provided, set portal-specific configuration
			if portalFlag != "" {
				return setPortalSpecificConfig(config, portalFlag, key, value)
			}

			// Otherwise set global configuration
			return setGlobalConfig(config, key, value)
		},
	}

	cmd.Flags().StringVar(&portalFlag, "portal", "", "target specific portal for configuration")

	return cmd
}

func newConfigUnsetCommand() *cobra.Command {
	var portalFlag string

	cmd := &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a specific configuration value (global or portal-specific)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			config := loadConfig()

			// If --portal flag is provided, unset portal-specific configuration
			if portalFlag != "" {
				return unsetPortalSpecificConfig(config, portalFlag, key)
			}

			// Otherwise unset global configuration
			return unsetGlobalConfig(config, key)
		},
	}

	cmd.Flags().StringVar(&portalFlag, "portal", "", "target specific portal for configuration")

	return cmd
}

func newConfigPortalsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "portals",
		Aliases: []string{"portal-list"},
		Short:   "List configured portals",
		Long:    "List all ServiceDesk Plus portals saved in the CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			output := viper.GetString("output")
			switch output {
			case constants.FormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(config.Portals)
			case constants.FormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(config.Portals)
			default:
				return displayPortalsConfigTable(config)
			}
		},
	}

	return cmd
}

func newConfigClearCommand() *cobra.Command {
	var portalFlag string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear configuration",
		Long:  "Remove all configuration settings (global or portal-specific)",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			// If --portal flag is provided, clear only that portal's configuration
			if portalFlag != "" {
				return clearPortalSpecificConfig(config, portalFlag)
			}

			// Otherwise clear all configuration
			configFile := viper.ConfigFileUsed()
			if configFile == "" {
				home, _ := os.UserHomeDir()
				configFile = filepath.Join(home, ".sdp", "config.yml")
			}

			err := os.Remove(configFile)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove config file: %w", err)
			}

			return outputConfigUpdateResult("Cleared", "all configuration", "", "")
		},
	}

	cmd.Flags().StringVar(&portalFlag, "portal", "", "clear configuration for specific portal only")

	return cmd
}

func loadConfig() *Config {
	config := &Config{
		Output:     viper.GetString("output"),
		DataCenter: viper.GetString("data_center"),
		Portals:    make(map[string]*PortalConfig),
	}

	config.CurrentPortal = viper.GetString("current_portal")

	portalsRaw := viper.GetStringMap("portals")
	for name, portalRaw := range portalsRaw {
		if portalMap, ok := portalRaw.(map[string]interface{}); ok {
			config.Portals[name] = parsePortalConfig(portalMap)
		}
	}

	return config
}

// parsePortalConfig parses portal configuration from a map.
func parsePortalConfig(portalMap map[string]interface{}) *PortalConfig {
	portalConfig := &PortalConfig{}

	parsePortalBasicFields(portalConfig, portalMap)
	parsePortalAuthFields(portalConfig, portalMap)
	parsePortalTimestampFields(portalConfig, portalMap)

	return portalConfig
}

// parsePortalBasicFields parses basic portal configuration fields.
func parsePortalBasicFields(portalConfig *PortalConfig, portalMap map[string]interface{}) {
	basicFields := map[string]*string{
		"url":          &portalConfig.URL,
		"data_center":  &portalConfig.DataCenter,
		"accounts_url": &portalConfig.AccountsURL,
		"scope":        &portalConfig.Scope,
	}

	for key, field := range basicFields {
		if value, ok := portalMap[key].(string); ok {
			*field = value
		}
	}
}

// parsePortalAuthFields parses authentication-related portal configuration fields.
func parsePortalAuthFields(portalConfig *PortalConfig, portalMap map[string]interface{}) {
	authFields := map[string]*string{
		"client_id":     &portalConfig.ClientID,
		"client_secret": &portalConfig.ClientSecret,
		"token":         &portalConfig.Token,
		"refresh_token": &portalConfig.RefreshToken,
	}

	for key, field := range authFields {
		if value, ok := portalMap[key].(string); ok {
			*field = value
		}
	}
}

// parsePortalTimestampFields parses timestamp fields in portal configuration.
func parsePortalTimestampFields(portalConfig *PortalConfig, portalMap map[string]interface{}) {
	if tokenExpiresAtStr, ok := portalMap["token_expires_at"].(string); ok && tokenExpiresAtStr != "" {
		t, err := time.Parse(time.RFC3339, tokenExpiresAtStr)
		if err == nil {
			portalConfig.TokenExpiresAt = &t
		}
	}

	if lastRefreshedStr, ok := portalMap["last_refreshed"].(string); ok && lastRefreshedStr != "" {
		t, err := time.Parse(time.RFC3339, lastRefreshedStr)
		if err == nil {
			portalConfig.LastRefreshed = &t
		}
	}
}

func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, ".sdp")

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getCurrentPortalConfig returns the configuration for the currently selected portal.
func getCurrentPortalConfig() (*PortalConfig, error) {
	config := loadConfig()

	if config.CurrentPortal == "" {
		if len(config.Portals) == 0 {
			return nil, fmt.Errorf("%w, use 'sdp login' to add one", sdp.ErrNoPortalsConfigured)
		}
		// If no current portal set but portals exist, use the first one
		for name := range config.Portals {
			config.CurrentPortal = name

			break
		}
	}

	portalConfig, exists := config.Portals[config.CurrentPortal]
	if !exists {
		return nil, fmt.Errorf("%w in configuration: '%s'", sdp.ErrCurrentPortalNotFound, config.CurrentPortal)
	}

	return portalConfig, nil
}

// getPortalConfigByFlag returns portal config based on command line flag or current portal.
func getPortalConfigByFlag(portalFlag string) (*PortalConfig, error) {
	config := loadConfig()

	// If --portal flag is provided, use that specific portal
	if portalFlag != "" {
		if portalConfig, exists := config.Portals[portalFlag]; exists {
			return portalConfig, nil
		}

		return nil, fmt.Errorf("%w in configuration, use 'sdp config portals' to see available portals: '%s'", sdp.ErrPortalNotFound, portalFlag)
	}

	// Otherwise use current portal
	return getCurrentPortalConfig()
}

// findPortalName returns the configuration key under which a portal is stored.
func findPortalName(portalConfig *PortalConfig) (string, error) {
	config := loadConfig()

	for name, cfg := range config.Portals {
		if cfg.URL == portalConfig.URL {
			return name, nil
		}
	}

	return "", sdp.ErrPortalNotFound
}

// CreateClientWithPortal creates an SDP client using the specified portal or current portal.
func CreateClientWithPortal(portalFlag string) (sdp.Client, error) {
	portalConfig, portalName, err := prepareClientConfig(portalFlag)
	if err != nil {
		return nil, err
	}

	tokenManager := createTokenManager(portalConfig, portalName)
	sdpConfig := buildSDPConfig(portalConfig)

	return createFinalClient(sdpConfig, tokenManager, portalConfig)
}

func prepareClientConfig(portalFlag string) (*PortalConfig, string, error) {
	portalConfig, err := getPortalConfigByFlag(portalFlag)
	if err != nil {
		return nil, "", err
	}

	if portalConfig.URL == "" {
		return nil, "", fmt.Errorf("%w, use 'sdp login' first", sdp.ErrPortalURLRequired)
	}

	portalName, err := findPortalName(portalConfig)
	if err != nil {
		return nil, "", err
	}

	return portalConfig, portalName, nil
}

func createTokenManager(portalConfig *PortalConfig, portalName string) auth.TokenManager {
	if !hasAuthInfo(portalConfig) {
		return nil
	}

	accountsURL := resolveAccountsURL(portalConfig)
	oauth2Config := buildOAuth2Config(portalConfig, accountsURL)
	configPersister := NewConfigPersister()
	initialExpiry := getInitialTokenExpiry(portalConfig)

	return auth.NewConfigTokenManager(oauth2Config, configPersister, portalName, portalConfig.Token, initialExpiry)
}

func hasAuthInfo(portalConfig *PortalConfig) bool {
	return portalConfig.RefreshToken != "" && portalConfig.ClientID != "" && portalConfig.ClientSecret != ""
}

// resolveAccountsURL picks the accounts server for a portal, falling back to
// the data center mapping when no explicit URL is configured.
func resolveAccountsURL(portalConfig *PortalConfig) string {
	if portalConfig.AccountsURL != "" {
		return portalConfig.AccountsURL
	}

	accountsURL, err := sdpclient.AccountsURLForDataCenter(portalConfig.DataCenter)
	if err != nil {
		return constants.DefaultAccountsURL
	}

	return accountsURL
}

func buildOAuth2Config(portalConfig *PortalConfig, accountsURL string) *auth.OAuth2Config {
	return &auth.OAuth2Config{
		TokenURL:     auth.TokenURL(accountsURL),
		ClientID:     portalConfig.ClientID,
		ClientSecret: portalConfig.ClientSecret,
		RefreshToken: portalConfig.RefreshToken,
		AccessToken:  portalConfig.Token,
		Scope:        portalConfig.Scope,
	}
}

func getInitialTokenExpiry(portalConfig *PortalConfig) time.Time {
	if portalConfig.TokenExpiresAt != nil {
		return *portalConfig.TokenExpiresAt
	}

	return time.Time{}
}

func buildSDPConfig(portalConfig *PortalConfig) *sdp.Config {
	config := &sdp.Config{
		PortalURL:   sdpclient.NormalizePortalURL(portalConfig.URL),
		AccountsURL: resolveAccountsURL(portalConfig),
		DataCenter:  portalConfig.DataCenter,
	}

	if viper.GetBool("verbose") {
		config.Debug = true
		config.Logger = newLoggerAdapter()
	}

	return config
}

func createFinalClient(sdpConfig *sdp.Config, tokenManager auth.TokenManager, portalConfig *PortalConfig) (sdp.Client, error) {
	if tokenManager != nil {
		return createClientWithTokenManager(sdpConfig, tokenManager)
	}

	if portalConfig.Token != "" {
		sdpConfig.AccessToken = portalConfig.Token

		ctx := context.Background()

		apiClient, err := sdpclient.New(ctx, sdpConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create SDP client: %w", err)
		}

		return apiClient, nil
	}

	return nil, fmt.Errorf("%w, use 'sdp login' first", sdp.ErrNotAuthenticated)
}

// createClientWithTokenManager creates a client with a custom token manager.
func createClientWithTokenManager(config *sdp.Config, tokenManager auth.TokenManager) (sdp.Client, error) {
	apiClient, err := client.NewWithTokenManager(config, tokenManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create client with token manager: %w", err)
	}

	return apiClient, nil
}

// setGlobalConfig sets a global configuration value.
func setGlobalConfig(config *Config, key, value string) error {
	switch key {
	case "output":
		config.Output = value
	case "data_center":
		config.DataCenter = value
	case "current_portal":
		if _, exists := config.Portals[value]; !exists {
			return fmt.Errorf("%w: '%s'", sdp.ErrPortalNotFound, value)
		}

		config.CurrentPortal = value
	default:
		return fmt.Errorf("%w: %s. Use --portal flag for portal-specific settings", sdp.ErrUnknownConfigKey, key)
	}

	err := saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return outputConfigUpdateResult("Set global", key, value, "")
}

// setPortalSpecificConfig sets configuration for a specific portal.
func setPortalSpecificConfig(config *Config, portalName, key, value string) error {
	portalConfig, err := validatePortalExists(config, portalName)
	if err != nil {
		return err
	}

	err = setPortalConfigValue(portalConfig, key, value)
	if err != nil {
		return err
	}

	config.Portals[portalName] = portalConfig

	err = saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return outputConfigUpdateResult("Set", key, value, portalName)
}

// validatePortalExists validates that a portal exists in the configuration.
func validatePortalExists(config *Config, portalName string) (*PortalConfig, error) {
	portalConfig, exists := config.Portals[portalName]
	if !exists {
		return nil, fmt.Errorf("%w. Use 'sdp config portals' to see available portals: '%s'", sdp.ErrPortalNotFound, portalName)
	}

	return portalConfig, nil
}

// setPortalConfigValue sets a specific configuration value for a portal.
func setPortalConfigValue(portalConfig *PortalConfig, key, value string) error {
	if handler, exists := getPortalConfigHandler(key); exists {
		handler(portalConfig, value)

		return nil
	}

	return fmt.Errorf("%w: %s", sdp.ErrUnknownConfigKey, key)
}

// getPortalConfigHandler returns a handler function for a given config key.
func getPortalConfigHandler(key string) (func(*PortalConfig, string), bool) {
	handlers := map[string]func(*PortalConfig, string){
		"url":           func(c *PortalConfig, v string) { c.URL = v },
		"data_center":   func(c *PortalConfig, v string) { c.DataCenter = v },
		"accounts_url":  func(c *PortalConfig, v string) { c.AccountsURL = v },
		"client_id":     func(c *PortalConfig, v string) { c.ClientID = v },
		"client_secret": func(c *PortalConfig, v string) { c.ClientSecret = v },
		"scope":         func(c *PortalConfig, v string) { c.Scope = v },
	}
	handler, exists := handlers[key]

	return handler, exists
}

// unsetGlobalConfig unsets a global configuration value.
func unsetGlobalConfig(config *Config, key string) error {
	switch key {
	case "output":
		config.Output = constants.FormatTable
	case "data_center":
		config.DataCenter = ""
	case "current_portal":
		config.CurrentPortal = ""
	default:
		return fmt.Errorf("%w: %s. Use --portal flag for portal-specific settings", sdp.ErrUnknownConfigKey, key)
	}

	err := saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return outputConfigUpdateResult("Unset global", key, "", "")
}

// unsetPortalSpecificConfig unsets configuration for a specific portal.
func unsetPortalSpecificConfig(config *Config, portalName, key string) error {
	portalConfig, exists := config.Portals[portalName]
	if !exists {
		return fmt.Errorf("portal '%s': %w. Use 'sdp config portals' to see available portals", portalName, sdp.ErrPortalNotFound)
	}

	switch key {
	case "data_center":
		portalConfig.DataCenter = ""
	case "accounts_url":
		portalConfig.AccountsURL = ""
	case "client_id":
		portalConfig.ClientID = ""
	case "client_secret":
		portalConfig.ClientSecret = ""
	case "scope":
		portalConfig.Scope = ""
	// Token fields should not be unset via config command for security
	case "token", "refresh_token":
		return fmt.Errorf("%w. Use 'sdp logout' instead", sdp.ErrTokenFieldsCannotUnset)
	default:
		return fmt.Errorf("%w: %s", sdp.ErrUnknownConfigKey, key)
	}

	// Update the portal config in the main config
	config.Portals[portalName] = portalConfig

	err := saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return outputConfigUpdateResult("Unset", key, "", portalName)
}

// showPortalSpecificConfig shows configuration for a specific portal.
func showPortalSpecificConfig(config *Config, portalName string) error {
	portalConfig, exists := config.Portals[portalName]
	if !exists {
		return fmt.Errorf("portal '%s': %w. Use 'sdp config portals' to see available portals", portalName, sdp.ErrPortalNotFound)
	}

	output := viper.GetString("output")
	switch output {
	case constants.FormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(portalConfig)
		if err != nil {
			return fmt.Errorf("failed to encode portal config as JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		err := encoder.Encode(portalConfig)
		if err != nil {
			return fmt.Errorf("failed to encode portal config as YAML: %w", err)
		}

		return nil
	default:
		return displayPortalSpecificConfigTable(config, portalName, portalConfig)
	}
}

// clearPortalSpecificConfig clears credentials for a specific portal.
func clearPortalSpecificConfig(config *Config, portalName string) error {
	portalConfig, exists := config.Portals[portalName]
	if !exists {
		return fmt.Errorf("portal '%s': %w. Use 'sdp config portals' to see available portals", portalName, sdp.ErrPortalNotFound)
	}

	// Clear all configuration except the portal URL
	portalConfig.ClientID = ""
	portalConfig.ClientSecret = ""
	portalConfig.Scope = ""
	portalConfig.Token = ""
	portalConfig.TokenExpiresAt = nil
	portalConfig.RefreshToken = ""
	portalConfig.LastRefreshed = nil

	config.Portals[portalName] = portalConfig

	err := saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return outputConfigUpdateResult("Cleared configuration for portal", portalName, "", "")
}

// displayConfigTable displays configuration in a table format.
func displayConfigTable(config *Config) error {
	err := displayGlobalConfigTable(config)
	if err != nil {
		return err
	}

	return displayPortalsConfigTable(config)
}

func displayGlobalConfigTable(config *Config) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append([]string{"Output", config.Output})

	if config.DataCenter != "" {
		_ = table.Append([]string{"Data Center", config.DataCenter})
	}

	if config.CurrentPortal != "" {
		_ = table.Append([]string{"Current Portal", config.CurrentPortal})
	}

	_, _ = os.Stdout.WriteString("Global Configuration:\n")

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func displayPortalsConfigTable(config *Config) error {
	if len(config.Portals) == 0 {
		_, _ = os.Stdout.WriteString("\nNo portals configured. Use 'sdp login' to add one.\n")

		return nil
	}

	_, _ = os.Stdout.WriteString("\nConfigured Portals:\n")

	portalTable := tablewriter.NewWriter(os.Stdout)
	portalTable.Header("Name", "URL", "Data Center", "Current", "Last Refreshed")

	for name, portalConfig := range config.Portals {
		_ = portalTable.Append(buildPortalConfigRow(name, portalConfig, config.CurrentPortal))
	}

	err := portalTable.Render()
	if err != nil {
		return fmt.Errorf("failed to render portal config table: %w", err)
	}

	return nil
}

func buildPortalConfigRow(name string, portalConfig *PortalConfig, currentPortal string) []string {
	return []string{
		name,
		portalConfig.URL,
		formatConfigValue(portalConfig.DataCenter),
		formatCurrentIndicator(name == currentPortal),
		formatTimestamp(portalConfig.LastRefreshed),
	}
}

func formatConfigValue(value string) string {
	if value == "" {
		return "-"
	}

	return value
}

func formatCurrentIndicator(isCurrent bool) string {
	if isCurrent {
		return constants.CheckMarkSymbol
	}

	return ""
}

func formatTimestamp(value *time.Time) string {
	if value == nil {
		return "-"
	}

	return value.Format(time.RFC3339)
}

// displayPortalSpecificConfigTable displays a single portal's configuration.
func displayPortalSpecificConfigTable(config *Config, portalName string, portalConfig *PortalConfig) error {
	_, _ = os.Stdout.WriteString(fmt.Sprintf("Configuration for portal '%s':\n", portalName))

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append([]string{"URL", portalConfig.URL})
	_ = table.Append([]string{"Data Center", formatConfigValue(portalConfig.DataCenter)})
	_ = table.Append([]string{"Current", formatCurrentIndicator(portalName == config.CurrentPortal)})

	err := addPortalOAuthRows(table, portalConfig)
	if err != nil {
		return err
	}

	err = addTokenRows(table, portalConfig)
	if err != nil {
		return err
	}

	if portalConfig.TokenExpiresAt != nil {
		_ = table.Append([]string{"Token Expires At", portalConfig.TokenExpiresAt.Format(time.RFC3339)})
	}

	if portalConfig.LastRefreshed != nil {
		_ = table.Append([]string{"Last Refreshed", portalConfig.LastRefreshed.Format(time.RFC3339)})
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render portal config table: %w", err)
	}

	return nil
}

// addPortalOAuthRows adds OAuth client rows to the table.
func addPortalOAuthRows(table *tablewriter.Table, portalConfig *PortalConfig) error {
	oauthRows := map[string]string{
		"Accounts URL": portalConfig.AccountsURL,
		"Client ID":    portalConfig.ClientID,
		"Scope":        portalConfig.Scope,
	}

	for label, value := range oauthRows {
		if value != "" {
			err := table.Append([]string{label, value})
			if err != nil {
				return fmt.Errorf("failed to append %s to config table: %w", label, err)
			}
		}
	}

	return nil
}

// addTokenRows adds token-related rows to the table (redacted for security).
func addTokenRows(table *tablewriter.Table, portalConfig *PortalConfig) error {
	tokenRows := map[string]string{
		"Client Secret": portalConfig.ClientSecret,
		"Token":         portalConfig.Token,
		"Refresh Token": portalConfig.RefreshToken,
	}

	for label, value := range tokenRows {
		if value != "" {
			err := table.Append([]string{label, "[REDACTED]"})
			if err != nil {
				return fmt.Errorf("failed to append %s to config table: %w", label, err)
			}
		}
	}

	return nil
}

// outputConfigUpdateResult outputs configuration update results in the requested format.
func outputConfigUpdateResult(action, key, value, portalName string) error {
	result := buildConfigResult(action, key, value, portalName)
	output := viper.GetString("output")

	switch output {
	case constants.FormatJSON:
		return outputConfigAsJSON(result)
	case constants.FormatYAML:
		return outputConfigAsYAML(result)
	default:
		return outputConfigAsTable(action, key, value, portalName)
	}
}

func buildConfigResult(action, key, value, portalName string) map[string]string {
	result := map[string]string{
		"action": action,
		"key":    key,
	}

	if value != "" {
		result["value"] = value
	}

	if portalName != "" {
		result["portal"] = portalName
	}

	return result
}

func outputConfigAsJSON(result map[string]string) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(result)
	if err != nil {
		return fmt.Errorf("failed to encode config result as JSON: %w", err)
	}

	return nil
}

func outputConfigAsYAML(result map[string]string) error {
	encoder := yaml.NewEncoder(os.Stdout)

	err := encoder.Encode(result)
	if err != nil {
		return fmt.Errorf("failed to encode config result as YAML: %w", err)
	}

	return nil
}

func outputConfigAsTable(action, key, value, portalName string) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	err := table.Append([]string{"Action", action})
	if err != nil {
		return fmt.Errorf("failed to append action to table: %w", err)
	}

	err = table.Append([]string{"Key", key})
	if err != nil {
		return fmt.Errorf("failed to append key to table: %w", err)
	}

	if value != "" {
		err := table.Append([]string{"Value", value})
		if err != nil {
			return fmt.Errorf("failed to append value to table: %w", err)
		}
	}

	if portalName != "" {
		err := table.Append([]string{"Portal", portalName})
		if err != nil {
			return fmt.Errorf("failed to append portal to table: %w", err)
		}
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render update results table: %w", err)
	}

	return nil
}
