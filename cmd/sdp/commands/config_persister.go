package commands

import (
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/sdp-client/internal/constants"
)

// ConfigPersister implements the auth.ConfigPersister interface.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdatePortalToken updates the access token and related metadata in the config.
func (p *ConfigPersister) UpdatePortalToken(portal, accessToken string, expiresAt time.Time, refreshToken string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	// Load current config
	config := loadConfig()

	if config.Portals == nil {
		config.Portals = make(map[string]*PortalConfig)
	}

	portalConfig, exists := config.Portals[portal]
	if !exists {
		return fmt.Errorf("portal configuration for '%s': %w", portal, constants.ErrPortalNotFound)
	}

	// Update token information
	portalConfig.Token = accessToken
	if !expiresAt.IsZero() {
		portalConfig.TokenExpiresAt = &expiresAt
	}

	if refreshToken != "" {
		portalConfig.RefreshToken = refreshToken
	}

	now := time.Now()
	portalConfig.LastRefreshed = &now

	// Save the updated config
	return saveConfigStruct(config)
}
