package auth

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
)

// ConfigFromSecretStore assembles an exchange configuration from
// conventionally named secrets. Client ID and secret are required; of the
// grant material, a refresh token is preferred and a grant code accepted.
func ConfigFromSecretStore(ctx context.Context, store sdp.SecretStore, accountsURL string) (*OAuth2Config, error) {
	clientID, err := store.Get(ctx, sdp.SecretClientID)
	if err != nil {
		return nil, fmt.Errorf("resolving client ID: %w", err)
	}

	clientSecret, err := store.Get(ctx, sdp.SecretClientSecret)
	if err != nil {
		return nil, fmt.Errorf("resolving client secret: %w", err)
	}

	config := &OAuth2Config{
		TokenURL:     TokenURL(accountsURL),
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}

	if refreshToken, err := store.Get(ctx, sdp.SecretRefreshToken); err == nil {
		config.RefreshToken = refreshToken

		return config, nil
	}

	if grantCode, err := store.Get(ctx, sdp.SecretGrantCode); err == nil {
		config.GrantCode = grantCode

		return config, nil
	}

	return nil, sdp.ErrNoCredentials
}
