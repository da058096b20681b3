package auth_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/fivetwenty-io/sdp-client/internal/auth"
	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapSecretStore backs SecretStore onto a plain map for tests.
type mapSecretStore map[string]string

func (s mapSecretStore) Get(_ context.Context, name string) (string, error) {
	value, ok := s[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", sdp.ErrSecretNotFound, name)
	}

	return value, nil
}

func TestConfigFromSecretStore(t *testing.T) {
	t.Parallel()

	t.Run("prefers refresh token", func(t *testing.T) {
		t.Parallel()

		store := mapSecretStore{
			"client_id":     "1000.CLIENTID",
			"client_secret": "shhh",
			"refresh_token": "1000.refresh",
			"grant_code":    "1000.grant",
		}

		config, err := auth.ConfigFromSecretStore(context.Background(), store, "https://accounts.zoho.com")
		require.NoError(t, err)
		assert.Equal(t, "https://accounts.zoho.com/oauth/v2/token", config.TokenURL)
		assert.Equal(t, "1000.CLIENTID", config.ClientID)
		assert.Equal(t, "shhh", config.ClientSecret)
		assert.Equal(t, "1000.refresh", config.RefreshToken)
		assert.Empty(t, config.GrantCode)
	})

	t.Run("falls back to grant code", func(t *testing.T) {
		t.Parallel()

		store := mapSecretStore{
			"client_id":     "1000.CLIENTID",
			"client_secret": "shhh",
			"grant_code":    "1000.grant",
		}

		config, err := auth.ConfigFromSecretStore(context.Background(), store, "https://accounts.zoho.com")
		require.NoError(t, err)
		assert.Empty(t, config.RefreshToken)
		assert.Equal(t, "1000.grant", config.GrantCode)
	})

	t.Run("requires client credentials", func(t *testing.T) {
		t.Parallel()

		store := mapSecretStore{"client_secret": "shhh"}

		_, err := auth.ConfigFromSecretStore(context.Background(), store, "https://accounts.zoho.com")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "resolving client ID")
	})

	t.Run("requires grant material", func(t *testing.T) {
		t.Parallel()

		store := mapSecretStore{
			"client_id":     "1000.CLIENTID",
			"client_secret": "shhh",
		}

		_, err := auth.ConfigFromSecretStore(context.Background(), store, "https://accounts.zoho.com")
		require.Error(t, err)
		assert.ErrorIs(t, err, sdp.ErrNoCredentials)
	})
}
