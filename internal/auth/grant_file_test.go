package auth_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fivetwenty-io/sdp-client/internal/auth"
	"github.com/fivetwenty-io/sdp-client/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGrantFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "grant.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))

	return path
}

func TestLoadGrantFile(t *testing.T) {
	t.Parallel()

	t.Run("loads a complete grant file", func(t *testing.T) {
		t.Parallel()

		path := writeGrantFile(t, `{
			"code": "1000.grant.code",
			"grant_type": "authorization_code",
			"client_id": "1000.CLIENTID",
			"client_secret": "shhh"
		}`)

		grant, err := auth.LoadGrantFile(path)
		require.NoError(t, err)
		assert.Equal(t, "1000.grant.code", grant.Code)
		assert.Equal(t, "authorization_code", grant.GrantType)
		assert.Equal(t, "1000.CLIENTID", grant.ClientID)
		assert.Equal(t, "shhh", grant.ClientSecret)
	})

	t.Run("rejects missing code", func(t *testing.T) {
		t.Parallel()

		path := writeGrantFile(t, `{"client_id": "id", "client_secret": "secret"}`)

		_, err := auth.LoadGrantFile(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrInvalidGrantFile)
		assert.Contains(t, err.Error(), "missing code")
	})

	t.Run("rejects missing client credentials", func(t *testing.T) {
		t.Parallel()

		path := writeGrantFile(t, `{"code": "1000.grant.code", "client_id": "id"}`)

		_, err := auth.LoadGrantFile(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrInvalidGrantFile)
		assert.Contains(t, err.Error(), "missing client credentials")
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		path := writeGrantFile(t, `{"code": `)

		_, err := auth.LoadGrantFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing grant file")
	})

	t.Run("reports unreadable file", func(t *testing.T) {
		t.Parallel()

		_, err := auth.LoadGrantFile(filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading grant file")
	})

	t.Run("rejects a directory", func(t *testing.T) {
		t.Parallel()

		_, err := auth.LoadGrantFile(t.TempDir())
		require.Error(t, err)
		assert.ErrorIs(t, err, constants.ErrNotRegularFile)
	})
}

func TestGrantFile_Config(t *testing.T) {
	t.Parallel()

	grant := &auth.GrantFile{
		Code:         "1000.grant.code",
		ClientID:     "1000.CLIENTID",
		ClientSecret: "shhh",
	}

	config := grant.Config("https://accounts.zoho.eu")
	assert.Equal(t, "https://accounts.zoho.eu/oauth/v2/token", config.TokenURL)
	assert.Equal(t, "1000.CLIENTID", config.ClientID)
	assert.Equal(t, "shhh", config.ClientSecret)
	assert.Equal(t, "1000.grant.code", config.GrantCode)
	assert.Empty(t, config.RefreshToken)
}
