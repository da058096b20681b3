package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZohoTokenManager_GetToken(t *testing.T) {
	t.Run("returns existing valid token", func(t *testing.T) {
		manager := NewZohoTokenManager(&OAuth2Config{
			AccessToken: "existing-token",
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "existing-token", token)
	})

	t.Run("refreshes expired token using refresh token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/oauth/v2/token", r.URL.Path)
			assert.Equal(t, "POST", r.Method)

			err := r.ParseForm()
			require.NoError(t, err)
			assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
			assert.Equal(t, "old-refresh-token", r.Form.Get("refresh_token"))
			assert.Equal(t, "client-id", r.Form.Get("client_id"))
			assert.Equal(t, "client-secret", r.Form.Get("client_secret"))

			response := tokenResponse{
				AccessToken: "new-access-token",
				ExpiresIn:   3600,
				TokenType:   "Bearer",
			}
			_ = json.NewEncoder(w).Encode(response)
		}))
		defer server.Close()

		manager := NewZohoTokenManager(&OAuth2Config{
			TokenURL:     server.URL + "/oauth/v2/token",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RefreshToken: "old-refresh-token",
		})

		// Seed an expired token
		manager.store.Set(&Token{
			AccessToken: "expired-token",
			ExpiresAt:   time.Now().Add(-1 * time.Hour),
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "new-access-token", token)
	})

	t.Run("redeems grant code when no refresh token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := r.ParseForm()
			require.NoError(t, err)
			assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
			assert.Equal(t, "1000.grant.code", r.Form.Get("code"))

			response := tokenResponse{
				AccessToken:  "granted-token",
				RefreshToken: "minted-refresh-token",
				ExpiresIn:    3600,
				TokenType:    "Bearer",
			}
			_ = json.NewEncoder(w).Encode(response)
		}))
		defer server.Close()

		manager := NewZohoTokenManager(&OAuth2Config{
			TokenURL:     server.URL + "/oauth/v2/token",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			GrantCode:    "1000.grant.code",
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "granted-token", token)

		// The minted refresh token replaces the single-use grant code.
		assert.Equal(t, "minted-refresh-token", manager.config.RefreshToken)
		assert.Empty(t, manager.config.GrantCode)
	})

	t.Run("surfaces provider error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)

			response := map[string]string{
				"error":             "invalid_code",
				"error_description": "grant code expired",
			}
			_ = json.NewEncoder(w).Encode(response)
		}))
		defer server.Close()

		manager := NewZohoTokenManager(&OAuth2Config{
			TokenURL:     server.URL + "/oauth/v2/token",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			GrantCode:    "1000.stale.code",
		})

		token, err := manager.GetToken(context.Background())
		require.Error(t, err)
		assert.Empty(t, token)

		authErr := &sdp.AuthError{}
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, http.StatusBadRequest, authErr.StatusCode)
		assert.Equal(t, "invalid_code", authErr.ErrorCode)
		assert.Contains(t, err.Error(), "invalid_code")
		assert.Contains(t, err.Error(), "grant code expired")

		// Nothing may be cached after a failed exchange.
		assert.Nil(t, manager.store.Get())
	})

	t.Run("rejects success body carrying error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Zoho reports some failures with HTTP 200 and an error body.
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_client_secret"})
		}))
		defer server.Close()

		manager := NewZohoTokenManager(&OAuth2Config{
			TokenURL:     server.URL + "/oauth/v2/token",
			ClientID:     "client-id",
			ClientSecret: "wrong-secret",
			RefreshToken: "refresh-token",
		})

		token, err := manager.GetToken(context.Background())
		require.Error(t, err)
		assert.Empty(t, token)
		assert.True(t, sdp.IsAuthError(err))
		assert.Contains(t, err.Error(), "invalid_client_secret")
		assert.Nil(t, manager.store.Get())
	})

	t.Run("rejects body without access token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"api_domain": "https://sdpondemand.manageengine.com"})
		}))
		defer server.Close()

		manager := NewZohoTokenManager(&OAuth2Config{
			TokenURL:     server.URL + "/oauth/v2/token",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RefreshToken: "refresh-token",
		})

		token, err := manager.GetToken(context.Background())
		require.Error(t, err)
		assert.Empty(t, token)
		assert.True(t, sdp.IsAuthError(err))
	})

	t.Run("no credentials available", func(t *testing.T) {
		manager := NewZohoTokenManager(&OAuth2Config{
			TokenURL: "http://example.com/oauth/v2/token",
		})

		token, err := manager.GetToken(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, sdp.ErrNoCredentials)
		assert.Empty(t, token)
	})
}

func TestZohoTokenManager_ExpiryFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No expires_in in the response
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "no-expiry-token"})
	}))
	defer server.Close()

	manager := NewZohoTokenManager(&OAuth2Config{
		TokenURL:     server.URL + "/oauth/v2/token",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "refresh-token",
	})

	_, err := manager.GetToken(context.Background())
	require.NoError(t, err)

	stored := manager.store.Get()
	require.NotNil(t, stored)
	assert.WithinDuration(t, time.Now().Add(1*time.Hour), stored.ExpiresAt, 10*time.Second)
}

func TestZohoTokenManager_ExpiresInAuthoritative(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := tokenResponse{
			AccessToken: "short-lived-token",
			ExpiresIn:   120,
		}
		_ = json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	manager := NewZohoTokenManager(&OAuth2Config{
		TokenURL:     server.URL + "/oauth/v2/token",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "refresh-token",
	})

	_, err := manager.GetToken(context.Background())
	require.NoError(t, err)

	stored := manager.store.Get()
	require.NotNil(t, stored)
	assert.WithinDuration(t, time.Now().Add(120*time.Second), stored.ExpiresAt, 10*time.Second)
}

func TestZohoTokenManager_SetToken(t *testing.T) {
	manager := NewZohoTokenManager(&OAuth2Config{})

	expiresAt := time.Now().Add(1 * time.Hour)
	manager.SetToken("manual-token", expiresAt)

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "manual-token", token)

	stored := manager.store.Get()
	assert.Equal(t, "manual-token", stored.AccessToken)
	assert.Equal(t, "bearer", stored.TokenType)
	assert.Equal(t, expiresAt.Unix(), stored.ExpiresAt.Unix())
}

func TestZohoTokenManager_RefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := tokenResponse{
			AccessToken: "refreshed-token",
			ExpiresIn:   3600,
			TokenType:   "Bearer",
		}
		_ = json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	manager := NewZohoTokenManager(&OAuth2Config{
		TokenURL:     server.URL + "/oauth/v2/token",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "refresh-token",
	})

	// Set a still-valid token; RefreshToken must replace it anyway.
	manager.SetToken("current-token", time.Now().Add(1*time.Hour))

	err := manager.RefreshToken(context.Background())
	require.NoError(t, err)

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed-token", token)
}

func TestZohoTokenManager_FailedRefreshLeavesStoreEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_client"})
	}))
	defer server.Close()

	manager := NewZohoTokenManager(&OAuth2Config{
		TokenURL:     server.URL + "/oauth/v2/token",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "revoked-refresh-token",
	})

	manager.SetToken("rejected-by-api", time.Now().Add(1*time.Hour))

	err := manager.RefreshToken(context.Background())
	require.Error(t, err)
	assert.True(t, sdp.IsAuthError(err))

	// The rejected token must not be presented again.
	assert.Nil(t, manager.CurrentToken())
}

func TestZohoTokenManager_ConcurrentGetToken(t *testing.T) {
	var exchanges int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&exchanges, 1)

		response := tokenResponse{
			AccessToken: "shared-token",
			ExpiresIn:   3600,
		}
		_ = json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	manager := NewZohoTokenManager(&OAuth2Config{
		TokenURL:     server.URL + "/oauth/v2/token",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "refresh-token",
	})

	var waitGroup sync.WaitGroup

	for i := 0; i < 10; i++ {
		waitGroup.Add(1)

		go func() {
			defer waitGroup.Done()

			token, err := manager.GetToken(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "shared-token", token)
		}()
	}

	waitGroup.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&exchanges))
}

func TestNewRefreshTokenManager(t *testing.T) {
	t.Run("builds the token endpoint from the accounts URL", func(t *testing.T) {
		manager := NewRefreshTokenManager("https://accounts.zoho.com", "client-id", "client-secret", "refresh-token")
		assert.NotNil(t, manager)
		assert.Equal(t, "https://accounts.zoho.com/oauth/v2/token", manager.config.TokenURL)
		assert.Equal(t, "client-id", manager.config.ClientID)
		assert.Equal(t, "client-secret", manager.config.ClientSecret)
		assert.Equal(t, "refresh-token", manager.config.RefreshToken)
	})

	t.Run("handles trailing slash in accounts URL", func(t *testing.T) {
		manager := NewRefreshTokenManager("https://accounts.zoho.eu/", "client-id", "client-secret", "refresh-token")
		assert.Equal(t, "https://accounts.zoho.eu/oauth/v2/token", manager.config.TokenURL)
	})
}

func TestNewGrantCodeTokenManager(t *testing.T) {
	manager := NewGrantCodeTokenManager(
		"https://accounts.zoho.com",
		"client-id",
		"client-secret",
		"1000.grant.code",
	)

	assert.NotNil(t, manager)
	assert.Equal(t, "https://accounts.zoho.com/oauth/v2/token", manager.config.TokenURL)
	assert.Equal(t, "client-id", manager.config.ClientID)
	assert.Equal(t, "client-secret", manager.config.ClientSecret)
	assert.Equal(t, "1000.grant.code", manager.config.GrantCode)
}

func TestParseTokenResponse_MalformedBody(t *testing.T) {
	_, err := parseTokenResponse(http.StatusBadGateway, []byte("<html>bad gateway</html>"))
	require.Error(t, err)

	authErr := &sdp.AuthError{}
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusBadGateway, authErr.StatusCode)
	assert.Contains(t, authErr.Body, "bad gateway")
}
