package sdp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrSecretNotFound = errors.New("secret not found")
)

// Conventional secret names the client resolves when building credentials
// from a SecretStore.
const (
	SecretClientID     = "client_id"
	SecretClientSecret = "client_secret"
	SecretRefreshToken = "refresh_token"
	SecretGrantCode    = "grant_code"
)

// SecretStore resolves named secrets. Implementations back onto whatever
// holds credentials in a deployment: environment, files, a vault.
type SecretStore interface {
	Get(ctx context.Context, name string) (string, error)
}

// EnvSecretStore resolves secrets from environment variables. A name is
// upper-cased, dashes become underscores, and the prefix is prepended, so
// with prefix "SDP" the name "client_id" reads SDP_CLIENT_ID.
type EnvSecretStore struct {
	Prefix string
}

// Get implements SecretStore.
func (s *EnvSecretStore) Get(_ context.Context, name string) (string, error) {
	key := name
	if s.Prefix != "" {
		key = s.Prefix + "_" + name
	}

	key = strings.ToUpper(strings.ReplaceAll(key, "-", "_"))

	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, key)
	}

	return value, nil
}
