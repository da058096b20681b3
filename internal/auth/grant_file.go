package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fivetwenty-io/sdp-client/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrInvalidGrantFile = errors.New("invalid grant file")
)

// GrantFile mirrors the JSON document the Zoho developer console exports for
// a self client: the one-time grant code plus the client credentials it was
// issued for.
type GrantFile struct {
	Code         string `json:"code"`
	GrantType    string `json:"grant_type,omitempty"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// LoadGrantFile reads and validates a grant file.
func LoadGrantFile(path string) (*GrantFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading grant file: %w", err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", constants.ErrNotRegularFile, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading grant file: %w", err)
	}

	var grant GrantFile
	if err := json.Unmarshal(data, &grant); err != nil {
		return nil, fmt.Errorf("parsing grant file: %w", err)
	}

	if grant.Code == "" {
		return nil, fmt.Errorf("%w: missing code", ErrInvalidGrantFile)
	}

	if grant.ClientID == "" || grant.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client credentials", ErrInvalidGrantFile)
	}

	return &grant, nil
}

// Config converts the grant file into an exchange configuration against the
// given accounts server.
func (g *GrantFile) Config(accountsURL string) *OAuth2Config {
	return &OAuth2Config{
		TokenURL:     TokenURL(accountsURL),
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		GrantCode:    g.Code,
	}
}
