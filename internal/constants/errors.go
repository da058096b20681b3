package constants

import "errors"

// Portal and configuration errors.
var (
	ErrNoPortalsConfigured = errors.New("no portals configured, use 'sdp login' to add one")
	ErrPortalNotFound      = errors.New("portal configuration not found")
	ErrNoRefreshToken      = errors.New("no refresh token available for this portal, please run 'sdp login' again")
)

// Credential errors.
var (
	ErrNoClientID     = errors.New("client ID is required")
	ErrNoClientSecret = errors.New("client secret is required")
	ErrNoGrantCode    = errors.New("grant code is required for authorization_code exchange")
)

// Validation errors.
var (
	ErrInvalidRowCount = errors.New("row count must be between 1 and 100")
)

// File system errors.
var (
	ErrNotRegularFile = errors.New("path is not a regular file")
)
