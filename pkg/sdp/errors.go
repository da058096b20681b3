package sdp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports malformed or incomplete call input. It is detected
// locally and never sent over the wire.
type ValidationError struct {
	Field   string `json:"field"   yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}

	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a named input field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AuthError reports a failed credential exchange with the identity provider.
// It carries the provider's error body so operators can distinguish an
// expired grant from a misconfigured client.
type AuthError struct {
	StatusCode  int    `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	ErrorCode   string `json:"error_code,omitempty"  yaml:"error_code,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Body        string `json:"body,omitempty"        yaml:"body,omitempty"`
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	var sb strings.Builder

	sb.WriteString("authentication failed")

	if e.ErrorCode != "" {
		sb.WriteString(": " + e.ErrorCode)
	}

	if e.Description != "" {
		sb.WriteString(": " + e.Description)
	}

	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " (status: %d)", e.StatusCode)
	}

	return sb.String()
}

// StatusMessage is one entry of the provider's response_status messages list.
type StatusMessage struct {
	StatusCode int    `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Type       string `json:"type,omitempty"        yaml:"type,omitempty"`
	Message    string `json:"message,omitempty"     yaml:"message,omitempty"`
	Field      string `json:"field,omitempty"       yaml:"field,omitempty"`
}

// ResponseStatus is the provider's operation status envelope. List endpoints
// wrap it in a single-element array, detail endpoints return a bare object;
// UnmarshalJSON accepts both.
type ResponseStatus struct {
	Status     string          `json:"status"               yaml:"status"`
	StatusCode int             `json:"status_code"          yaml:"status_code"`
	Messages   []StatusMessage `json:"messages,omitempty"   yaml:"messages,omitempty"`
}

// UnmarshalJSON accepts a bare object or a single-element array.
func (s *ResponseStatus) UnmarshalJSON(data []byte) error {
	type plain ResponseStatus

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var list []plain
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("unmarshaling response_status list: %w", err)
		}

		if len(list) > 0 {
			*s = ResponseStatus(list[0])
		}

		return nil
	}

	var single plain
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("unmarshaling response_status: %w", err)
	}

	*s = ResponseStatus(single)

	return nil
}

// APIError represents a non-2xx response from the ServiceDesk Plus API. It
// carries the HTTP status, the raw body, and the parsed response_status
// messages when the body carries them.
type APIError struct {
	StatusCode int             `json:"status_code"        yaml:"status_code"`
	Body       string          `json:"body,omitempty"     yaml:"body,omitempty"`
	Messages   []StatusMessage `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	first := e.FirstMessage()
	if first != nil && first.Message != "" {
		return fmt.Sprintf("API error (status: %d): %s", e.StatusCode, first.Message)
	}

	return fmt.Sprintf("API error (status: %d)", e.StatusCode)
}

// FirstMessage returns the first provider message or nil.
func (e *APIError) FirstMessage() *StatusMessage {
	if len(e.Messages) > 0 {
		return &e.Messages[0]
	}

	return nil
}

// ParseResponseError builds an APIError from a non-2xx response body,
// extracting response_status messages when present. A body that is not the
// provider's envelope still yields a usable APIError.
func ParseResponseError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}

	var envelope struct {
		ResponseStatus ResponseStatus `json:"response_status"`
	}

	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Messages = envelope.ResponseStatus.Messages

		if len(apiErr.Messages) == 0 && envelope.ResponseStatus.Status != "" &&
			envelope.ResponseStatus.Status != "success" {
			apiErr.Messages = []StatusMessage{{
				StatusCode: envelope.ResponseStatus.StatusCode,
				Message:    envelope.ResponseStatus.Status,
			}}
		}
	}

	return apiErr
}

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired           = errors.New("config is required")
	ErrPortalURLRequired        = errors.New("portal URL is required")
	ErrNoHostInURL              = errors.New("no host specified in URL")
	ErrNoCredentials            = errors.New("no valid credentials available")
	ErrStaticTokenCannotRefresh = errors.New("static token cannot be refreshed")
	ErrCircuitBreakerOpen       = errors.New("circuit breaker is open")
	ErrNoMoreItems              = errors.New("no more items")
	ErrUnexpectedFieldType      = errors.New("unexpected field type")
	ErrCacheKeyNotFound         = errors.New("key not found")
	ErrCacheEntryExpired        = errors.New("entry expired")
	ErrCacheValueTooLarge       = errors.New("cache value exceeds maximum size")
	ErrUnknownCacheType         = errors.New("unknown cache type")
	ErrNATSURLRequired          = errors.New("NATS URL is required for NATS cache")
	ErrBatchOperationTimeout    = errors.New("batch operation timed out")
	ErrNoPortalsConfigured      = errors.New("no portals configured")
	ErrCurrentPortalNotFound    = errors.New("current portal not found")
	ErrPortalNotFound           = errors.New("portal not found")
	ErrNotAuthenticated         = errors.New("not authenticated")
	ErrUnknownConfigKey         = errors.New("unknown configuration key")
	ErrTokenFieldsCannotUnset   = errors.New("token fields cannot be unset via config")
)

// IsValidationError checks if the error is a local validation error.
func IsValidationError(err error) bool {
	validationErr := &ValidationError{}

	return errors.As(err, &validationErr)
}

// IsAuthError checks if the error is a credential exchange failure.
func IsAuthError(err error) bool {
	authErr := &AuthError{}

	return errors.As(err, &authErr)
}

// IsNotFound checks if the error is a not found API error.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}

	return false
}

// IsUnauthorized checks if the error is an unauthorized API error.
func IsUnauthorized(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401
	}

	return false
}

// IsRateLimited checks if the error is a rate limit API error.
func IsRateLimited(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}

	return false
}
