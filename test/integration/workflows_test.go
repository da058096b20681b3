//go:build integration
// +build integration

package integration

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRequestWorkflow_CompleteLifecycle walks a request from creation through
// notes, on-hold, resolution and closure
func TestRequestWorkflow_CompleteLifecycle(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	// Setup
	require.NoError(t, runner.LoginPortal())

	subject := GenerateTestSubject("workflow-request")

	// 1. Create a request
	stdout, stderr, err := runner.Run("requests", "create",
		"--subject", subject,
		"--description", "Created by the integration workflow test",
		"--priority", "Low")
	require.NoError(t, err, "Failed to create request: %s", stderr)
	assert.Contains(t, stdout, "Successfully created request")

	requestID := ExtractRequestID(t, stdout)

	defer func() {
		// Cleanup
		runner.CleanupRequest(requestID)
	}()

	// 2. Verify the request with JSON output
	stdout, stderr, err = runner.Run("requests", "get", requestID, "--output", "json")
	require.NoError(t, err, "Failed to get request with JSON output: %s", stderr)
	AssertJSONOutput(t, stdout)
	assert.Contains(t, stdout, subject)

	// 3. Add a note
	stdout, stderr, err = runner.Run("requests", "notes", "add", requestID,
		"--description", "Triage complete, waiting on parts")
	require.NoError(t, err, "Failed to add note: %s", stderr)
	assert.Contains(t, stdout, "Successfully added note")

	// 4. Verify the note shows up in the listing
	stdout, stderr, err = runner.Run("requests", "notes", "list", requestID)
	require.NoError(t, err, "Failed to list notes: %s", stderr)
	assert.Contains(t, stdout, "Triage complete")

	// 5. Place the request on hold until tomorrow
	resumeTime := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	stdout, stderr, err = runner.Run("requests", "onhold", requestID,
		"--resume-time", resumeTime,
		"--comment", "Parts arrive tomorrow")
	require.NoError(t, err, "Failed to place request on hold: %s", stderr)
	assert.Contains(t, stdout, "on hold")

	// 6. Update the request while held
	stdout, stderr, err = runner.Run("requests", "update", requestID,
		"--priority", "Medium")
	require.NoError(t, err, "Failed to update request: %s", stderr)
	assert.Contains(t, stdout, "Successfully updated request")

	// 7. Resolve the request
	stdout, stderr, err = runner.Run("requests", "resolve", requestID,
		"Replaced the faulty cable")
	require.NoError(t, err, "Failed to resolve request: %s", stderr)
	assert.Contains(t, stdout, "Successfully resolved request")

	// 8. Close the request
	stdout, stderr, err = runner.Run("requests", "close", requestID,
		"--comment", "Verified with the requester")
	require.NoError(t, err, "Failed to close request: %s", stderr)
	assert.Contains(t, stdout, "Successfully closed request")

	// 9. Confirm the closed status
	stdout, stderr, err = runner.Run("requests", "get", requestID)
	require.NoError(t, err, "Failed to get closed request: %s", stderr)
	assert.Contains(t, stdout, "Closed")
}

// TestRequestWorkflow_OutputFormats tests all output formats work correctly
func TestRequestWorkflow_OutputFormats(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	// Setup
	require.NoError(t, runner.LoginPortal())

	formats := []string{"table", "json", "yaml"}

	for _, format := range formats {
		t.Run(fmt.Sprintf("list_%s_format", format), func(t *testing.T) {
			stdout, stderr, err := runner.Run("requests", "list", "--row-count", "5", "--output", format)
			require.NoError(t, err, "Failed to list requests with %s format: %s", format, stderr)

			switch format {
			case "json":
				AssertJSONOutput(t, stdout)
			case "yaml":
				AssertYAMLOutput(t, stdout)
			case "table":
				assert.NotEmpty(t, stdout)
			}
		})
	}
}

// TestRequestWorkflow_ErrorScenarios tests error handling in real scenarios
func TestRequestWorkflow_ErrorScenarios(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	// Fresh runner, deliberately not logged in
	runner := NewCommandRunner(config, t)

	testCases := []struct {
		name        string
		args        []string
		expectError bool
		errorText   string
	}{
		{
			name:        "list requests without login",
			args:        []string{"requests", "list"},
			expectError: true,
			errorText:   "no portals configured",
		},
		{
			name:        "get request without login",
			args:        []string{"requests", "get", "12345"},
			expectError: true,
			errorText:   "no portals configured",
		},
		{
			name:        "search without filters",
			args:        []string{"requests", "search"},
			expectError: true,
			errorText:   "at least one --filter is required",
		},
		{
			name:        "search with malformed filter",
			args:        []string{"requests", "search", "--filter", "status-is-Open"},
			expectError: true,
			errorText:   "invalid filter format",
		},
		{
			name:        "onhold with unparseable resume time",
			args:        []string{"requests", "onhold", "12345", "--resume-time", "next tuesday"},
			expectError: true,
			errorText:   "resume time must be RFC3339",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, stderr, err := runner.Run(tc.args...)
			if tc.expectError {
				assert.Error(t, err, "Expected error for: %s", tc.name)
				if tc.errorText != "" {
					assert.Contains(t, stderr, tc.errorText, "Expected specific error text")
				}
			} else {
				assert.NoError(t, err, "Unexpected error for: %s\nStderr: %s", tc.name, stderr)
			}
		})
	}
}

// TestRequestWorkflow_SearchAndPagination tests list commands with filters
// and pagination
func TestRequestWorkflow_SearchAndPagination(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	// Setup
	require.NoError(t, runner.LoginPortal())

	// Test request listing with a small page
	stdout, stderr, err := runner.Run("requests", "list", "--row-count", "5")
	require.NoError(t, err, "Failed to list requests with pagination: %s", stderr)
	assert.NotEmpty(t, stdout)

	// Test request listing with a filter
	_, stderr, err = runner.Run("requests", "list",
		"--filter", "status.name:is:Open",
		"--row-count", "10")
	require.NoError(t, err, "Failed to list requests with filter: %s", stderr)

	// Test searching with a field projection
	_, stderr, err = runner.Run("requests", "search",
		"--filter", "status.name:is:Open",
		"--fields", "id,subject,status")
	require.NoError(t, err, "Failed to search requests: %s", stderr)

	// Test technician listing
	stdout, stderr, err = runner.Run("technicians", "list", "--row-count", "5")
	require.NoError(t, err, "Failed to list technicians: %s", stderr)
	assert.NotEmpty(t, stdout)
}

// TestTokenWorkflow_StatusAndRefresh tests token lifecycle management
func TestTokenWorkflow_StatusAndRefresh(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	// Setup
	require.NoError(t, runner.LoginPortal())

	// Token status shows the stored token
	stdout, stderr, err := runner.Run("token", "status")
	require.NoError(t, err, "Failed to get token status: %s", stderr)
	assert.Contains(t, stdout, "Token Status for portal")
	assert.Contains(t, stdout, "integration")

	// Refresh mints a new access token
	stdout, stderr, err = runner.Run("token", "refresh")
	require.NoError(t, err, "Failed to refresh token: %s", stderr)
	assert.Contains(t, stdout, "Refreshing token for portal")
	assert.Contains(t, stdout, "Refreshed token")

	// The refreshed token is immediately usable
	_, stderr, err = runner.Run("requests", "list", "--row-count", "1")
	require.NoError(t, err, "Failed to list requests after refresh: %s", stderr)
}

// TestConfigWorkflow_PortalManagement tests portal configuration commands
func TestConfigWorkflow_PortalManagement(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	// Setup
	require.NoError(t, runner.LoginPortal())

	// The logged-in portal is listed
	stdout, stderr, err := runner.Run("config", "portals")
	require.NoError(t, err, "Failed to list portals: %s", stderr)
	assert.Contains(t, stdout, "integration")

	// Show includes the portal URL
	stdout, stderr, err = runner.Run("config", "show")
	require.NoError(t, err, "Failed to show config: %s", stderr)
	assert.Contains(t, stdout, "integration")

	// Logout clears the stored tokens but keeps the portal entry
	stdout, stderr, err = runner.Run("logout")
	require.NoError(t, err, "Failed to log out: %s", stderr)
	assert.Contains(t, stdout, "Successfully logged out")

	// Listing afterwards fails because no credentials remain
	_, stderr, err = runner.Run("requests", "list")
	assert.Error(t, err, "Expected error after logout")
	assert.Contains(t, stderr, "not authenticated")
}
