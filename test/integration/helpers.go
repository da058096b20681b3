//go:build integration
// +build integration

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests. Credentials are
// read from SDP_TEST_* variables so they never collide with the SDP_*
// variables the CLI itself honors.
type TestConfig struct {
	PortalURL    string
	DataCenter   string
	ClientID     string
	ClientSecret string
	RefreshToken string
	SdpPath      string
	Verbose      bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		PortalURL:    os.Getenv("SDP_TEST_PORTAL_URL"),
		DataCenter:   os.Getenv("SDP_TEST_DATA_CENTER"),
		ClientID:     os.Getenv("SDP_TEST_CLIENT_ID"),
		ClientSecret: os.Getenv("SDP_TEST_CLIENT_SECRET"),
		RefreshToken: os.Getenv("SDP_TEST_REFRESH_TOKEN"),
		SdpPath:      getSdpPath(),
		Verbose:      os.Getenv("SDP_TEST_VERBOSE") == "true",
	}
}

// getSdpPath determines the path to the sdp binary
func getSdpPath() string {
	if path := os.Getenv("SDP_BINARY_PATH"); path != "" {
		return path
	}

	// Try common locations
	candidates := []string{
		"../../sdp",
		"./sdp",
		"../sdp",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "sdp" // Fallback to PATH
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	if config.PortalURL == "" {
		t.Skip("SDP_TEST_PORTAL_URL not set, skipping integration test")
	}

	if config.ClientID == "" || config.ClientSecret == "" || config.RefreshToken == "" {
		t.Skip("SDP_TEST_CLIENT_ID, SDP_TEST_CLIENT_SECRET or SDP_TEST_REFRESH_TOKEN not set, skipping integration test")
	}

	if _, err := os.Stat(config.SdpPath); os.IsNotExist(err) {
		t.Skipf("sdp binary not found at %s, skipping integration test", config.SdpPath)
	}
}

// CommandRunner provides utilities for running sdp commands. Each runner
// points HOME at a per-test directory so login state never touches the
// developer's real ~/.sdp.
type CommandRunner struct {
	config  *TestConfig
	t       *testing.T
	homeDir string
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config:  config,
		t:       t,
		homeDir: t.TempDir(),
	}
}

// Run executes an sdp command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.SdpPath, args...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Env = append(os.Environ(), "HOME="+runner.homeDir)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.SdpPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunWithInput executes an sdp command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.SdpPath, args...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)
	cmd.Env = append(os.Environ(), "HOME="+runner.homeDir)

	if runner.config.Verbose {
		runner.t.Logf("Running with input: %s %s", runner.config.SdpPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// LoginPortal authenticates the runner's isolated config against the test
// portal using the refresh token grant
func (runner *CommandRunner) LoginPortal() error {
	args := []string{"login",
		"--portal-url", runner.config.PortalURL,
		"--name", "integration",
		"--client-id", runner.config.ClientID,
		"--client-secret", runner.config.ClientSecret,
		"--refresh-token", runner.config.RefreshToken,
	}

	if runner.config.DataCenter != "" {
		args = append(args, "--data-center", runner.config.DataCenter)
	}

	_, stderr, err := runner.Run(args...)
	if err != nil {
		return fmt.Errorf("failed to log in to test portal: %s", stderr)
	}
	return nil
}

// GenerateTestSubject creates a unique request subject
func GenerateTestSubject(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().Unix())
}

// ExtractRequestID pulls the new request ID out of create command output
func ExtractRequestID(t *testing.T, output string) string {
	const marker = "with ID "

	index := strings.LastIndex(output, marker)
	if index == -1 {
		t.Fatalf("Create output did not contain a request ID: %s", output)
	}

	id := strings.TrimSpace(output[index+len(marker):])
	if id == "" {
		t.Fatalf("Create output contained an empty request ID: %s", output)
	}

	return id
}

// CleanupRequest attempts to delete a test request
func (runner *CommandRunner) CleanupRequest(requestID string) {
	stdout, stderr, err := runner.Run("requests", "delete", requestID, "--force")
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for request %s: %s\nStderr: %s", requestID, stdout, stderr)
	}
}

// WaitForCondition waits for a condition to be met with timeout
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	timeoutChan := time.After(timeout)

	for {
		select {
		case <-ticker.C:
			if condition() {
				return
			}
		case <-timeoutChan:
			t.Fatalf("Timeout waiting for condition: %s", message)
		}
	}
}

// AssertJSONOutput verifies command output is valid JSON
func AssertJSONOutput(t *testing.T, output string) {
	// Basic JSON validation
	output = strings.TrimSpace(output)
	if !strings.HasPrefix(output, "{") && !strings.HasPrefix(output, "[") {
		t.Errorf("Output does not appear to be JSON: %s", output)
	}
}

// AssertYAMLOutput verifies command output is valid YAML
func AssertYAMLOutput(t *testing.T, output string) {
	// Basic YAML validation
	output = strings.TrimSpace(output)
	if strings.Contains(output, "---") || strings.Contains(output, ":") {
		return // Looks like YAML
	}
	t.Errorf("Output does not appear to be YAML: %s", output)
}
