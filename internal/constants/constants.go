package constants

import "time"

// ClientVersion is reported in the User-Agent header and by the CLI's
// version command.
const ClientVersion = "0.3.0"

// DefaultAccountsURL is the Zoho accounts endpoint for the US data center,
// used when neither AccountsURL nor DataCenter is configured.
const DefaultAccountsURL = "https://accounts.zoho.com"

// APIBasePath is the versioned API root appended to a portal URL.
const APIBasePath = "/api/v3"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// TokenExchangeTimeout bounds a single token endpoint round trip.
	TokenExchangeTimeout = 15 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. The client performs no transport-level retries unless a
// caller opts in; these bound the opt-in configuration.
const (
	// DefaultRetryMax disables transport retries.
	DefaultRetryMax = 0

	// OptInRetryMax is the retry ceiling suggested for opt-in callers.
	OptInRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait between opt-in retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait between opt-in retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Concurrency and batching limits.
const (
	// DefaultConcurrencyLimit limits concurrent batch operations.
	DefaultConcurrencyLimit = 3

	// BufferSize is the default buffer size for channels.
	BufferSize = 100

	// SmallBufferSize is used for smaller buffers.
	SmallBufferSize = 10
)

// Token lifecycle.
const (
	// DefaultTokenTTL is assumed when the token endpoint omits expires_in.
	DefaultTokenTTL = 1 * time.Hour

	// TokenExpirationBuffer is the buffer time before token expiration.
	TokenExpirationBuffer = 30 * time.Second
)

// ServiceDesk Plus list_info defaults.
const (
	// DefaultRowCount is the number of rows a search requests per page.
	DefaultRowCount = 100

	// DefaultStartIndex is the first row index in a list_info envelope.
	DefaultStartIndex = 1

	// MaxRowCount is the largest page the provider serves.
	MaxRowCount = 100

	// MaxPages caps pagination loops so a bad has_more_rows cannot spin.
	MaxPages = 50
)

// ServiceDesk Plus response_status codes.
const (
	// StatusCodeSuccess is the provider's success status_code.
	StatusCodeSuccess = 2000

	// StatusCodeFailure is the provider's generic failure status_code.
	StatusCodeFailure = 4000
)

// Cache sizing.
const (
	// DefaultCacheSize is the default cache entry limit.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultCacheSetTTL is the default TTL when setting cache values.
	DefaultCacheSetTTL = 10 * time.Minute

	// RequestsCacheTTL is the TTL for request list responses.
	RequestsCacheTTL = 30 * time.Second

	// TechniciansCacheTTL is the TTL for technician listings.
	TechniciansCacheTTL = 10 * time.Minute
)

// Circuit breaker tuning.
const (
	// CircuitBreakerThreshold is the failure threshold for the circuit breaker.
	CircuitBreakerThreshold = 5

	// CircuitBreakerSuccessThreshold is the success threshold for the circuit breaker.
	CircuitBreakerSuccessThreshold = 2

	// CircuitBreakerTimeout is the open-state timeout for the circuit breaker.
	CircuitBreakerTimeout = 30 * time.Second
)

// State and status constants.
const (
	// StatusOpen indicates an open circuit breaker state.
	StatusOpen = "open"

	// StatusHalfOpen indicates a half-open circuit breaker state.
	StatusHalfOpen = "half-open"

	// StatusClosed indicates a closed circuit breaker state.
	StatusClosed = "closed"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// CheckMarkSymbol marks the active portal in listings.
	CheckMarkSymbol = "✓"
)

// Format constants.
const (
	// FormatTable for table output format.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)

// Display limits.
const (
	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2

	// MinimumArgumentCount is the minimum number of command line arguments.
	MinimumArgumentCount = 2

	// SubjectDisplayLength is the length for displaying ticket subjects.
	SubjectDisplayLength = 60

	// PercentageMultiplier converts decimals to percentages.
	PercentageMultiplier = 100
)
