package sdp

import (
	"context"
	"errors"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrDeprecatedClientConstructor = errors.New("use github.com/fivetwenty-io/sdp-client/pkg/sdpclient.New to create a client")
)

// RequestsClient provides access to request (ticket) operations.
type RequestsClient interface {
	Create(ctx context.Context, input *RequestCreate) (*Request, error)
	Get(ctx context.Context, requestID string) (*Request, error)
	Update(ctx context.Context, requestID string, update *RequestUpdate) (*Request, error)
	Delete(ctx context.Context, requestID string) error
	List(ctx context.Context, listInfo *ListInfo) (*RequestList, error)
	Search(ctx context.Context, criteria []SearchCriteria, fields ...string) (*RequestList, error)
	Close(ctx context.Context, requestID string, input *CloseInput) error
	Pickup(ctx context.Context, requestID string) (*Request, error)
	Assign(ctx context.Context, requestID string, input *AssignInput) error
	PlaceOnHold(ctx context.Context, requestID string, opts OnHoldOptions) (*Request, error)
	Resolve(ctx context.Context, requestID string, resolution string) (*Request, error)
	Notes() RequestNotesClient
	Tasks() RequestTasksClient
}

// RequestNotesClient provides access to the notes of a request.
type RequestNotesClient interface {
	Create(ctx context.Context, requestID string, input *NoteInput) (*Note, error)
	Get(ctx context.Context, requestID, noteID string) (*Note, error)
	Update(ctx context.Context, requestID, noteID string, input *NoteInput) (*Note, error)
	Delete(ctx context.Context, requestID, noteID string) error
	List(ctx context.Context, requestID string, listInfo *ListInfo) (*NoteList, error)
}

// RequestTasksClient provides access to the tasks of a request.
type RequestTasksClient interface {
	Create(ctx context.Context, requestID string, input *TaskInput) (*Task, error)
	Get(ctx context.Context, requestID, taskID string) (*Task, error)
	Update(ctx context.Context, requestID, taskID string, input *TaskInput) (*Task, error)
	Delete(ctx context.Context, requestID, taskID string) error
	List(ctx context.Context, requestID string, listInfo *ListInfo) (*TaskList, error)
}

// TechniciansClient provides access to portal technicians.
type TechniciansClient interface {
	Get(ctx context.Context, technicianID string) (*Technician, error)
	List(ctx context.Context, listInfo *ListInfo) (*TechnicianList, error)
}

// Client is the typed ServiceDesk Plus Cloud API surface.
type Client interface {
	Requests() RequestsClient
	Technicians() TechniciansClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building an sdp.Client.
//
// # Authentication precedence
//
// The following precedence is applied by the concrete client implementation
// (see pkg/sdpclient and internal/client):
//  1. AccessToken: if set, it is used directly as a static Bearer token. It
//     cannot be refreshed, so a 401 after the built-in retry surfaces to the
//     caller.
//  2. RefreshToken + ClientID/ClientSecret: access tokens are minted and
//     renewed with the refresh_token grant. This is the recommended mode for
//     long-running processes.
//  3. GrantCode + ClientID/ClientSecret: the one-time grant code is exchanged
//     via the authorization_code grant. The code is consumed by the first
//     exchange; a process restart needs a fresh code or the refresh token
//     the exchange returned.
//  4. GrantFile: a self-client grant JSON exported from the Zoho developer
//     console, loaded by sdpclient.New into the fields above.
//  5. SecretStore: credentials resolved by conventional name (client_id,
//     client_secret, refresh_token, grant_code) from the given store.
//  6. No credentials: client construction fails.
//
// # Accounts endpoint
//
// Token exchanges go to the Zoho accounts host for the portal's data center.
// If AccountsURL is empty, sdpclient.New derives it from DataCenter
// ("us" → accounts.zoho.com, "eu" → accounts.zoho.eu, and so on); an empty
// DataCenter means "us".
//
// # Timeouts and retries
//
// Per-request deadlines should be controlled via the context passed to client
// methods; HTTPTimeout bounds any single HTTP exchange (default 30s). The
// client retries a request exactly once after a 401 by refreshing the token.
// Any other retry behavior is opt-in via RetryMax/RetryWaitMin/RetryWaitMax,
// which apply to 5xx and 429 responses only.
type Config struct {
	// Required fields
	// PortalURL: base URL of the portal, e.g.
	// "https://sdpondemand.manageengine.com/app/itdesk". sdpclient.New
	// normalizes this value by trimming a trailing slash, adding "https://"
	// when no scheme is present, and appending "/api/v3".
	PortalURL string

	// Authentication options (provide one)
	// ClientID: OAuth2 client ID registered in the Zoho API console.
	ClientID string
	// ClientSecret: OAuth2 client secret used with ClientID.
	ClientSecret string
	// RefreshToken: long-lived token used to mint access tokens.
	RefreshToken string
	// GrantCode: one-time authorization code exchanged on first use.
	GrantCode string
	// AccessToken: if set, used directly as a static Bearer token.
	AccessToken string
	// Scope: optional OAuth2 scope requested during exchange, e.g.
	// "SDPOnDemand.requests.ALL".
	Scope string
	// GrantFile: path to a self-client grant JSON file. sdpclient.New loads
	// it when no direct credentials are set.
	GrantFile string
	// SecretStore: credential source of last resort, consulted by
	// sdpclient.New when neither direct credentials nor GrantFile are set.
	SecretStore SecretStore

	// AccountsURL: full Zoho accounts base URL. If empty it is derived from
	// DataCenter.
	AccountsURL string
	// DataCenter: two-letter Zoho data center code ("us", "eu", "in", "au",
	// "jp", "cn", "uk", "ca", "sa"). Ignored when AccountsURL is set.
	DataCenter string

	// Optional configurations
	// HTTPTimeout: bound on a single HTTP exchange; 0 uses the 30s default.
	HTTPTimeout time.Duration
	// RetryMax: maximum opt-in retries for 5xx/429 responses. 0 disables
	// transport retries, which is the default contract.
	RetryMax int
	// RetryWaitMin: minimum backoff between opt-in retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between opt-in retries.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger is
	// provided. Credentials and tokens are never logged.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and helpers.
	Logger Logger
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
	// ExtraHeaders: provider- or portal-specific headers attached to every
	// request.
	ExtraHeaders map[string]string
}

// NewClient creates a new ServiceDesk Plus API client.
// Deprecated: Use github.com/fivetwenty-io/sdp-client/pkg/sdpclient.New instead.
func NewClient(config *Config) (Client, error) {
	return nil, ErrDeprecatedClientConstructor
}
