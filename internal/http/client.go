// Package http provides the low-level HTTP client for the ServiceDesk Plus
// Cloud API: bearer token attachment, the v3 media type, input_data
// form-encoding, and the single 401 refresh-and-replay.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/sdp-client/internal/auth"
	"github.com/fivetwenty-io/sdp-client/internal/constants"
	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
)

// AcceptHeader is the ServiceDesk Plus Cloud v3 media type.
const AcceptHeader = "application/vnd.manageengine.sdp.v3+json"

// defaultUserAgent identifies this client on the wire.
const defaultUserAgent = "sdp-client/" + constants.ClientVersion

// Request is one API call before encoding. A url.Values body is form-encoded
// (the provider's input_data convention for writes); any other body is
// JSON-encoded.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response is a decoded-enough API reply: status, headers, raw body.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client is the low-level HTTP client. All helpers route through Do.
type Client struct {
	baseURL      string
	tokenManager auth.TokenManager
	httpClient   *http.Client
	logger       sdp.Logger
	debug        bool
	userAgent    string
	extraHeaders map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug traces.
func WithLogger(logger sdp.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug toggles request/response tracing. Traces carry method, URL,
// status, and sizes; never credentials or bodies.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithExtraHeaders attaches fixed headers to every request. Per-request
// headers override them on conflict.
func WithExtraHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.extraHeaders = headers
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetryConfig opts in to transport-level retries with exponential
// backoff for 5xx and 429 responses. The client performs none by default;
// the single 401 refresh-and-replay in Do is separate and always on.
func WithRetryConfig(retryMax int, retryWaitMin, retryWaitMax time.Duration) Option {
	return func(c *Client) {
		retryClient := retryablehttp.NewClient()
		retryClient.RetryMax = retryMax
		retryClient.RetryWaitMin = retryWaitMin
		retryClient.RetryWaitMax = retryWaitMax
		retryClient.Logger = nil
		retryClient.HTTPClient.Timeout = c.httpClient.Timeout
		c.httpClient = retryClient.StandardClient()
	}
}

// NewClient creates a client for the given API base URL. A nil tokenManager
// sends unauthenticated requests, which the provider rejects; it is accepted
// for tests.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		tokenManager: tokenManager,
		httpClient: &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
		},
		userAgent: defaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do sends one API call. A 401 invalidates the cached token, refreshes, and
// replays the call exactly once; a second 401 surfaces like any other
// failure as *sdp.APIError. A failed re-exchange surfaces the token
// manager's error instead.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokenManager != nil {
		if refreshErr := c.tokenManager.RefreshToken(ctx); refreshErr != nil {
			if errors.Is(refreshErr, sdp.ErrStaticTokenCannotRefresh) {
				return resp, sdp.ParseResponseError(resp.StatusCode, resp.Body)
			}

			return resp, refreshErr
		}

		resp, err = c.send(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode >= 400 {
		return resp, sdp.ParseResponseError(resp.StatusCode, resp.Body)
	}

	return resp, nil
}

// Get performs a GET with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST with the given body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT with the given body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH with the given body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// send performs one round trip without any retry handling.
func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	c.logRequest(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}

	c.logResponse(resp)

	return resp, nil
}

// buildRequest encodes the body, attaches headers, and injects the bearer
// token.
func (c *Client) buildRequest(ctx context.Context, req *Request) (*http.Request, error) {
	endpoint := c.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var (
		reader      io.Reader
		contentType string
	)

	if req.Body != nil {
		switch body := req.Body.(type) {
		case url.Values:
			reader = strings.NewReader(body.Encode())
			contentType = "application/x-www-form-urlencoded"
		case []byte:
			reader = bytes.NewReader(body)
			contentType = "application/json"
		default:
			data, err := json.Marshal(req.Body)
			if err != nil {
				return nil, fmt.Errorf("encoding request body: %w", err)
			}

			reader = bytes.NewReader(data)
			contentType = "application/json"
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", AcceptHeader)
	httpReq.Header.Set("User-Agent", c.userAgent)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for name, value := range c.extraHeaders {
		httpReq.Header.Set(name, value)
	}

	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting token: %w", err)
		}

		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return httpReq, nil
}

// logRequest traces an outgoing request. The Authorization header is never
// logged.
func (c *Client) logRequest(req *http.Request) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})
}

// logResponse traces an incoming response.
func (c *Client) logResponse(resp *Response) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Response", map[string]interface{}{
		"status": resp.StatusCode,
		"bytes":  len(resp.Body),
	})
}
