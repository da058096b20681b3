package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	sdphttp "github.com/fivetwenty-io/sdp-client/internal/http"
	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockTokenManager for testing.
type MockTokenManager struct {
	mu           sync.Mutex
	token        string
	err          error
	refreshErr   error
	refreshTo    string
	refreshCount int
}

func (m *MockTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.token, m.err
}

func (m *MockTokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refreshCount++

	if m.refreshErr != nil {
		return m.refreshErr
	}

	if m.refreshTo != "" {
		m.token = m.refreshTo
	}

	return nil
}

func (m *MockTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
}

func (m *MockTokenManager) refreshes() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.refreshCount
}

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/v3/requests/8", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
			assert.Equal(t, "application/vnd.manageengine.sdp.v3+json", request.Header.Get("Accept"))

			response := map[string]map[string]string{"request": {"id": "8", "subject": "Printer is broken"}}
			_ = json.NewEncoder(writer).Encode(response)
		}))
		defer server.Close()

		tokenManager := &MockTokenManager{token: "test-token"}
		client := sdphttp.NewClient(server.URL, tokenManager)

		req := &sdphttp.Request{
			Method: "GET",
			Path:   "/api/v3/requests/8",
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result map[string]map[string]string

		err = json.Unmarshal(resp.Body, &result)
		require.NoError(t, err)
		assert.Equal(t, "8", result["request"]["id"])
		assert.Equal(t, "Printer is broken", result["request"]["subject"])
	})

	t.Run("request with input_data query parameter", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/v3/requests", request.URL.Path)
			assert.JSONEq(t, `{"list_info":{"row_count":100}}`, request.URL.Query().Get("input_data"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := sdphttp.NewClient(server.URL, nil)

		req := &sdphttp.Request{
			Method: "GET",
			Path:   "/api/v3/requests",
			Query:  url.Values{"input_data": []string{`{"list_info":{"row_count":100}}`}},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("form-encodes url.Values bodies", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/x-www-form-urlencoded", request.Header.Get("Content-Type"))

			err := request.ParseForm()
			require.NoError(t, err)
			assert.JSONEq(t, `{"request":{"subject":"Printer is broken"}}`, request.Form.Get("input_data"))

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := sdphttp.NewClient(server.URL, nil)

		req := &sdphttp.Request{
			Method: "POST",
			Path:   "/api/v3/requests",
			Body:   url.Values{"input_data": []string{`{"request":{"subject":"Printer is broken"}}`}},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("JSON-encodes other bodies", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "value", body["key"])

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := sdphttp.NewClient(server.URL, nil)

		req := &sdphttp.Request{
			Method: "POST",
			Path:   "/api/v3/requests",
			Body:   map[string]string{"key": "value"},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("error response parses the status envelope", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{
				"response_status": {
					"status": "failed",
					"status_code": 4000,
					"messages": [{"status_code": 4007, "message": "Invalid URL", "type": "failed"}]
				}
			}`))
		}))
		defer server.Close()

		client := sdphttp.NewClient(server.URL, nil)

		req := &sdphttp.Request{
			Method: "GET",
			Path:   "/api/v3/requests/999999",
		}

		resp, err := client.Do(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, 404, resp.StatusCode)

		apiErr := &sdp.APIError{}
		ok := errors.As(err, &apiErr)
		require.True(t, ok)
		assert.Equal(t, 404, apiErr.StatusCode)
		require.Len(t, apiErr.Messages, 1)
		assert.Equal(t, "Invalid URL", apiErr.Messages[0].Message)
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := sdphttp.NewClient(server.URL, nil)

		req := &sdphttp.Request{
			Method: "GET",
			Path:   "/api/v3/requests",
			Headers: map[string]string{
				"X-Custom-Header": "custom-value",
			},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := sdphttp.NewClient(server.URL, nil, sdphttp.WithLogger(logger), sdphttp.WithDebug(true))

		req := &sdphttp.Request{
			Method: "GET",
			Path:   "/api/v3/requests",
		}

		_, err := client.Do(context.Background(), req)
		require.NoError(t, err)

		// Should have logged request and response
		assert.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_TokenRefreshOn401(t *testing.T) {
	t.Parallel()
	t.Run("refreshes and replays exactly once", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++

			if request.Header.Get("Authorization") == "Bearer stale-token" {
				writer.WriteHeader(http.StatusUnauthorized)

				return
			}

			assert.Equal(t, "Bearer fresh-token", request.Header.Get("Authorization"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		tokenManager := &MockTokenManager{token: "stale-token", refreshTo: "fresh-token"}
		client := sdphttp.NewClient(server.URL, tokenManager)

		resp, err := client.Get(context.Background(), "/api/v3/requests", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 2, attempts)
		assert.Equal(t, 1, tokenManager.refreshes())
	})

	t.Run("second 401 surfaces as APIError without further retry", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"response_status": {"status": "failed", "messages": [{"message": "UNAUTHORISED"}]}}`))
		}))
		defer server.Close()

		tokenManager := &MockTokenManager{token: "stale-token", refreshTo: "still-rejected"}
		client := sdphttp.NewClient(server.URL, tokenManager)

		resp, err := client.Get(context.Background(), "/api/v3/requests", nil)
		require.Error(t, err)
		assert.Equal(t, 401, resp.StatusCode)
		assert.Equal(t, 2, attempts)
		assert.Equal(t, 1, tokenManager.refreshes())

		apiErr := &sdp.APIError{}
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 401, apiErr.StatusCode)
	})

	t.Run("failed re-exchange surfaces the auth error", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			writer.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		tokenManager := &MockTokenManager{
			token:      "stale-token",
			refreshErr: &sdp.AuthError{StatusCode: 400, ErrorCode: "invalid_code"},
		}
		client := sdphttp.NewClient(server.URL, tokenManager)

		_, err := client.Get(context.Background(), "/api/v3/requests", nil)
		require.Error(t, err)
		assert.True(t, sdp.IsAuthError(err))
		assert.Equal(t, 1, attempts)
	})

	t.Run("static token falls through to APIError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		tokenManager := &MockTokenManager{
			token:      "static-token",
			refreshErr: sdp.ErrStaticTokenCannotRefresh,
		}
		client := sdphttp.NewClient(server.URL, tokenManager)

		_, err := client.Get(context.Background(), "/api/v3/requests", nil)
		require.Error(t, err)

		apiErr := &sdp.APIError{}
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 401, apiErr.StatusCode)
	})

	t.Run("token manager failure aborts the request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			t.Error("no request should be sent without a token")
		}))
		defer server.Close()

		tokenManager := &MockTokenManager{err: &sdp.AuthError{StatusCode: 400, ErrorCode: "invalid_client"}}
		client := sdphttp.NewClient(server.URL, tokenManager)

		_, err := client.Get(context.Background(), "/api/v3/requests", nil)
		require.Error(t, err)
		assert.True(t, sdp.IsAuthError(err))
	})
}

func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		fn     func(*sdphttp.Client, context.Context) (*sdphttp.Response, error)
	}{
		{
			name:   "GET",
			method: "GET",
			fn: func(c *sdphttp.Client, ctx context.Context) (*sdphttp.Response, error) {
				return c.Get(ctx, "/test", nil)
			},
		},
		{
			name:   "POST",
			method: "POST",
			fn: func(c *sdphttp.Client, ctx context.Context) (*sdphttp.Response, error) {
				return c.Post(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PUT",
			method: "PUT",
			fn: func(c *sdphttp.Client, ctx context.Context) (*sdphttp.Response, error) {
				return c.Put(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PATCH",
			method: "PATCH",
			fn: func(c *sdphttp.Client, ctx context.Context) (*sdphttp.Response, error) {
				return c.Patch(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "DELETE",
			method: "DELETE",
			fn: func(c *sdphttp.Client, ctx context.Context) (*sdphttp.Response, error) {
				return c.Delete(ctx, "/test")
			},
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, "/test", request.URL.Path)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := sdphttp.NewClient(server.URL, nil)
			resp, err := testCase.fn(client, context.Background())
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("no transport retries by default", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := sdphttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, 1, attempts)
	})

	t.Run("retries on 5xx errors when opted in", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			if attempts < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := sdphttp.NewClient(server.URL, nil, sdphttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 3, attempts)
	})

	t.Run("retries on rate limiting when opted in", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			if attempts < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := sdphttp.NewClient(server.URL, nil, sdphttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 2, attempts)
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++

			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := sdphttp.NewClient(server.URL, nil, sdphttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, 1, attempts) // Should not retry
	})
}
