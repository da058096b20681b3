package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/sdp-client/internal/constants"
	internalhttp "github.com/fivetwenty-io/sdp-client/internal/http"
)

// Test static errors.
var (
	ErrTestMissingInputData = errors.New("request carries no input_data")
	ErrTestMissingPayload   = errors.New("input_data carries no payload key")
)

// NewTestClient creates a client without a token manager for tests.
func NewTestClient(baseURL string) *Client {
	httpClient := internalhttp.NewClient(baseURL, nil)

	client := &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}

	client.initializeResourceClients()

	return client
}

// DecodeInputData extracts the request's input_data parameter (form body on
// writes, query parameter on reads) and unmarshals its named payload into
// target. A nil target only checks that the key is present.
func DecodeInputData(request *http.Request, key string, target interface{}) error {
	if err := request.ParseForm(); err != nil {
		return fmt.Errorf("parsing form: %w", err)
	}

	raw := request.Form.Get("input_data")
	if raw == "" {
		return ErrTestMissingInputData
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return fmt.Errorf("parsing input_data: %w", err)
	}

	payload, ok := envelope[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTestMissingPayload, key)
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decoding %s payload: %w", key, err)
	}

	return nil
}

// WriteEnvelope writes an SDP response body wrapping payload under key.
func WriteEnvelope(t *testing.T, writer http.ResponseWriter, statusCode int, key string, payload interface{}) {
	t.Helper()

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)

	if payload == nil {
		return
	}

	err := json.NewEncoder(writer).Encode(map[string]interface{}{key: payload})
	require.NoError(t, err)
}

// WriteErrorEnvelope writes an SDP response_status failure body.
func WriteErrorEnvelope(t *testing.T, writer http.ResponseWriter, statusCode int, message string) {
	t.Helper()

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)

	body := map[string]interface{}{
		"response_status": map[string]interface{}{
			"status":      "failed",
			"status_code": constants.StatusCodeFailure,
			"messages": []map[string]interface{}{
				{"status_code": statusCode, "message": message, "type": "failed"},
			},
		},
	}

	err := json.NewEncoder(writer).Encode(body)
	require.NoError(t, err)
}

// TestGetOperation represents a generic get operation test case.
type TestGetOperation[TResponse any] struct {
	Name         string
	ID           string
	ExpectedPath string
	WireKey      string
	StatusCode   int
	Response     *TResponse
	WantErr      bool
	ErrMessage   string
}

// RunGetTests runs a series of get operation tests.
func RunGetTests[TResponse any](
	t *testing.T,
	tests []TestGetOperation[TResponse],
	getFunc func(*Client) func(context.Context, string) (*TResponse, error),
) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.ExpectedPath, request.URL.Path)
				assert.Equal(t, "GET", request.Method)

				if testCase.WantErr {
					WriteErrorEnvelope(t, writer, testCase.StatusCode, testCase.ErrMessage)

					return
				}

				WriteEnvelope(t, writer, testCase.StatusCode, testCase.WireKey, testCase.Response)
			}))
			defer server.Close()

			client := NewTestClient(server.URL)

			getFn := getFunc(client)
			result, err := getFn(context.Background(), testCase.ID)

			if testCase.WantErr {
				require.Error(t, err)

				if testCase.ErrMessage != "" {
					assert.Contains(t, err.Error(), testCase.ErrMessage)
				}

				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
			}
		})
	}
}

// TestDeleteOperation represents a generic delete operation test case.
type TestDeleteOperation struct {
	Name         string
	ID           string
	ExpectedPath string
	StatusCode   int
	WantErr      bool
	ErrMessage   string
}

// RunDeleteTests runs a series of delete operation tests.
func RunDeleteTests(
	t *testing.T,
	tests []TestDeleteOperation,
	deleteFunc func(*Client) func(context.Context, string) error,
) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.ExpectedPath, request.URL.Path)
				assert.Equal(t, "DELETE", request.Method)

				if testCase.WantErr {
					WriteErrorEnvelope(t, writer, testCase.StatusCode, testCase.ErrMessage)

					return
				}

				writer.WriteHeader(testCase.StatusCode)
			}))
			defer server.Close()

			client := NewTestClient(server.URL)

			deleteFn := deleteFunc(client)
			err := deleteFn(context.Background(), testCase.ID)

			if testCase.WantErr {
				require.Error(t, err)

				if testCase.ErrMessage != "" {
					assert.Contains(t, err.Error(), testCase.ErrMessage)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}
