package sdp_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterceptorChain_RequestInterceptors(t *testing.T) {
	chain := sdp.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *sdp.APIRequest) error {
		executionOrder = append(executionOrder, "first")
		return nil
	})

	chain.AddRequestInterceptor(func(ctx context.Context, req *sdp.APIRequest) error {
		executionOrder = append(executionOrder, "second")
		return nil
	})

	req := &sdp.APIRequest{
		Method: "GET",
		Path:   "/requests",
	}

	err := chain.ExecuteRequestInterceptors(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_ResponseInterceptors(t *testing.T) {
	chain := sdp.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddResponseInterceptor(func(ctx context.Context, req *sdp.APIRequest, resp *sdp.APIResponse) error {
		executionOrder = append(executionOrder, "first")
		return nil
	})

	chain.AddResponseInterceptor(func(ctx context.Context, req *sdp.APIRequest, resp *sdp.APIResponse) error {
		executionOrder = append(executionOrder, "second")
		return nil
	})

	req := &sdp.APIRequest{
		Method: "GET",
		Path:   "/requests",
	}
	resp := &sdp.APIResponse{
		StatusCode: 200,
	}

	err := chain.ExecuteResponseInterceptors(ctx, req, resp)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_RequestInterceptorError(t *testing.T) {
	chain := sdp.NewInterceptorChain()
	errBoom := errors.New("boom")

	chain.AddRequestInterceptor(func(ctx context.Context, req *sdp.APIRequest) error {
		return errBoom
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &sdp.APIRequest{})
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "request interceptor failed")
}

func TestHeaderInterceptor(t *testing.T) {
	headers := map[string]string{
		"X-Custom-Header": "custom-value",
		"X-Request-ID":    "123456",
	}

	interceptor := sdp.HeaderInterceptor(headers)
	ctx := context.Background()
	req := &sdp.APIRequest{
		Method: "GET",
		Path:   "/requests",
	}

	err := interceptor(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "custom-value", req.Headers.Get("X-Custom-Header"))
	assert.Equal(t, "123456", req.Headers.Get("X-Request-ID"))
}

func TestAuthenticationInterceptor(t *testing.T) {
	tokenProvider := func(ctx context.Context) (string, error) {
		return "test-token", nil
	}

	interceptor := sdp.AuthenticationInterceptor(tokenProvider)
	ctx := context.Background()
	req := &sdp.APIRequest{
		Method: "GET",
		Path:   "/requests",
	}

	err := interceptor(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", req.Headers.Get("Authorization"))
}

func TestAuthenticationInterceptor_ProviderError(t *testing.T) {
	errExchange := errors.New("grant code expired")
	interceptor := sdp.AuthenticationInterceptor(func(ctx context.Context) (string, error) {
		return "", errExchange
	})

	err := interceptor(context.Background(), &sdp.APIRequest{Method: "GET", Path: "/requests"})
	require.ErrorIs(t, err, errExchange)
}

func TestRateLimitInterceptor(t *testing.T) {
	interceptor := sdp.RateLimitInterceptor(2)
	req := &sdp.APIRequest{Method: "GET", Path: "/requests"}

	// Two tokens are available immediately.
	require.NoError(t, interceptor(context.Background(), req))
	require.NoError(t, interceptor(context.Background(), req))

	// The third call blocks until the bucket refills, so a short deadline
	// must trip first.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := interceptor(ctx, req)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMetricsCollector(t *testing.T) {
	collector := sdp.NewMetricsCollector()

	var notifiedEndpoint string
	var notifiedMetrics *sdp.Metrics

	collector.SetOnChange(func(endpoint string, metrics *sdp.Metrics) {
		notifiedEndpoint = endpoint
		notifiedMetrics = metrics
	})

	requestInterceptor := sdp.MetricsRequestInterceptor(collector)
	responseInterceptor := sdp.MetricsResponseInterceptor(collector)

	ctx := context.Background()
	req := &sdp.APIRequest{
		Method: "GET",
		Path:   "/requests",
	}

	err := requestInterceptor(ctx, req)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	resp := &sdp.APIResponse{
		StatusCode: 200,
	}
	err = responseInterceptor(ctx, req, resp)
	require.NoError(t, err)

	assert.Equal(t, "GET /requests", notifiedEndpoint)
	require.NotNil(t, notifiedMetrics)
	assert.Equal(t, int64(1), notifiedMetrics.TotalRequests)
	assert.Equal(t, int64(0), notifiedMetrics.TotalErrors)
	assert.Positive(t, notifiedMetrics.AverageLatency)

	req2 := &sdp.APIRequest{
		Method: "GET",
		Path:   "/requests",
	}
	resp2 := &sdp.APIResponse{
		StatusCode: 500,
	}
	err = responseInterceptor(ctx, req2, resp2)
	require.NoError(t, err)

	metrics := collector.GetMetrics("GET /requests")
	require.NotNil(t, metrics)
	assert.Equal(t, int64(2), metrics.TotalRequests)
	assert.Equal(t, int64(1), metrics.TotalErrors)

	assert.Nil(t, collector.GetMetrics("GET /technicians"))
}

func TestCircuitBreaker(t *testing.T) {
	config := &sdp.CircuitBreakerConfig{
		Threshold:        2,
		Timeout:          100 * time.Millisecond,
		SuccessThreshold: 1,
	}
	breaker := sdp.NewCircuitBreaker(config)

	requestInterceptor := sdp.CircuitBreakerRequestInterceptor(breaker)
	responseInterceptor := sdp.CircuitBreakerResponseInterceptor(breaker)

	ctx := context.Background()
	req := &sdp.APIRequest{
		Method: "GET",
		Path:   "/requests",
	}

	// Circuit starts closed.
	err := requestInterceptor(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "closed", breaker.State())

	// Two failures open the circuit.
	for i := 0; i < 2; i++ {
		resp := &sdp.APIResponse{StatusCode: 500}
		err = responseInterceptor(ctx, req, resp)
		require.NoError(t, err)
	}

	assert.Equal(t, "open", breaker.State())

	err = requestInterceptor(ctx, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")

	// After the timeout the circuit half-opens.
	time.Sleep(150 * time.Millisecond)

	err = requestInterceptor(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "half-open", breaker.State())

	// One success closes it again.
	resp := &sdp.APIResponse{StatusCode: 200}
	err = responseInterceptor(ctx, req, resp)
	require.NoError(t, err)

	err = requestInterceptor(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "closed", breaker.State())
}

func TestRetryResponseInterceptor(t *testing.T) {
	config := &sdp.RetryConfig{
		MaxRetries:   3,
		RetryDelay:   100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		RetryOnCodes: []int{429, 500, 502, 503, 504},
	}

	interceptor := sdp.RetryResponseInterceptor(config)
	ctx := context.Background()
	req := &sdp.APIRequest{
		Method: "GET",
		Path:   "/requests",
	}

	resp := &sdp.APIResponse{
		StatusCode: 500,
		Headers:    make(http.Header),
	}

	err := interceptor(ctx, req, resp)
	require.NoError(t, err)
	assert.Equal(t, "true", resp.Headers.Get("X-Should-Retry"))

	resp2 := &sdp.APIResponse{
		StatusCode: 404,
		Headers:    make(http.Header),
	}

	err = interceptor(ctx, req, resp2)
	require.NoError(t, err)
	assert.Empty(t, resp2.Headers.Get("X-Should-Retry"))
}
