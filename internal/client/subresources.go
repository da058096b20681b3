package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/sdp-client/internal/http"
	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
)

// subResourceClient serves a collection nested under a request, like notes
// or tasks. T is the resource type and I its write payload; wireKey is the
// provider's singular payload key, collection the plural path segment and
// list response key.
type subResourceClient[T any, I any] struct {
	httpClient *http.Client
	collection string
	wireKey    string
}

// NewRequestNotesClient creates the client for /requests/{id}/notes.
func NewRequestNotesClient(httpClient *http.Client) sdp.RequestNotesClient {
	return &subResourceClient[sdp.Note, sdp.NoteInput]{
		httpClient: httpClient,
		collection: "notes",
		wireKey:    "note",
	}
}

// NewRequestTasksClient creates the client for /requests/{id}/tasks.
func NewRequestTasksClient(httpClient *http.Client) sdp.RequestTasksClient {
	return &subResourceClient[sdp.Task, sdp.TaskInput]{
		httpClient: httpClient,
		collection: "tasks",
		wireKey:    "task",
	}
}

// Create adds a resource under the given request.
func (c *subResourceClient[T, I]) Create(ctx context.Context, requestID string, input *I) (*T, error) {
	if input == nil {
		return nil, sdp.NewValidationError(c.wireKey, "payload is required")
	}

	values, err := sdp.WrapInputData(c.wireKey, input)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/requests/%s/%s", requestID, c.collection)

	resp, err := c.httpClient.Post(ctx, path, values)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", c.wireKey, err)
	}

	return c.decodeOne(resp.Body)
}

// Get fetches one resource under the given request.
func (c *subResourceClient[T, I]) Get(ctx context.Context, requestID, resourceID string) (*T, error) {
	path := fmt.Sprintf("/requests/%s/%s/%s", requestID, c.collection, resourceID)

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", c.wireKey, err)
	}

	return c.decodeOne(resp.Body)
}

// Update replaces the writable fields of one resource.
func (c *subResourceClient[T, I]) Update(ctx context.Context, requestID, resourceID string, input *I) (*T, error) {
	if input == nil {
		return nil, sdp.NewValidationError(c.wireKey, "payload is required")
	}

	values, err := sdp.WrapInputData(c.wireKey, input)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/requests/%s/%s/%s", requestID, c.collection, resourceID)

	resp, err := c.httpClient.Put(ctx, path, values)
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", c.wireKey, err)
	}

	return c.decodeOne(resp.Body)
}

// Delete removes one resource under the given request.
func (c *subResourceClient[T, I]) Delete(ctx context.Context, requestID, resourceID string) error {
	path := fmt.Sprintf("/requests/%s/%s/%s", requestID, c.collection, resourceID)

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", c.wireKey, err)
	}

	return nil
}

// List fetches one page of the collection under the given request.
func (c *subResourceClient[T, I]) List(ctx context.Context, requestID string, listInfo *sdp.ListInfo) (*sdp.ListResponse[T], error) {
	if listInfo == nil {
		listInfo = sdp.NewListInfo()
	}

	query, err := listInfo.ToValues()
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/requests/%s/%s", requestID, c.collection)

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.collection, err)
	}

	return c.decodeList(resp.Body)
}

// decodeOne parses the provider's singular envelope, e.g. {"note": {...}}.
func (c *subResourceClient[T, I]) decodeOne(body []byte) (*T, error) {
	var envelope map[string]json.RawMessage

	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", c.wireKey, err)
	}

	var item T

	if raw, ok := envelope[c.wireKey]; ok {
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("parsing %s response: %w", c.wireKey, err)
		}
	}

	return &item, nil
}

// decodeList parses the provider's plural envelope, e.g. {"notes": [...],
// "list_info": {...}}.
func (c *subResourceClient[T, I]) decodeList(body []byte) (*sdp.ListResponse[T], error) {
	var envelope map[string]json.RawMessage

	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parsing %s list response: %w", c.collection, err)
	}

	result := &sdp.ListResponse[T]{}

	if raw, ok := envelope["list_info"]; ok {
		if err := json.Unmarshal(raw, &result.ListInfo); err != nil {
			return nil, fmt.Errorf("parsing list_info: %w", err)
		}
	}

	if raw, ok := envelope[c.collection]; ok {
		if err := json.Unmarshal(raw, &result.Items); err != nil {
			return nil, fmt.Errorf("parsing %s list response: %w", c.collection, err)
		}
	}

	return result, nil
}
