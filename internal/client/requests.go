package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/sdp-client/internal/http"
	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
)

// RequestsClient implements sdp.RequestsClient.
type RequestsClient struct {
	httpClient *http.Client
	notes      sdp.RequestNotesClient
	tasks      sdp.RequestTasksClient
}

// NewRequestsClient creates a new requests client.
func NewRequestsClient(httpClient *http.Client) *RequestsClient {
	return &RequestsClient{
		httpClient: httpClient,
		notes:      NewRequestNotesClient(httpClient),
		tasks:      NewRequestTasksClient(httpClient),
	}
}

// Create implements sdp.RequestsClient.Create.
func (c *RequestsClient) Create(ctx context.Context, input *sdp.RequestCreate) (*sdp.Request, error) {
	if input == nil || input.Subject == "" {
		return nil, sdp.NewValidationError("subject", "subject is required")
	}

	values, err := sdp.WrapInputData("request", input)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(ctx, "/requests", values)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return decodeRequest(resp.Body)
}

// Get implements sdp.RequestsClient.Get.
func (c *RequestsClient) Get(ctx context.Context, requestID string) (*sdp.Request, error) {
	path := fmt.Sprintf("/requests/%s", requestID)

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting request: %w", err)
	}

	return decodeRequest(resp.Body)
}

// Update implements sdp.RequestsClient.Update.
func (c *RequestsClient) Update(ctx context.Context, requestID string, update *sdp.RequestUpdate) (*sdp.Request, error) {
	if update.IsEmpty() {
		return nil, sdp.NewValidationError("request", "update changes nothing")
	}

	values, err := sdp.WrapInputData("request", update)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/requests/%s", requestID)

	resp, err := c.httpClient.Put(ctx, path, values)
	if err != nil {
		return nil, fmt.Errorf("updating request: %w", err)
	}

	return decodeRequest(resp.Body)
}

// Delete implements sdp.RequestsClient.Delete.
func (c *RequestsClient) Delete(ctx context.Context, requestID string) error {
	path := fmt.Sprintf("/requests/%s", requestID)

	_, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("deleting request: %w", err)
	}

	return nil
}

// List implements sdp.RequestsClient.List.
func (c *RequestsClient) List(ctx context.Context, listInfo *sdp.ListInfo) (*sdp.RequestList, error) {
	if listInfo == nil {
		listInfo = sdp.NewListInfo()
	}

	query, err := listInfo.ToValues()
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, "/requests", query)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}

	return decodeRequestList(resp.Body)
}

// Search implements sdp.RequestsClient.Search. The envelope carries the
// provider defaults (row_count 100, start_index 1, get_total_count) around
// the given criteria; fields, when supplied, become fields_required.
func (c *RequestsClient) Search(ctx context.Context, criteria []sdp.SearchCriteria, fields ...string) (*sdp.RequestList, error) {
	if len(criteria) == 0 {
		return nil, sdp.NewValidationError("search_criteria", "at least one search criterion is required")
	}

	listInfo := sdp.NewListInfo().WithCriteria(criteria...)
	if len(fields) > 0 {
		listInfo = listInfo.WithFields(fields...)
	}

	query, err := listInfo.ToValues()
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, "/requests", query)
	if err != nil {
		return nil, fmt.Errorf("searching requests: %w", err)
	}

	return decodeRequestList(resp.Body)
}

// Close implements sdp.RequestsClient.Close. A nil input closes with empty
// closure info.
func (c *RequestsClient) Close(ctx context.Context, requestID string, input *sdp.CloseInput) error {
	if input == nil {
		input = &sdp.CloseInput{}
	}

	values, err := sdp.WrapInputData("request", input)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/requests/%s/close", requestID)

	_, err = c.httpClient.Put(ctx, path, values)
	if err != nil {
		return fmt.Errorf("closing request: %w", err)
	}

	return nil
}

// Pickup implements sdp.RequestsClient.Pickup, assigning the request to the
// authenticated technician.
func (c *RequestsClient) Pickup(ctx context.Context, requestID string) (*sdp.Request, error) {
	path := fmt.Sprintf("/requests/%s/pickup", requestID)

	resp, err := c.httpClient.Put(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("picking up request: %w", err)
	}

	return decodeRequest(resp.Body)
}

// Assign implements sdp.RequestsClient.Assign.
func (c *RequestsClient) Assign(ctx context.Context, requestID string, input *sdp.AssignInput) error {
	if input == nil || (input.Technician == nil && input.Group == nil) {
		return sdp.NewValidationError("assign", "a technician or group is required")
	}

	values, err := sdp.WrapInputData("request", input)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/requests/%s/assign", requestID)

	_, err = c.httpClient.Put(ctx, path, values)
	if err != nil {
		return fmt.Errorf("assigning request: %w", err)
	}

	return nil
}

// PlaceOnHold implements sdp.RequestsClient.PlaceOnHold via a status update.
// A comment without a resume time is dropped; see sdp.BuildOnHoldUpdate.
func (c *RequestsClient) PlaceOnHold(ctx context.Context, requestID string, opts sdp.OnHoldOptions) (*sdp.Request, error) {
	values, err := sdp.WrapInputData("request", sdp.BuildOnHoldUpdate(opts))
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/requests/%s", requestID)

	resp, err := c.httpClient.Put(ctx, path, values)
	if err != nil {
		return nil, fmt.Errorf("placing request on hold: %w", err)
	}

	return decodeRequest(resp.Body)
}

// Resolve implements sdp.RequestsClient.Resolve, recording the resolution
// and moving the request to Resolved in one update.
func (c *RequestsClient) Resolve(ctx context.Context, requestID string, resolution string) (*sdp.Request, error) {
	if resolution == "" {
		return nil, sdp.NewValidationError("resolution", "resolution content is required")
	}

	update := &sdp.RequestUpdate{
		Status:     sdp.NamedRef(sdp.StatusResolved),
		Resolution: &sdp.Resolution{Content: resolution},
	}

	values, err := sdp.WrapInputData("request", update)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/requests/%s", requestID)

	resp, err := c.httpClient.Put(ctx, path, values)
	if err != nil {
		return nil, fmt.Errorf("resolving request: %w", err)
	}

	return decodeRequest(resp.Body)
}

// Notes implements sdp.RequestsClient.Notes.
func (c *RequestsClient) Notes() sdp.RequestNotesClient {
	return c.notes
}

// Tasks implements sdp.RequestsClient.Tasks.
func (c *RequestsClient) Tasks() sdp.RequestTasksClient {
	return c.tasks
}

// decodeRequest parses the provider's {"request": {...}} envelope.
func decodeRequest(body []byte) (*sdp.Request, error) {
	var envelope struct {
		Request sdp.Request `json:"request"`
	}

	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parsing request response: %w", err)
	}

	return &envelope.Request, nil
}

// decodeRequestList parses the provider's {"requests": [...], "list_info":
// {...}} envelope.
func decodeRequestList(body []byte) (*sdp.RequestList, error) {
	var envelope struct {
		ListInfo sdp.ListInfoResult `json:"list_info"`
		Requests []sdp.Request      `json:"requests"`
	}

	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parsing requests list response: %w", err)
	}

	return &sdp.RequestList{ListInfo: envelope.ListInfo, Items: envelope.Requests}, nil
}
