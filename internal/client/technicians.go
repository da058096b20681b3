package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/sdp-client/internal/http"
	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
)

// TechniciansClient implements sdp.TechniciansClient.
type TechniciansClient struct {
	httpClient *http.Client
}

// NewTechniciansClient creates a new technicians client.
func NewTechniciansClient(httpClient *http.Client) *TechniciansClient {
	return &TechniciansClient{httpClient: httpClient}
}

// Get implements sdp.TechniciansClient.Get.
func (c *TechniciansClient) Get(ctx context.Context, technicianID string) (*sdp.Technician, error) {
	path := fmt.Sprintf("/technicians/%s", technicianID)

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting technician: %w", err)
	}

	var envelope struct {
		Technician sdp.Technician `json:"technician"`
	}

	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, fmt.Errorf("parsing technician response: %w", err)
	}

	return &envelope.Technician, nil
}

// List implements sdp.TechniciansClient.List.
func (c *TechniciansClient) List(ctx context.Context, listInfo *sdp.ListInfo) (*sdp.TechnicianList, error) {
	if listInfo == nil {
		listInfo = sdp.NewListInfo()
	}

	query, err := listInfo.ToValues()
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, "/technicians", query)
	if err != nil {
		return nil, fmt.Errorf("listing technicians: %w", err)
	}

	var envelope struct {
		ListInfo    sdp.ListInfoResult `json:"list_info"`
		Technicians []sdp.Technician   `json:"technicians"`
	}

	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, fmt.Errorf("parsing technicians list response: %w", err)
	}

	return &sdp.TechnicianList{ListInfo: envelope.ListInfo, Items: envelope.Technicians}, nil
}
