package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTechniciansClient_Get(t *testing.T) {
	operations := []TestGetOperation[sdp.Technician]{
		{
			Name:         "existing technician",
			ID:           "1201",
			ExpectedPath: "/technicians/1201",
			WireKey:      "technician",
			StatusCode:   http.StatusOK,
			Response: &sdp.Technician{
				ID:      "1201",
				Name:    "Shawn Adams",
				EmailID: "shawn@example.com",
			},
		},
		{
			Name:         "missing technician",
			ID:           "9999",
			ExpectedPath: "/technicians/9999",
			WireKey:      "technician",
			StatusCode:   http.StatusNotFound,
			WantErr:      true,
			ErrMessage:   "Invalid URL",
		},
	}

	RunGetTests(t, operations, func(client *Client) func(context.Context, string) (*sdp.Technician, error) {
		return client.Technicians().Get
	})
}

func TestTechniciansClient_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/technicians", r.URL.Path)
		assert.Equal(t, "GET", r.Method)

		var listInfo sdp.ListInfo

		require.NoError(t, DecodeInputData(r, "list_info", &listInfo))
		assert.Equal(t, 100, listInfo.RowCount)
		assert.Equal(t, 1, listInfo.StartIndex)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"technicians": [
				{"id": "1201", "name": "Shawn Adams", "email_id": "shawn@example.com"},
				{"id": "1202", "name": "Heather Graham", "is_vip_user": true}
			],
			"list_info": {"has_more_rows": false, "total_count": 2}
		}`))
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	result, err := client.Technicians().List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Shawn Adams", result.Items[0].Name)
	assert.True(t, result.Items[1].IsVIPUser)
	assert.Equal(t, 2, result.ListInfo.TotalCount)
}

func TestTechniciansClient_List_WithCriteria(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var listInfo sdp.ListInfo

		require.NoError(t, DecodeInputData(r, "list_info", &listInfo))
		require.Len(t, listInfo.SearchCriteria, 1)
		assert.Equal(t, "is_vip_user", listInfo.SearchCriteria[0].Field)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"technicians": [{"id": "1202", "name": "Heather Graham", "is_vip_user": true}],
			"list_info": {"has_more_rows": false}
		}`))
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	listInfo := sdp.NewListInfo().WithCriterion("is_vip_user", sdp.ConditionIs, true)

	result, err := client.Technicians().List(context.Background(), listInfo)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Heather Graham", result.Items[0].Name)
}
