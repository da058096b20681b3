package sdp

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Time represents a ServiceDesk Plus timestamp. On the wire it is a JSON
// object carrying the instant as Unix epoch seconds in decimal string form,
// optionally accompanied by a human-readable rendering:
//
//	{"display_value": "Nov 10, 2016 11:44 AM", "value": "1478758440"}
//
// Marshaling emits only the numeric value; DisplayValue is provider-assigned.
type Time struct {
	Value        time.Time `yaml:"value"`
	DisplayValue string    `yaml:"display_value,omitempty"`
}

// NewTime wraps a time.Time for use in request payloads.
func NewTime(t time.Time) *Time {
	return &Time{Value: t}
}

// Unix returns the wrapped instant as Unix epoch seconds.
func (t Time) Unix() int64 {
	return t.Value.Unix()
}

// IsZero reports whether the timestamp is unset.
func (t Time) IsZero() bool {
	return t.Value.IsZero()
}

func (t Time) String() string {
	if t.DisplayValue != "" {
		return t.DisplayValue
	}
	if t.Value.IsZero() {
		return ""
	}
	return t.Value.UTC().Format(time.RFC3339)
}

// MarshalJSON renders the wire object with value as epoch seconds.
func (t Time) MarshalJSON() ([]byte, error) {
	wire := struct {
		Value string `json:"value"`
	}{Value: strconv.FormatInt(t.Value.Unix(), 10)}

	return json.Marshal(wire)
}

// UnmarshalJSON accepts the value field as either a decimal string or a bare
// number, since the provider is not consistent across endpoints.
func (t *Time) UnmarshalJSON(data []byte) error {
	var wire struct {
		DisplayValue string      `json:"display_value"`
		Value        interface{} `json:"value"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("unmarshaling timestamp: %w", err)
	}

	t.DisplayValue = wire.DisplayValue

	switch v := wire.Value.(type) {
	case nil:
		t.Value = time.Time{}
	case string:
		if v == "" {
			t.Value = time.Time{}
			return nil
		}
		seconds, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing timestamp value %q: %w", v, err)
		}
		t.Value = time.Unix(seconds, 0).UTC()
	case float64:
		t.Value = time.Unix(int64(v), 0).UTC()
	default:
		return fmt.Errorf("%w: timestamp value of type %T", ErrUnexpectedFieldType, wire.Value)
	}

	return nil
}

// Named references a provider entity by id and display name. Most request
// fields (status, group, template, priority) travel in this shape.
type Named struct {
	ID   string `json:"id,omitempty"   yaml:"id,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// NamedRef builds a Named carrying only a display name, the common form for
// write payloads.
func NamedRef(name string) *Named {
	return &Named{Name: name}
}

// User represents a requester or technician reference.
type User struct {
	ID      string `json:"id,omitempty"       yaml:"id,omitempty"`
	Name    string `json:"name,omitempty"     yaml:"name,omitempty"`
	EmailID string `json:"email_id,omitempty" yaml:"email_id,omitempty"`
}

// ListInfoResult is the provider's pagination echo on list responses.
type ListInfoResult struct {
	HasMoreRows bool `json:"has_more_rows"         yaml:"has_more_rows"`
	TotalCount  int  `json:"total_count,omitempty" yaml:"total_count,omitempty"`
	RowCount    int  `json:"row_count,omitempty"   yaml:"row_count,omitempty"`
	StartIndex  int  `json:"start_index,omitempty" yaml:"start_index,omitempty"`
}

// ListResponse pairs a page of resources with the provider's list_info echo.
type ListResponse[T any] struct {
	ListInfo ListInfoResult `json:"list_info" yaml:"list_info"`
	Items    []T            `json:"-"         yaml:"items"`
}

// RequestList represents one page of Request resources.
type RequestList = ListResponse[Request]

// NoteList represents one page of Note resources.
type NoteList = ListResponse[Note]

// TaskList represents one page of Task resources.
type TaskList = ListResponse[Task]

// TechnicianList represents one page of Technician resources.
type TechnicianList = ListResponse[Technician]
