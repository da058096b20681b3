package sdp

// Projection maps caller-facing field names to values extracted from one raw
// response row.
type Projection map[string]interface{}

// extractor pulls one canonical field out of a raw decoded row.
type extractor func(row map[string]interface{}) (interface{}, bool)

// fieldPath builds an extractor that follows a path of nested object keys.
func fieldPath(path ...string) extractor {
	return func(row map[string]interface{}) (interface{}, bool) {
		var current interface{} = row

		for _, key := range path {
			object, isObject := current.(map[string]interface{})
			if !isObject {
				return nil, false
			}

			value, present := object[key]
			if !present {
				return nil, false
			}

			current = value
		}

		return current, true
	}
}

// requestFieldOrder is the canonical projection order for request rows.
var requestFieldOrder = []string{
	"Id",
	"Subject",
	"Requester",
	"Template",
	"CreatedTime",
	"Technician",
	"DueByTime",
	"Status",
	"Group",
	"CancellationRequested",
}

// requestExtractors is the allow-list mapping projectable field names to the
// nested paths they read. Names outside this list are skipped, never raised.
var requestExtractors = map[string]extractor{
	"Id":                    fieldPath("id"),
	"Subject":               fieldPath("subject"),
	"Requester":             fieldPath("requester", "email_id"),
	"Template":              fieldPath("template", "name"),
	"CreatedTime":           fieldPath("created_time", "display_value"),
	"Technician":            fieldPath("technician", "email_id"),
	"DueByTime":             fieldPath("due_by_time", "display_value"),
	"Status":                fieldPath("status", "name"),
	"Group":                 fieldPath("group", "name"),
	"CancellationRequested": fieldPath("cancellation_requested"),
}

// RequestProjectionFields returns the canonical projectable field names in
// projection order.
func RequestProjectionFields() []string {
	fields := make([]string, len(requestFieldOrder))
	copy(fields, requestFieldOrder)

	return fields
}

// ProjectionIterator lazily projects the rows of a single decoded response
// page. The iterator is finite and restartable; Reset rewinds to the first
// row. It does not fetch further pages.
type ProjectionIterator struct {
	rows   []map[string]interface{}
	fields []string
	index  int
}

// ProjectRequests projects the "requests" collection of a raw decoded
// response. A non-empty fields list restricts the output to those canonical
// names; unknown names yield absent values, not errors. An empty fields list
// projects the full canonical set.
func ProjectRequests(raw map[string]interface{}, fields []string) *ProjectionIterator {
	return NewProjectionIterator(collectionRows(raw, "requests"), fields)
}

// NewProjectionIterator builds an iterator over already-extracted rows.
func NewProjectionIterator(rows []map[string]interface{}, fields []string) *ProjectionIterator {
	return &ProjectionIterator{rows: rows, fields: fields}
}

// collectionRows pulls the named collection out of a raw response, keeping
// only object rows. A missing or malformed collection yields no rows.
func collectionRows(raw map[string]interface{}, key string) []map[string]interface{} {
	items, isList := raw[key].([]interface{})
	if !isList {
		return nil
	}

	rows := make([]map[string]interface{}, 0, len(items))

	for _, item := range items {
		if row, isObject := item.(map[string]interface{}); isObject {
			rows = append(rows, row)
		}
	}

	return rows
}

// HasNext reports whether rows remain.
func (it *ProjectionIterator) HasNext() bool {
	return it.index < len(it.rows)
}

// Next projects the next row. It returns ErrNoMoreItems past the last row.
func (it *ProjectionIterator) Next() (Projection, error) {
	if !it.HasNext() {
		return nil, ErrNoMoreItems
	}

	projection := projectRow(it.rows[it.index], it.fields)
	it.index++

	return projection, nil
}

// Reset rewinds the iterator to the first row.
func (it *ProjectionIterator) Reset() {
	it.index = 0
}

// Len returns the number of rows in the page.
func (it *ProjectionIterator) Len() int {
	return len(it.rows)
}

// All projects every row of the page from the beginning, leaving the
// iterator exhausted.
func (it *ProjectionIterator) All() []Projection {
	it.Reset()

	projections := make([]Projection, 0, len(it.rows))

	for it.HasNext() {
		projection, err := it.Next()
		if err != nil {
			break
		}

		projections = append(projections, projection)
	}

	return projections
}

// ForEach applies fn to each remaining projection, stopping on the first
// error.
func (it *ProjectionIterator) ForEach(fn func(Projection) error) error {
	for it.HasNext() {
		projection, err := it.Next()
		if err != nil {
			return err
		}

		if err := fn(projection); err != nil {
			return err
		}
	}

	return nil
}

// projectRow applies the allow-list to one row. Requested names outside the
// allow-list and canonical paths missing from the row are both absent from
// the result.
func projectRow(row map[string]interface{}, fields []string) Projection {
	selected := fields
	if len(selected) == 0 {
		selected = requestFieldOrder
	}

	projection := make(Projection, len(selected))

	for _, name := range selected {
		extract, known := requestExtractors[name]
		if !known {
			continue
		}

		if value, present := extract(row); present {
			projection[name] = value
		}
	}

	return projection
}
