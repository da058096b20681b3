package sdp

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/sdp-client/internal/constants"
)

// Search condition operators understood by the provider.
const (
	ConditionIs             = "is"
	ConditionIsNot          = "is not"
	ConditionContains       = "contains"
	ConditionNotContains    = "not contains"
	ConditionStartsWith     = "starts with"
	ConditionEndsWith       = "ends with"
	ConditionGreaterThan    = "greater than"
	ConditionLesserThan     = "lesser than"
	ConditionGreaterOrEqual = "greater or equal"
	ConditionLesserOrEqual  = "lesser or equal"
	ConditionBetween        = "between"
)

// Logical operators joining consecutive search criteria.
const (
	LogicalAnd = "AND"
	LogicalOr  = "OR"
)

// Sort orders accepted by list_info.
const (
	SortAscending  = "asc"
	SortDescending = "desc"
)

// SearchCriteria is one {field, condition, value} filter triple of a search.
// Criteria after the first must carry a LogicalOperator; the ListInfo builder
// fills in AND when it is left empty.
type SearchCriteria struct {
	Field           string        `json:"field"                      yaml:"field"`
	Condition       string        `json:"condition"                  yaml:"condition"`
	Value           interface{}   `json:"value,omitempty"            yaml:"value,omitempty"`
	Values          []interface{} `json:"values,omitempty"           yaml:"values,omitempty"`
	LogicalOperator string        `json:"logical_operator,omitempty" yaml:"logical_operator,omitempty"`
}

// Criterion builds a single search criterion.
func Criterion(field, condition string, value interface{}) SearchCriteria {
	return SearchCriteria{Field: field, Condition: condition, Value: value}
}

// OrCriterion builds a search criterion joined to its predecessor with OR.
func OrCriterion(field, condition string, value interface{}) SearchCriteria {
	return SearchCriteria{Field: field, Condition: condition, Value: value, LogicalOperator: LogicalOr}
}

// ListInfo shapes the list_info envelope of list and search calls:
//
//	input_data={"list_info": {"row_count": 100, "start_index": 1, ...}}
type ListInfo struct {
	RowCount       int              `json:"row_count,omitempty"       yaml:"row_count,omitempty"`
	StartIndex     int              `json:"start_index,omitempty"     yaml:"start_index,omitempty"`
	GetTotalCount  bool             `json:"get_total_count,omitempty" yaml:"get_total_count,omitempty"`
	SearchCriteria []SearchCriteria `json:"search_criteria,omitempty" yaml:"search_criteria,omitempty"`
	FieldsRequired []string         `json:"fields_required,omitempty" yaml:"fields_required,omitempty"`
	SortField      string           `json:"sort_field,omitempty"      yaml:"sort_field,omitempty"`
	SortOrder      string           `json:"sort_order,omitempty"      yaml:"sort_order,omitempty"`
}

// NewListInfo creates a ListInfo with the provider defaults: a full page of
// 100 rows from index 1 with the total count included.
func NewListInfo() *ListInfo {
	return &ListInfo{
		RowCount:      constants.DefaultRowCount,
		StartIndex:    constants.DefaultStartIndex,
		GetTotalCount: true,
	}
}

// WithRowCount overrides the page size.
func (li *ListInfo) WithRowCount(rowCount int) *ListInfo {
	li.RowCount = rowCount

	return li
}

// WithStartIndex overrides the first row index.
func (li *ListInfo) WithStartIndex(startIndex int) *ListInfo {
	li.StartIndex = startIndex

	return li
}

// WithTotalCount overrides whether the provider reports the total count.
func (li *ListInfo) WithTotalCount(include bool) *ListInfo {
	li.GetTotalCount = include

	return li
}

// WithCriterion appends one search criterion. Criteria after the first
// default to an AND join when no logical operator is set.
func (li *ListInfo) WithCriterion(field, condition string, value interface{}) *ListInfo {
	return li.WithCriteria(Criterion(field, condition, value))
}

// WithCriteria appends search criteria, defaulting the logical operator of
// non-leading criteria to AND.
func (li *ListInfo) WithCriteria(criteria ...SearchCriteria) *ListInfo {
	for _, criterion := range criteria {
		if len(li.SearchCriteria) > 0 && criterion.LogicalOperator == "" {
			criterion.LogicalOperator = LogicalAnd
		}

		li.SearchCriteria = append(li.SearchCriteria, criterion)
	}

	return li
}

// WithFields replaces the fields_required projection list.
func (li *ListInfo) WithFields(fields ...string) *ListInfo {
	li.FieldsRequired = fields

	return li
}

// WithSort sets the sort field and order.
func (li *ListInfo) WithSort(field, order string) *ListInfo {
	li.SortField = field
	li.SortOrder = order

	return li
}

// InputData renders the list_info envelope as the provider's input_data
// JSON string.
func (li *ListInfo) InputData() (string, error) {
	envelope := map[string]interface{}{"list_info": li}

	data, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("encoding list_info: %w", err)
	}

	return string(data), nil
}

// ToValues renders the envelope as the input_data form/query parameter.
func (li *ListInfo) ToValues() (url.Values, error) {
	inputData, err := li.InputData()
	if err != nil {
		return nil, err
	}

	return url.Values{"input_data": []string{inputData}}, nil
}

// WrapInputData encodes a named write payload as the input_data parameter,
// e.g. key "request" yields input_data={"request": {...}}.
func WrapInputData(key string, payload interface{}) (url.Values, error) {
	body, err := json.Marshal(map[string]interface{}{key: payload})
	if err != nil {
		return nil, fmt.Errorf("encoding input_data for %s: %w", key, err)
	}

	return url.Values{"input_data": []string{string(body)}}, nil
}
