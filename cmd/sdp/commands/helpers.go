package commands

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/sdp-client/internal/constants"
	"github.com/fivetwenty-io/sdp-client/pkg/sdp"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"

	// Output formats.
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"

	// Filter syntax: field:condition:value.
	filterPartsCount = 3

	// Display format for timestamps in tables.
	tableTimeFormat = "2006-01-02 15:04:05"
)

// Common static errors used throughout the commands package.
var (
	ErrInvalidFilterFormat = errors.New("invalid filter format, expected field:condition:value")
	ErrFilterRequired      = errors.New("at least one --filter is required")
	ErrResolutionRequired  = errors.New("resolution text is required")
	ErrResumeTimeFormat    = errors.New("resume time must be RFC3339, e.g. 2026-03-01T09:00:00Z")
	ErrAssigneeRequired    = errors.New("either --technician, --technician-email or --group is required")
	ErrNothingToUpdate     = errors.New("no update flags provided")
	ErrBatchCloseFailed    = errors.New("batch close completed with failures")
)

// parseFilters converts repeated --filter values of the form
// field:condition:value into search criteria. The first criterion carries no
// logical operator, later ones combine with AND unless prefixed with "or:".
func parseFilters(filters []string) ([]sdp.SearchCriteria, error) {
	criteria := make([]sdp.SearchCriteria, 0, len(filters))

	for _, filter := range filters {
		useOr := false

		if strings.HasPrefix(filter, "or:") {
			useOr = true
			filter = strings.TrimPrefix(filter, "or:")
		}

		parts := strings.SplitN(filter, ":", filterPartsCount)
		if len(parts) != filterPartsCount || parts[0] == "" || parts[1] == "" {
			return nil, ErrInvalidFilterFormat
		}

		value := coerceFilterValue(parts[2])

		if useOr {
			criteria = append(criteria, sdp.OrCriterion(parts[0], parts[1], value))
		} else {
			criteria = append(criteria, sdp.Criterion(parts[0], parts[1], value))
		}
	}

	return criteria, nil
}

// coerceFilterValue turns booleans and integers into their native types so
// the provider compares them correctly, and leaves everything else a string.
func coerceFilterValue(raw string) interface{} {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}

	return raw
}

// formatNamed renders a name reference for table output.
func formatNamed(named *sdp.Named) string {
	if named == nil || named.Name == "" {
		return NotAvailable
	}

	return named.Name
}

// formatUser renders a user reference for table output, preferring the
// display name over the email.
func formatUser(user *sdp.User) string {
	if user == nil {
		return NotAvailable
	}

	if user.Name != "" {
		return user.Name
	}

	if user.EmailID != "" {
		return user.EmailID
	}

	return NotAvailable
}

// formatSDPTime renders a provider timestamp for table output, preferring
// the provider's own display value when present.
func formatSDPTime(t *sdp.Time) string {
	if t == nil || (t.IsZero() && t.DisplayValue == "") {
		return NotAvailable
	}

	if t.DisplayValue != "" {
		return t.DisplayValue
	}

	return t.Value.Format(tableTimeFormat)
}

// truncateSubject shortens long ticket subjects for list tables.
func truncateSubject(subject string) string {
	if len(subject) <= constants.SubjectDisplayLength {
		return subject
	}

	return subject[:constants.SubjectDisplayLength-3] + "..."
}

// parseResumeTime parses the --resume-time flag.
func parseResumeTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil //nolint:nilnil // absent flag means hold indefinitely
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, ErrResumeTimeFormat
	}

	return &t, nil
}

// validateRowCount checks the --row-count flag against the provider's page
// size limit before any request is made.
func validateRowCount(rowCount int) error {
	if rowCount < 1 || rowCount > constants.DefaultRowCount {
		return constants.ErrInvalidRowCount
	}

	return nil
}

// loggerAdapter exposes the standard library logger through the sdp.Logger
// interface so --verbose surfaces the transport's debug lines on stderr.
type loggerAdapter struct {
	logger *log.Logger
}

func newLoggerAdapter() *loggerAdapter {
	return &loggerAdapter{logger: log.New(os.Stderr, "", log.LstdFlags)}
}

func (a *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	a.logLine("DEBUG", msg, fields)
}

func (a *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	a.logLine("INFO", msg, fields)
}

func (a *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	a.logLine("WARN", msg, fields)
}

func (a *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	a.logLine("ERROR", msg, fields)
}

func (a *loggerAdapter) logLine(level, msg string, fields map[string]interface{}) {
	if len(fields) == 0 {
		a.logger.Printf("%s %s", level, msg)

		return
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, fields[key]))
	}

	a.logger.Printf("%s %s %s", level, msg, strings.Join(parts, " "))
}
