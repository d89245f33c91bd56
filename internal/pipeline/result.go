package pipeline

import (
	"fmt"
	"time"

	"github.com/couchcryptid/fews-explorer/internal/domain"
)

// LocationsResult is the outcome of a locations query. Records and Options
// are set only on success.
type LocationsResult struct {
	Status        string            `json:"status"`
	Kind          string            `json:"error_kind,omitempty"`
	APIURL        string            `json:"api_url"`
	Records       []domain.Location `json:"rows,omitempty"`
	Options       []string          `json:"options,omitempty"`
	DistinctCount int               `json:"distinct_count"`
	RawCount      int               `json:"raw_count"`
	FetchedAt     time.Time         `json:"fetched_at"`
}

// ParametersResult is the outcome of a parameters query.
type ParametersResult struct {
	Status        string             `json:"status"`
	Kind          string             `json:"error_kind,omitempty"`
	APIURL        string             `json:"api_url"`
	Records       []domain.Parameter `json:"rows,omitempty"`
	Options       []string           `json:"options,omitempty"`
	DistinctCount int                `json:"distinct_count"`
	RawCount      int                `json:"raw_count"`
	FetchedAt     time.Time          `json:"fetched_at"`
}

// TimeseriesRequest carries user input for a time series query. Dates are
// YYYY-MM-DD and optional.
type TimeseriesRequest struct {
	APIURL       string
	LocationIDs  []string
	ParameterIDs []string
	StartDate    string
	EndDate      string
}

// TimeseriesResult is the outcome of a time series query.
type TimeseriesResult struct {
	Status         string               `json:"status"`
	Kind           string               `json:"error_kind,omitempty"`
	APIURL         string               `json:"api_url"`
	Rows           []domain.Observation `json:"rows,omitempty"`
	Series         []domain.Series      `json:"series,omitempty"`
	Orphans        int                  `json:"orphans"`
	SkippedResults int                  `json:"skipped_results"`
	UntimedEvents  int                  `json:"untimed_events"`
	FetchedAt      time.Time            `json:"fetched_at"`
}

// ConnectResult bundles the canonical URL with both metadata queries.
type ConnectResult struct {
	APIURL     string           `json:"api_url"`
	Locations  LocationsResult  `json:"locations"`
	Parameters ParametersResult `json:"parameters"`
}

// OK reports whether the query produced data.
func (r LocationsResult) OK() bool { return r.Kind == "" }

// OK reports whether the query produced data.
func (r ParametersResult) OK() bool { return r.Kind == "" }

// OK reports whether the query produced data.
func (r TimeseriesResult) OK() bool { return r.Kind == "" }

// OK reports whether both metadata queries produced data.
func (r ConnectResult) OK() bool { return r.Locations.OK() && r.Parameters.OK() }

// queryError carries the user-facing status of a failed query and the
// classified cause.
type queryError struct {
	status string
	cause  error
}

func (e *queryError) Error() string { return e.status }
func (e *queryError) Unwrap() error { return e.cause }

var errMissingURL = failure(domain.ErrInputValidation, "enter a valid API URL first")

func failure(cause error, status string) error {
	return &queryError{status: status, cause: cause}
}

func fetchFailed(what string, err error) error {
	return &queryError{status: fmt.Sprintf("failed to fetch %s: %v", what, err), cause: err}
}

func invalidDate(which, value string) error {
	return failure(domain.ErrInputValidation,
		fmt.Sprintf("invalid %s date format: %s. Use YYYY-MM-DD.", which, value))
}
