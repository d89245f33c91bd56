package domain

import "context"

// Document formats understood by the FEWS PI REST API.
const (
	FormatPIJSON = "PI_JSON"
	FormatDDJSON = "DD_JSON"
)

// TimeseriesQuery selects observations. Start and End are ISO 8601
// timestamps (see ParseQueryDate) and are omitted when empty.
type TimeseriesQuery struct {
	LocationIDs  []string
	ParameterIDs []string
	Start        string
	End          string
}

// Fetcher retrieves raw documents from a FEWS web service. apiURL may be any
// form accepted by Resolver.Resolve. Errors wrap ErrTransport, ErrDecode or
// ErrUnknown.
type Fetcher interface {
	FetchLocations(ctx context.Context, apiURL string) (Document, error)
	FetchParameters(ctx context.Context, apiURL string) (Document, error)
	FetchTimeseries(ctx context.Context, apiURL string, q TimeseriesQuery) (Document, error)
}
