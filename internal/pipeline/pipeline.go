package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/fews-explorer/internal/domain"
	"github.com/couchcryptid/fews-explorer/internal/observability"
)

// Operation names used in logs and metric labels.
const (
	OpLocations  = "locations"
	OpParameters = "parameters"
	OpTimeseries = "timeseries"
	OpConnect    = "connect"
)

// BatchLoader writes the observations of a successful time series query to a
// downstream sink.
type BatchLoader interface {
	LoadBatch(ctx context.Context, observations []domain.Observation) error
}

// Options configures a Pipeline.
type Options struct {
	// DefaultAPIURL is used by Connect when the caller supplies none.
	DefaultAPIURL string
	// SelectorLimit caps the selector options returned with metadata.
	SelectorLimit int
}

// Pipeline runs explorer queries: validate, resolve, fetch, normalize. Every
// public method converts failures into a status string and never returns an
// error, so callers only render results.
type Pipeline struct {
	fetcher  domain.Fetcher
	resolver *domain.Resolver
	loader   BatchLoader
	logger   *slog.Logger
	metrics  *observability.Metrics
	opts     Options

	// defaultBase is the base URL of the configured deployment. Only
	// requests to it affect readiness.
	defaultBase string

	mu          sync.Mutex
	lastFailure error
}

// New creates a Pipeline. loader may be nil to disable publishing.
func New(f domain.Fetcher, r *domain.Resolver, loader BatchLoader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.DefaultAPIURL == "" {
		opts.DefaultAPIURL = domain.DefaultAPIURL
	}
	if opts.SelectorLimit <= 0 {
		opts.SelectorLimit = 5
	}
	return &Pipeline{
		fetcher:     f,
		resolver:    r,
		loader:      loader,
		logger:      logger,
		metrics:     metrics,
		opts:        opts,
		defaultBase: r.Resolve(opts.DefaultAPIURL).BaseURL,
	}
}

// CheckReadiness returns an error while the most recent request to the
// configured deployment failed at the transport level. Requests to URLs
// supplied by callers never affect readiness.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastFailure != nil {
		return fmt.Errorf("last upstream request failed: %w", p.lastFailure)
	}
	return nil
}

// Locations fetches and normalizes the locations of apiURL.
func (p *Pipeline) Locations(ctx context.Context, apiURL string) LocationsResult {
	start := domain.Now()
	res := LocationsResult{APIURL: strings.TrimSpace(apiURL), FetchedAt: start}

	table, err := p.locations(ctx, res.APIURL)
	if err != nil {
		res.Status = err.Error()
		res.Kind = domain.KindOf(err)
		p.finish(OpLocations, start, err)
		return res
	}

	res.Records = table.Records
	res.Options = domain.SelectorOptions(table.DistinctIDs, p.opts.SelectorLimit)
	res.DistinctCount = len(table.DistinctIDs)
	res.RawCount = table.RawCount
	res.Status = fmt.Sprintf("%d unique locations found out of %d items (first %d shown)",
		res.DistinctCount, res.RawCount, len(res.Options))
	p.finish(OpLocations, start, nil)
	return res
}

func (p *Pipeline) locations(ctx context.Context, apiURL string) (domain.LocationTable, error) {
	if apiURL == "" {
		return domain.LocationTable{}, errMissingURL
	}
	doc, err := p.fetcher.FetchLocations(ctx, apiURL)
	p.observeUpstream(apiURL, err)
	if err != nil {
		return domain.LocationTable{}, fetchFailed("locations", err)
	}
	table := domain.NormalizeLocations(doc)
	p.metrics.RecordsNormalized.WithLabelValues(OpLocations).Add(float64(len(table.Records)))
	if len(table.Records) == 0 {
		return table, failure(domain.ErrEmptyResult, "no locations found")
	}
	return table, nil
}

// Parameters fetches and normalizes the parameters of apiURL.
func (p *Pipeline) Parameters(ctx context.Context, apiURL string) ParametersResult {
	start := domain.Now()
	res := ParametersResult{APIURL: strings.TrimSpace(apiURL), FetchedAt: start}

	table, err := p.parameters(ctx, res.APIURL)
	if err != nil {
		res.Status = err.Error()
		res.Kind = domain.KindOf(err)
		p.finish(OpParameters, start, err)
		return res
	}

	res.Records = table.Records
	res.Options = domain.SelectorOptions(table.DistinctIDs, p.opts.SelectorLimit)
	res.DistinctCount = len(table.DistinctIDs)
	res.RawCount = table.RawCount
	res.Status = fmt.Sprintf("%d unique parameters found out of %d items (first %d shown)",
		res.DistinctCount, res.RawCount, len(res.Options))
	p.finish(OpParameters, start, nil)
	return res
}

func (p *Pipeline) parameters(ctx context.Context, apiURL string) (domain.ParameterTable, error) {
	if apiURL == "" {
		return domain.ParameterTable{}, errMissingURL
	}
	doc, err := p.fetcher.FetchParameters(ctx, apiURL)
	p.observeUpstream(apiURL, err)
	if err != nil {
		return domain.ParameterTable{}, fetchFailed("parameters", err)
	}
	table := domain.NormalizeParameters(doc)
	p.metrics.RecordsNormalized.WithLabelValues(OpParameters).Add(float64(len(table.Records)))
	if len(table.Records) == 0 {
		return table, failure(domain.ErrEmptyResult, "no parameters found")
	}
	return table, nil
}

// Timeseries validates req, fetches the matching observations and groups
// them into chart-ready series. Rows whose location/parameter pair was not
// selected are dropped.
func (p *Pipeline) Timeseries(ctx context.Context, req TimeseriesRequest) TimeseriesResult {
	start := domain.Now()
	res := TimeseriesResult{APIURL: strings.TrimSpace(req.APIURL), FetchedAt: start}

	table, orphans, err := p.timeseries(ctx, res.APIURL, req)
	res.Orphans = orphans
	res.SkippedResults = table.SkippedResults
	res.UntimedEvents = table.UntimedEvents
	if err != nil {
		res.Status = err.Error()
		res.Kind = domain.KindOf(err)
		p.finish(OpTimeseries, start, err)
		return res
	}

	res.Rows = table.Rows
	res.Series = domain.GroupSeries(table.Rows)
	res.Status = "time series found for the selected criteria"
	p.publish(ctx, res.Rows)
	p.finish(OpTimeseries, start, nil)
	return res
}

func (p *Pipeline) timeseries(ctx context.Context, apiURL string, req TimeseriesRequest) (domain.TimeseriesTable, int, error) {
	if apiURL == "" {
		return domain.TimeseriesTable{}, 0, errMissingURL
	}
	locIDs := cleanIDs(req.LocationIDs)
	paramIDs := cleanIDs(req.ParameterIDs)
	if len(locIDs) == 0 || len(paramIDs) == 0 {
		return domain.TimeseriesTable{}, 0, failure(domain.ErrInputValidation, "select at least one location and parameter")
	}
	startTime, err := domain.ParseQueryDate(req.StartDate)
	if err != nil {
		return domain.TimeseriesTable{}, 0, invalidDate("start", req.StartDate)
	}
	endTime, err := domain.ParseQueryDate(req.EndDate)
	if err != nil {
		return domain.TimeseriesTable{}, 0, invalidDate("end", req.EndDate)
	}

	doc, err := p.fetcher.FetchTimeseries(ctx, apiURL, domain.TimeseriesQuery{
		LocationIDs:  locIDs,
		ParameterIDs: paramIDs,
		Start:        startTime,
		End:          endTime,
	})
	p.observeUpstream(apiURL, err)
	if err != nil {
		return domain.TimeseriesTable{}, 0, fetchFailed("time series", err)
	}

	table := domain.NormalizeTimeseries(doc)
	var orphans int
	table.Rows, orphans = filterSelected(table.Rows, locIDs, paramIDs)
	p.metrics.RecordsNormalized.WithLabelValues(OpTimeseries).Add(float64(len(table.Rows)))
	p.metrics.OrphanRows.Add(float64(orphans))
	if orphans > 0 {
		p.logger.Warn("dropped rows outside the selection", "orphans", orphans)
	}
	if len(table.Rows) == 0 {
		return table, orphans, failure(domain.ErrEmptyResult, "no data found in the time series")
	}
	return table, orphans, nil
}

// Connect normalizes apiURL, falling back to the default deployment, and
// loads locations then parameters.
func (p *Pipeline) Connect(ctx context.Context, apiURL string) ConnectResult {
	start := domain.Now()
	canonical := p.resolver.Canonical(apiURL, p.opts.DefaultAPIURL)

	res := ConnectResult{
		APIURL:     canonical,
		Locations:  p.Locations(ctx, canonical),
		Parameters: p.Parameters(ctx, canonical),
	}

	outcome := "ok"
	if res.Locations.Kind != "" || res.Parameters.Kind != "" {
		outcome = "partial"
	}
	p.metrics.Queries.WithLabelValues(OpConnect, outcome).Inc()
	p.metrics.QueryDuration.WithLabelValues(OpConnect).Observe(domain.Since(start).Seconds())
	return res
}

// publish forwards rows to the loader. Failures are logged and counted but
// never change the query result.
func (p *Pipeline) publish(ctx context.Context, rows []domain.Observation) {
	if p.loader == nil {
		return
	}
	if err := p.loader.LoadBatch(ctx, rows); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Warn("publish observations failed", "error", err, "rows", len(rows))
		return
	}
	p.metrics.ObservationsPublished.Add(float64(len(rows)))
}

// observeUpstream tracks transport health of the configured deployment.
func (p *Pipeline) observeUpstream(apiURL string, err error) {
	if p.resolver.Resolve(apiURL).BaseURL != p.defaultBase {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case err == nil:
		p.lastFailure = nil
		p.metrics.UpstreamHealthy.Set(1)
	case errors.Is(err, domain.ErrTransport):
		p.lastFailure = err
		p.metrics.UpstreamHealthy.Set(0)
	}
}

func (p *Pipeline) finish(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = domain.KindOf(err)
	}
	p.metrics.Queries.WithLabelValues(op, outcome).Inc()
	p.metrics.QueryDuration.WithLabelValues(op).Observe(domain.Since(start).Seconds())

	if err != nil {
		p.logger.Warn("query failed", "operation", op, "kind", outcome, "error", err)
		return
	}
	p.logger.Info("query completed", "operation", op, "duration", domain.Since(start))
}
