package fews

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/fews-explorer/internal/domain"
	"github.com/couchcryptid/fews-explorer/internal/observability"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// maxErrorBody bounds how much of a failed response is quoted in errors.
const maxErrorBody = 512

// Resource names used in logs, spans and metric labels.
const (
	resourceLocations  = "locations"
	resourceParameters = "parameters"
	resourceTimeseries = "timeseries"
)

var tracer = otel.Tracer("fews-pi-client")

// Client implements domain.Fetcher against the FEWS PI REST API.
type Client struct {
	httpClient *http.Client
	resolver   *domain.Resolver
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a FEWS client. Requests time out after timeout.
func NewClient(resolver *domain.Resolver, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		resolver: resolver,
		metrics:  metrics,
		logger:   logger,
	}
}

// FetchLocations retrieves the PI_JSON locations document.
func (c *Client) FetchLocations(ctx context.Context, apiURL string) (domain.Document, error) {
	ep := c.resolver.Resolve(apiURL)
	q := url.Values{"documentFormat": {domain.FormatPIJSON}}
	return c.get(ctx, resourceLocations, ep.LocationsURL(), q)
}

// FetchParameters retrieves the PI_JSON parameters document.
func (c *Client) FetchParameters(ctx context.Context, apiURL string) (domain.Document, error) {
	ep := c.resolver.Resolve(apiURL)
	q := url.Values{"documentFormat": {domain.FormatPIJSON}}
	return c.get(ctx, resourceParameters, ep.ParametersURL(), q)
}

// FetchTimeseries retrieves the DD_JSON time series document for the
// selected locations and parameters. Missing values are omitted upstream.
func (c *Client) FetchTimeseries(ctx context.Context, apiURL string, tq domain.TimeseriesQuery) (domain.Document, error) {
	ep := c.resolver.Resolve(apiURL)
	q := url.Values{
		"locationIds":    {strings.Join(tq.LocationIDs, ",")},
		"parameterIds":   {strings.Join(tq.ParameterIDs, ",")},
		"documentFormat": {domain.FormatDDJSON},
		"omitMissing":    {"true"},
	}
	if tq.Start != "" {
		q.Set("startTime", tq.Start)
	}
	if tq.End != "" {
		q.Set("endTime", tq.End)
	}
	return c.get(ctx, resourceTimeseries, ep.TimeseriesURL(), q)
}

func (c *Client) get(ctx context.Context, resource, endpoint string, q url.Values) (doc domain.Document, err error) {
	ctx, span := tracer.Start(ctx, "get-"+resource)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	fullURL := endpoint + "?" + q.Encode()
	span.SetAttributes(attribute.String("fews.resource", resource), attribute.String("fews.url", fullURL))

	start := domain.Now()
	doc, err = c.doRequest(ctx, resource, fullURL)

	c.metrics.UpstreamDuration.WithLabelValues(resource).Observe(domain.Since(start).Seconds())
	c.metrics.UpstreamRequests.WithLabelValues(resource, outcome(err)).Inc()
	return doc, err
}

func (c *Client) doRequest(ctx context.Context, resource, fullURL string) (domain.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w: %w", resource, domain.ErrUnknown, err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("fews request", "resource", resource, "url", fullURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w: %w", resource, domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("fews response", "resource", resource, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%s request: %w: status %d: %s", resource, domain.ErrTransport, resp.StatusCode, bytes.TrimSpace(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w: %w", resource, domain.ErrTransport, err)
	}

	doc, err := decodeDocument(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", resource, err)
	}
	return doc, nil
}

// decodeDocument parses a JSON body. Numbers stay json.Number. Valid JSON
// that is not an object yields an empty document.
func decodeDocument(body []byte) (domain.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", domain.ErrDecode)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return domain.Document{}, nil
	}
	return domain.Document(obj), nil
}

func outcome(err error) string {
	switch domain.KindOf(err) {
	case "":
		return "success"
	case domain.KindTransport:
		return "transport"
	case domain.KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}
