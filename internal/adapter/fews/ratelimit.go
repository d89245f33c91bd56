package fews

import (
	"context"
	"fmt"

	"github.com/couchcryptid/fews-explorer/internal/domain"
	"golang.org/x/time/rate"
)

// RateLimitedFetcher wraps a Fetcher so that calls to the upstream service
// never exceed a fixed rate. All three resources share one budget.
type RateLimitedFetcher struct {
	inner   domain.Fetcher
	limiter *rate.Limiter
}

// NewRateLimitedFetcher creates a rate limiting decorator. rps may be
// fractional; burst must be at least 1 for any call to pass.
func NewRateLimitedFetcher(inner domain.Fetcher, rps float64, burst int) *RateLimitedFetcher {
	return &RateLimitedFetcher{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimitedFetcher) FetchLocations(ctx context.Context, apiURL string) (domain.Document, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.FetchLocations(ctx, apiURL)
}

func (r *RateLimitedFetcher) FetchParameters(ctx context.Context, apiURL string) (domain.Document, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.FetchParameters(ctx, apiURL)
}

func (r *RateLimitedFetcher) FetchTimeseries(ctx context.Context, apiURL string, q domain.TimeseriesQuery) (domain.Document, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.FetchTimeseries(ctx, apiURL, q)
}

// wait blocks for a token. A cancelled wait is reported as a transport
// failure because no request reached the service.
func (r *RateLimitedFetcher) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w: %w", domain.ErrTransport, err)
	}
	return nil
}

var (
	_ domain.Fetcher = (*Client)(nil)
	_ domain.Fetcher = (*RateLimitedFetcher)(nil)
)
