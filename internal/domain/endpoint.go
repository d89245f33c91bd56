package domain

import "strings"

// Canonical sub-paths of the FEWS PI REST API.
const (
	RestPath       = "/rest/fewspiservice/v1"
	LocationsPath  = "/locations"
	ParametersPath = "/parameters"
	TimeseriesPath = "/timeseries"
)

// DefaultAPIURL is the deployment used when the caller supplies no URL.
const DefaultAPIURL = "https://rwsos-dataservices-ont.avi.deltares.nl/iwp/FewsWebServices/rest/fewspiservice/v1"

// EndpointSet holds the base URL and resource paths derived from a raw URL.
// Values are immutable once resolved.
type EndpointSet struct {
	BaseURL        string `json:"base_url"`
	RestPath       string `json:"rest_path"`
	LocationsPath  string `json:"locations_path"`
	ParametersPath string `json:"parameters_path"`
	TimeseriesPath string `json:"timeseries_path"`
}

// LocationsURL returns the full locations resource URL without a query.
func (e EndpointSet) LocationsURL() string { return e.BaseURL + e.LocationsPath }

// ParametersURL returns the full parameters resource URL without a query.
func (e EndpointSet) ParametersURL() string { return e.BaseURL + e.ParametersPath }

// TimeseriesURL returns the full timeseries resource URL without a query.
func (e EndpointSet) TimeseriesURL() string { return e.BaseURL + e.TimeseriesPath }

// APIURL returns the REST root of the deployment.
func (e EndpointSet) APIURL() string { return e.BaseURL + e.RestPath }

// Deployment is a known FEWS installation whose resource paths are fixed.
// Resource paths are absolute, i.e. they already include the REST path.
type Deployment struct {
	BaseURL        string
	RestPath       string
	LocationsPath  string
	ParametersPath string
	TimeseriesPath string
}

// NewDeployment builds a deployment that follows the canonical layout below
// the given REST path.
func NewDeployment(baseURL, restPath string) Deployment {
	return Deployment{
		BaseURL:        baseURL,
		RestPath:       restPath,
		LocationsPath:  restPath + LocationsPath,
		ParametersPath: restPath + ParametersPath,
		TimeseriesPath: restPath + TimeseriesPath,
	}
}

// DefaultDeployments returns the built-in deployment table.
func DefaultDeployments() []Deployment {
	return []Deployment{
		NewDeployment("https://ffws2.savagis.org/FewsWebServices", RestPath),
		NewDeployment("https://rwsos-dataservices-ont.avi.deltares.nl/iwp/FewsWebServices", RestPath),
	}
}

// Resolver maps user-supplied URLs to endpoint sets. It is safe for
// concurrent use because the deployment table is never modified.
type Resolver struct {
	deployments []Deployment
}

// NewResolver creates a Resolver that consults deployments in slice order.
func NewResolver(deployments []Deployment) *Resolver {
	d := make([]Deployment, len(deployments))
	copy(d, deployments)
	return &Resolver{deployments: d}
}

// Deployments returns a copy of the deployment table.
func (r *Resolver) Deployments() []Deployment {
	d := make([]Deployment, len(r.deployments))
	copy(d, r.deployments)
	return d
}

// Resolve derives the endpoint set for raw. It never fails: an unrecognized
// or empty input is treated as a bare base URL.
//
// Resolution order:
//  1. one trailing "/" is stripped;
//  2. a URL starting with a known deployment base uses that deployment;
//  3. a URL containing the REST marker is split at its first occurrence;
//  4. otherwise the whole URL is the base.
//
// Resolving BaseURL+RestPath of a result yields the same result.
func (r *Resolver) Resolve(raw string) EndpointSet {
	u := strings.TrimSuffix(raw, "/")

	for _, d := range r.deployments {
		if d.BaseURL != "" && strings.HasPrefix(u, d.BaseURL) {
			return EndpointSet{
				BaseURL:        d.BaseURL,
				RestPath:       d.RestPath,
				LocationsPath:  d.LocationsPath,
				ParametersPath: d.ParametersPath,
				TimeseriesPath: d.TimeseriesPath,
			}
		}
	}

	base := u
	if i := strings.Index(u, RestPath); i >= 0 {
		base = u[:i]
	}
	return canonicalSet(base)
}

// Canonical normalizes a URL the way the connect action echoes it back.
// An empty raw falls back to fallback. Missing REST paths are appended
// using the resolved base.
func (r *Resolver) Canonical(raw, fallback string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		u = fallback
	}
	u = strings.TrimSuffix(u, "/")
	if strings.Contains(u, RestPath) {
		return u
	}
	return r.Resolve(u).APIURL()
}

func canonicalSet(base string) EndpointSet {
	return EndpointSet{
		BaseURL:        base,
		RestPath:       RestPath,
		LocationsPath:  RestPath + LocationsPath,
		ParametersPath: RestPath + ParametersPath,
		TimeseriesPath: RestPath + TimeseriesPath,
	}
}
