// Package domain models the Delft-FEWS PI REST web service: the endpoints it
// exposes and the records the explorer derives from its JSON documents.
//
// # Endpoints
//
// Every FEWS web service deployment publishes its PI REST API under a fixed
// marker path below a deployment-specific base URL:
//
//	https://host/<deployment>/FewsWebServices/rest/fewspiservice/v1
//	\___________ base URL _______________/\______ REST path ______/
//
// Three resources are read below the REST path: /locations, /parameters and
// /timeseries. Users paste URLs in any of three shapes (a bare base URL, the
// full REST URL, or a URL with trailing path segments), so [Resolver.Resolve]
// reduces all of them to an [EndpointSet]. A small table of known deployments
// is checked first and its sub-paths win over the canonical ones.
//
// # Document Formats
//
// Metadata resources are requested as PI_JSON:
//
//	{"locations": [{"locationId": "L1", "description": "...", "shortName": "...",
//	                "lat": "52.1", "lon": "5.1", "x": "...", "y": "...", "z": "...",
//	                "attributes": [{"id": "river", "text": "Rhine"}]}]}
//
//	{"timeSeriesParameters": [{"id": "H.m", "name": "...", "unit": "m", ...}]}
//
// Time series are requested as DD_JSON, which nests identifiers one or two
// levels deep:
//
//	{"results": [{"location": {"properties": {"locationId": "L1"}},
//	              "observationType": {"parameterCode": "H.m"},
//	              "events": [{"timeStamp": "2024-01-01T00:00:00Z", "value": 1.2}]}]}
//
// The two encodings are not interchangeable.
//
// # Defensive Access
//
// Every field is optional. Missing identifiers become "Unknown", missing
// descriptive fields become "", and a JSON null counts as absent. Values
// that are not numeric (for example "N/A") become missing observations
// rather than errors. A result without an events collection is dropped, since
// it cannot contribute any observation.
//
// # Query Dates
//
// Users enter dates as YYYY-MM-DD. The service expects midnight UTC in ISO
// 8601 form, so "2024-03-01" is sent as "2024-03-01T00:00:00Z". See
// [ParseQueryDate].
package domain
