package domain

import "time"

// Unknown is the placeholder for missing identifiers and names.
const Unknown = "Unknown"

// Document is a decoded JSON object as returned by the service client.
// Numbers are kept as json.Number so no precision is lost before coercion.
type Document map[string]any

// Location is one monitoring site from the locations resource.
// Coordinates keep the textual form the service sent.
type Location struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	ShortName  string            `json:"short_name"`
	Lat        string            `json:"lat"`
	Lon        string            `json:"lon"`
	X          string            `json:"x"`
	Y          string            `json:"y"`
	Z          string            `json:"z"`
	Attributes map[string]string `json:"attributes,omitempty"` // keyed attr_<id>
}

// Parameter is one measurable quantity from the parameters resource.
type Parameter struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	ShortName          string `json:"short_name"`
	Unit               string `json:"unit"`
	DisplayUnit        string `json:"display_unit"`
	ParameterType      string `json:"parameter_type"`
	ParameterGroup     string `json:"parameter_group"`
	ParameterGroupName string `json:"parameter_group_name"`
	UsesDatum          string `json:"uses_datum"`
}

// Observation is a single time-stamped value. A nil Value is missing; a nil
// Timestamp means the event carried no parseable time.
type Observation struct {
	LocationID  string     `json:"location_id"`
	ParameterID string     `json:"parameter_id"`
	Timestamp   *time.Time `json:"timestamp"`
	Value       *float64   `json:"value"`
	SeriesID    string     `json:"series_id"`
}

// Series groups the observations of one location/parameter pair in
// timestamp order.
type Series struct {
	ID          string        `json:"id"`
	LocationID  string        `json:"location_id"`
	ParameterID string        `json:"parameter_id"`
	Points      []Observation `json:"points"`
}

// SeriesID builds the identifier shared by all observations of a pair.
func SeriesID(locationID, parameterID string) string {
	return locationID + " - " + parameterID
}
