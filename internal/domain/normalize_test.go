package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeDoc decodes JSON the same way the service client does.
func decodeDoc(t *testing.T, s string) Document {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var doc Document
	require.NoError(t, dec.Decode(&doc))
	return doc
}

func TestNormalizeLocations_Fields(t *testing.T) {
	doc := decodeDoc(t, `{"locations": [{
		"locationId": "L1",
		"description": "Lobith",
		"shortName": "LOB",
		"lat": "51.84",
		"lon": 6.11,
		"x": "200000",
		"y": "430000",
		"attributes": [
			{"id": "river", "text": "Rhine"},
			{"id": "basin"},
			{"text": "orphan"},
			{"id": "code", "text": 42}
		]
	}]}`)

	got := NormalizeLocations(doc)

	want := []Location{{
		ID:        "L1",
		Name:      "Lobith",
		ShortName: "LOB",
		Lat:       "51.84",
		Lon:       "6.11",
		X:         "200000",
		Y:         "430000",
		Z:         "",
		Attributes: map[string]string{
			"attr_river": "Rhine",
			"attr_code":  "42",
		},
	}}
	if diff := cmp.Diff(want, got.Records); diff != "" {
		t.Errorf("locations mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"L1"}, got.DistinctIDs)
	assert.Equal(t, 1, got.RawCount)
}

func TestNormalizeLocations_Defaults(t *testing.T) {
	tests := []struct {
		name     string
		entry    string
		wantID   string
		wantName string
	}{
		{"everything missing", `{}`, Unknown, Unknown},
		{"short name fallback", `{"locationId": "L2", "shortName": "S2"}`, "L2", "S2"},
		{"null description falls back", `{"locationId": "L3", "description": null, "shortName": "S3"}`, "L3", "S3"},
		{"null id", `{"locationId": null, "description": "D"}`, Unknown, "D"},
		{"empty description kept", `{"locationId": "L4", "description": "", "shortName": "S4"}`, "L4", ""},
		{"object description ignored", `{"locationId": "L5", "description": {"nl": "x"}}`, "L5", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLocations(decodeDoc(t, `{"locations": [`+tt.entry+`]}`))
			require.Len(t, got.Records, 1)
			loc := got.Records[0]
			assert.Equal(t, tt.wantID, loc.ID)
			assert.Equal(t, tt.wantName, loc.Name)
			assert.Empty(t, loc.Lat)
			assert.Empty(t, loc.Z)
			assert.Nil(t, loc.Attributes)
		})
	}
}

func TestNormalizeLocations_Empty(t *testing.T) {
	for _, body := range []string{`{"locations": []}`, `{}`, `{"locations": null}`, `{"locations": "oops"}`} {
		got := NormalizeLocations(decodeDoc(t, body))
		assert.Empty(t, got.Records, body)
		assert.Empty(t, got.DistinctIDs, body)
		assert.Zero(t, got.RawCount, body)
	}
}

func TestNormalizeLocations_DistinctCounts(t *testing.T) {
	doc := decodeDoc(t, `{"locations": [
		{"locationId": "A"}, {"locationId": "B"}, {"locationId": "A"},
		{"locationId": "C"}, {"locationId": "D"}, {"locationId": "B"},
		{"locationId": "C"}
	]}`)

	got := NormalizeLocations(doc)

	assert.Equal(t, 7, got.RawCount)
	assert.Len(t, got.Records, 7)
	assert.Equal(t, []string{"A", "B", "C", "D"}, got.DistinctIDs)
}

func TestNormalizeLocations_SkipsNonObjects(t *testing.T) {
	got := NormalizeLocations(decodeDoc(t, `{"locations": [1, "x", null, {"locationId": "A"}]}`))
	assert.Equal(t, 1, got.RawCount)
	assert.Equal(t, 3, got.SkippedEntries)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "A", got.Records[0].ID)
}

func TestNormalizeParameters_SkipsNonObjects(t *testing.T) {
	got := NormalizeParameters(decodeDoc(t, `{"timeSeriesParameters": [[], {"id": "H.m"}, 3]}`))
	assert.Equal(t, 1, got.RawCount)
	assert.Equal(t, 2, got.SkippedEntries)
	assert.Equal(t, []string{"H.m"}, got.DistinctIDs)
}

func TestNormalizeParameters(t *testing.T) {
	doc := decodeDoc(t, `{"timeSeriesParameters": [
		{"id": "H.m", "name": "Water level", "shortName": "H", "unit": "m",
		 "displayUnit": "cm", "parameterType": "instantaneous",
		 "parameterGroup": "level", "parameterGroupName": "Levels", "usesDatum": "true"},
		{"name": "No id"},
		{"id": "Q.m", "usesDatum": false},
		{"id": "H.m"}
	]}`)

	got := NormalizeParameters(doc)

	want := []Parameter{
		{
			ID: "H.m", Name: "Water level", ShortName: "H", Unit: "m", DisplayUnit: "cm",
			ParameterType: "instantaneous", ParameterGroup: "level",
			ParameterGroupName: "Levels", UsesDatum: "true",
		},
		{ID: Unknown, Name: "No id"},
		{ID: "Q.m", Name: Unknown, UsesDatum: "false"},
		{ID: "H.m", Name: Unknown},
	}
	if diff := cmp.Diff(want, got.Records); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"H.m", Unknown, "Q.m"}, got.DistinctIDs)
	assert.Equal(t, 4, got.RawCount)
}

func TestNormalizeParameters_Empty(t *testing.T) {
	got := NormalizeParameters(decodeDoc(t, `{"parameters": [{"id": "wrong key"}]}`))
	assert.Empty(t, got.Records)
	assert.Zero(t, got.RawCount)
}

func TestSelectorOptions(t *testing.T) {
	ids := []string{"A", "B", "A", "C", "D", "E", "F", "G"}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"default limit", 5, []string{"A", "B", "C", "D", "E"}},
		{"limit above distinct", 20, []string{"A", "B", "C", "D", "E", "F", "G"}},
		{"limit one", 1, []string{"A"}},
		{"no limit", 0, []string{"A", "B", "C", "D", "E", "F", "G"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectorOptions(ids, tt.limit))
		})
	}

	assert.Empty(t, SelectorOptions(nil, 5))
}

func TestNormalizeTimeseries(t *testing.T) {
	doc := decodeDoc(t, `{"results": [
		{
			"location": {"properties": {"locationId": "LOC1"}},
			"observationType": {"parameterCode": "P1"},
			"events": [
				{"timeStamp": "2024-01-01T02:00:00Z", "value": 1.5},
				{"timeStamp": "2024-01-01T00:00:00Z", "value": "2.25"},
				{"timeStamp": "2024-01-01T01:00:00Z", "value": "N/A"}
			]
		},
		{
			"location": {"properties": {"locationId": "LOC2"}},
			"observationType": {"parameterCode": "P1"}
		},
		{
			"location": {"properties": {"locationId": "LOC3"}},
			"events": [
				{"timeStamp": "2024-01-01T01:00:00Z", "value": 7}
			]
		}
	]}`)

	got := NormalizeTimeseries(doc)

	assert.Equal(t, 3, got.ResultCount)
	assert.Equal(t, 1, got.SkippedResults)
	assert.Zero(t, got.UntimedEvents)
	require.Len(t, got.Rows, 4)

	for i := 1; i < len(got.Rows); i++ {
		assert.LessOrEqual(t, CompareObservations(got.Rows[i-1], got.Rows[i]), 0, "rows must be non-decreasing")
	}

	first := got.Rows[0]
	assert.Equal(t, "LOC1", first.LocationID)
	assert.Equal(t, "P1", first.ParameterID)
	assert.Equal(t, "LOC1 - P1", first.SeriesID)
	require.NotNil(t, first.Value)
	assert.Equal(t, 2.25, *first.Value)

	// Equal timestamps keep document order.
	assert.Equal(t, "LOC1 - P1", got.Rows[1].SeriesID)
	assert.Nil(t, got.Rows[1].Value)
	assert.Equal(t, "LOC3 - Unknown", got.Rows[2].SeriesID)
	require.NotNil(t, got.Rows[2].Value)
	assert.Equal(t, 7.0, *got.Rows[2].Value)

	for _, r := range got.Rows {
		assert.NotEqual(t, "LOC2", r.LocationID)
	}
}

func TestNormalizeTimeseries_MissingIdentifiers(t *testing.T) {
	tests := []struct {
		name      string
		result    string
		wantLoc   string
		wantParam string
	}{
		{"no location", `{"observationType": {"parameterCode": "P"}}`, Unknown, "P"},
		{"no properties", `{"location": {}, "observationType": {"parameterCode": "P"}}`, Unknown, "P"},
		{"null properties", `{"location": {"properties": null}}`, Unknown, Unknown},
		{"location not an object", `{"location": "L", "observationType": {}}`, Unknown, Unknown},
		{"both present", `{"location": {"properties": {"locationId": "L"}}, "observationType": {"parameterCode": "P"}}`, "L", "P"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r map[string]any
			require.NoError(t, json.Unmarshal([]byte(tt.result), &r))
			r["events"] = []any{map[string]any{"timeStamp": "2024-01-01T00:00:00Z", "value": 1.0}}

			got := NormalizeTimeseries(Document{"results": []any{r}})
			require.Len(t, got.Rows, 1)
			assert.Equal(t, tt.wantLoc, got.Rows[0].LocationID)
			assert.Equal(t, tt.wantParam, got.Rows[0].ParameterID)
			assert.Equal(t, SeriesID(tt.wantLoc, tt.wantParam), got.Rows[0].SeriesID)
		})
	}
}

func TestNormalizeTimeseries_Timestamps(t *testing.T) {
	doc := decodeDoc(t, `{"results": [{"events": [
		{"timeStamp": "2024-01-01T01:00:00+01:00", "value": 1},
		{"timeStamp": "2024-01-01 03:00:00", "value": 2},
		{"timeStamp": "not a time", "value": 3},
		{"value": 4}
	]}]}`)

	got := NormalizeTimeseries(doc)

	assert.Equal(t, 2, got.UntimedEvents)
	require.Len(t, got.Rows, 4)
	require.NotNil(t, got.Rows[0].Timestamp)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *got.Rows[0].Timestamp)
	require.NotNil(t, got.Rows[1].Timestamp)
	assert.Equal(t, time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC), *got.Rows[1].Timestamp)

	// Untimed events are kept, last, in document order.
	assert.Nil(t, got.Rows[2].Timestamp)
	assert.Equal(t, 3.0, *got.Rows[2].Value)
	assert.Nil(t, got.Rows[3].Timestamp)
	assert.Equal(t, 4.0, *got.Rows[3].Value)
}

func TestCompareObservations(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	tests := []struct {
		name string
		a, b *time.Time
		want int
	}{
		{"earlier first", &early, &late, -1},
		{"equal", &early, &early, 0},
		{"later second", &late, &early, 1},
		{"untimed after timed", nil, &early, 1},
		{"timed before untimed", &late, nil, -1},
		{"both untimed", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareObservations(Observation{Timestamp: tt.a}, Observation{Timestamp: tt.b})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTimeseries_Empty(t *testing.T) {
	for _, body := range []string{`{}`, `{"results": []}`, `{"results": [{"events": "none"}]}`} {
		got := NormalizeTimeseries(decodeDoc(t, body))
		assert.Empty(t, got.Rows, body)
	}
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *float64
	}{
		{"json number", json.Number("3.5"), ptr(3.5)},
		{"float", 2.0, ptr(2.0)},
		{"numeric string", " -1.25 ", ptr(-1.25)},
		{"exponent string", "1e3", ptr(1000)},
		{"not available", "N/A", nil},
		{"empty string", "", nil},
		{"nan string", "NaN", nil},
		{"infinite", "Inf", nil},
		{"bool", true, nil},
		{"nil", nil, nil},
		{"object", map[string]any{"v": 1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceValue(tt.in))
		})
	}
}

func TestGroupSeries(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := ts.Add(time.Hour)
	rows := []Observation{
		{LocationID: "B", ParameterID: "P", SeriesID: "B - P", Timestamp: &ts},
		{LocationID: "A", ParameterID: "P", SeriesID: "A - P", Timestamp: &ts},
		{LocationID: "B", ParameterID: "P", SeriesID: "B - P", Timestamp: &later},
	}

	got := GroupSeries(rows)

	require.Len(t, got, 2)
	assert.Equal(t, "B - P", got[0].ID)
	assert.Equal(t, "B", got[0].LocationID)
	assert.Len(t, got[0].Points, 2)
	assert.Equal(t, "A - P", got[1].ID)
	assert.Len(t, got[1].Points, 1)
	assert.Nil(t, GroupSeries(nil))
}

func TestSeriesID(t *testing.T) {
	assert.Equal(t, "LOC1 - P1", SeriesID("LOC1", "P1"))
}

func ptr(f float64) *float64 { return &f }
