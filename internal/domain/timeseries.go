package domain

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// TimeseriesTable is the normalized form of a DD_JSON document.
type TimeseriesTable struct {
	Rows           []Observation // sorted by timestamp, stable, untimed rows last
	ResultCount    int           // results received
	SkippedResults int           // results without events
	UntimedEvents  int           // rows kept without a parseable timestamp
}

// timestampLayouts are tried in order when reading event timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	QueryDateLayout,
}

// NormalizeTimeseries flattens the "results" array of a DD_JSON document
// into one row per event. Results without events are dropped, never filled.
// Events without a usable timestamp are kept with a nil Timestamp.
func NormalizeTimeseries(doc Document) TimeseriesTable {
	results := asArray(doc["results"])
	t := TimeseriesTable{ResultCount: len(results)}

	for _, r := range results {
		rawEvents, ok := lookupPath(r, "events")
		if !ok {
			t.SkippedResults++
			continue
		}
		events, ok := rawEvents.([]any)
		if !ok {
			t.SkippedResults++
			continue
		}

		locID := stringAt(r, Unknown, "location", "properties", "locationId")
		paramID := stringAt(r, Unknown, "observationType", "parameterCode")
		seriesID := SeriesID(locID, paramID)

		for _, ev := range events {
			ts := parseTimestamp(ev)
			if ts == nil {
				t.UntimedEvents++
			}
			var value any
			if v, ok := lookupPath(ev, "value"); ok {
				value = v
			}
			t.Rows = append(t.Rows, Observation{
				LocationID:  locID,
				ParameterID: paramID,
				Timestamp:   ts,
				Value:       coerceValue(value),
				SeriesID:    seriesID,
			})
		}
	}

	slices.SortStableFunc(t.Rows, CompareObservations)
	return t
}

// CompareObservations orders observations by timestamp. Observations
// without a timestamp sort after all others.
func CompareObservations(a, b Observation) int {
	switch {
	case a.Timestamp == nil && b.Timestamp == nil:
		return 0
	case a.Timestamp == nil:
		return 1
	case b.Timestamp == nil:
		return -1
	}
	return a.Timestamp.Compare(*b.Timestamp)
}

// GroupSeries splits rows into series in first-seen order. Point order
// within a series follows rows.
func GroupSeries(rows []Observation) []Series {
	var out []Series
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.SeriesID]
		if !ok {
			i = len(out)
			index[r.SeriesID] = i
			out = append(out, Series{
				ID:          r.SeriesID,
				LocationID:  r.LocationID,
				ParameterID: r.ParameterID,
			})
		}
		out[i].Points = append(out[i].Points, r)
	}
	return out
}

func parseTimestamp(ev any) *time.Time {
	s := strings.TrimSpace(stringAt(ev, "", "timeStamp"))
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			ts = ts.UTC()
			return &ts
		}
	}
	return nil
}

// coerceValue converts numbers and numeric strings to float64. Anything
// else, including NaN and infinities, is missing.
func coerceValue(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return nil
		}
		f = parsed
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
