package domain

// LocationTable is the normalized form of a locations document.
type LocationTable struct {
	Records        []Location
	DistinctIDs    []string // in encounter order
	RawCount       int      // object entries read, including duplicates
	SkippedEntries int      // entries that were not objects
}

// ParameterTable is the normalized form of a parameters document.
type ParameterTable struct {
	Records        []Parameter
	DistinctIDs    []string
	RawCount       int
	SkippedEntries int
}

// NormalizeLocations flattens the "locations" array of a PI_JSON document.
// A missing or non-array key yields an empty table. Entries that are not
// objects are counted in SkippedEntries and left out of RawCount.
func NormalizeLocations(doc Document) LocationTable {
	entries := asArray(doc["locations"])
	t := LocationTable{Records: make([]Location, 0, len(entries))}
	seen := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		if _, ok := asObject(e); !ok {
			t.SkippedEntries++
			continue
		}
		t.RawCount++
		loc := Location{
			ID:        stringAt(e, Unknown, "locationId"),
			Name:      locationName(e),
			ShortName: stringAt(e, "", "shortName"),
			Lat:       stringAt(e, "", "lat"),
			Lon:       stringAt(e, "", "lon"),
			X:         stringAt(e, "", "x"),
			Y:         stringAt(e, "", "y"),
			Z:         stringAt(e, "", "z"),
		}
		loc.Attributes = locationAttributes(e)

		t.Records = append(t.Records, loc)
		if _, dup := seen[loc.ID]; !dup {
			seen[loc.ID] = struct{}{}
			t.DistinctIDs = append(t.DistinctIDs, loc.ID)
		}
	}
	return t
}

// locationName prefers the description and falls back to the short name.
func locationName(e any) string {
	if raw, ok := lookupPath(e, "description"); ok {
		if s, ok := scalarString(raw); ok {
			return s
		}
	}
	return stringAt(e, Unknown, "shortName")
}

// locationAttributes keeps attributes that carry both an id and a text.
func locationAttributes(e any) map[string]string {
	raw, ok := lookupPath(e, "attributes")
	if !ok {
		return nil
	}
	var attrs map[string]string
	for _, a := range asArray(raw) {
		id, okID := lookupPath(a, "id")
		text, okText := lookupPath(a, "text")
		if !okID || !okText {
			continue
		}
		idStr, okID := scalarString(id)
		textStr, okText := scalarString(text)
		if !okID || !okText {
			continue
		}
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs["attr_"+idStr] = textStr
	}
	return attrs
}

// NormalizeParameters flattens the "timeSeriesParameters" array of a
// PI_JSON document.
func NormalizeParameters(doc Document) ParameterTable {
	entries := asArray(doc["timeSeriesParameters"])
	t := ParameterTable{Records: make([]Parameter, 0, len(entries))}
	seen := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		if _, ok := asObject(e); !ok {
			t.SkippedEntries++
			continue
		}
		t.RawCount++
		p := Parameter{
			ID:                 stringAt(e, Unknown, "id"),
			Name:               stringAt(e, Unknown, "name"),
			ShortName:          stringAt(e, "", "shortName"),
			Unit:               stringAt(e, "", "unit"),
			DisplayUnit:        stringAt(e, "", "displayUnit"),
			ParameterType:      stringAt(e, "", "parameterType"),
			ParameterGroup:     stringAt(e, "", "parameterGroup"),
			ParameterGroupName: stringAt(e, "", "parameterGroupName"),
			UsesDatum:          stringAt(e, "", "usesDatum"),
		}

		t.Records = append(t.Records, p)
		if _, dup := seen[p.ID]; !dup {
			seen[p.ID] = struct{}{}
			t.DistinctIDs = append(t.DistinctIDs, p.ID)
		}
	}
	return t
}

// SelectorOptions returns at most limit ids from ids, keeping order and
// dropping duplicates. A non-positive limit returns every distinct id.
func SelectorOptions(ids []string, limit int) []string {
	out := make([]string, 0, min(len(ids), max(limit, 0)))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if limit > 0 && len(out) == limit {
			break
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
