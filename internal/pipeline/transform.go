package pipeline

import (
	"strings"

	"github.com/couchcryptid/fews-explorer/internal/domain"
)

// cleanIDs trims identifiers and drops blanks. A single identifier stays a
// one-element list and is never split.
func cleanIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// filterSelected keeps rows whose pair is part of the selection and reports
// how many were dropped.
func filterSelected(rows []domain.Observation, locIDs, paramIDs []string) ([]domain.Observation, int) {
	locs := make(map[string]struct{}, len(locIDs))
	for _, id := range locIDs {
		locs[id] = struct{}{}
	}
	params := make(map[string]struct{}, len(paramIDs))
	for _, id := range paramIDs {
		params[id] = struct{}{}
	}

	kept := rows[:0]
	dropped := 0
	for _, r := range rows {
		_, okLoc := locs[r.LocationID]
		_, okParam := params[r.ParameterID]
		if okLoc && okParam {
			kept = append(kept, r)
			continue
		}
		dropped++
	}
	return kept, dropped
}
