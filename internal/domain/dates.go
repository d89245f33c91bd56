package domain

import (
	"fmt"
	"strings"
	"time"
)

// QueryDateLayout is the date format accepted from users.
const QueryDateLayout = "2006-01-02"

// ParseQueryDate converts a YYYY-MM-DD date to the ISO 8601 midnight UTC
// timestamp the timeseries resource expects. Blank input yields "" so the
// bound is omitted. Malformed dates wrap ErrInputValidation.
func ParseQueryDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	t, err := time.Parse(QueryDateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: date %q is not in YYYY-MM-DD format", ErrInputValidation, s)
	}
	return t.UTC().Format(time.RFC3339), nil
}
