// Package window bounds the historical feed to a trailing number of
// distinct observation dates.
package window

import (
	"sort"

	"tdfeed/internal/bond"
)

// Range is the min and max of the retained date set.
type Range struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Trailing keeps only records whose ObservationDate falls within the
// most recent n distinct dates and returns them together with the
// retained dates in ascending order. When the source provides fewer
// than n dates everything is kept. ISO dates sort chronologically as
// strings.
func Trailing(recs []bond.Record, n int) ([]bond.Record, []string) {
	seen := make(map[string]struct{})
	for _, r := range recs {
		seen[r.ObservationDate] = struct{}{}
	}
	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	if n > 0 && len(dates) > n {
		dates = dates[len(dates)-n:]
	}

	keep := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		keep[d] = struct{}{}
	}
	out := make([]bond.Record, 0, len(recs))
	for _, r := range recs {
		if _, ok := keep[r.ObservationDate]; ok {
			out = append(out, r)
		}
	}
	return out, dates
}

// RangeOf reports the bounds of a retained date set, ok=false when the
// set is empty.
func RangeOf(dates []string) (Range, bool) {
	if len(dates) == 0 {
		return Range{}, false
	}
	return Range{From: dates[0], To: dates[len(dates)-1]}, true
}
