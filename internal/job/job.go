// Package job wires one source adapter, the canonicalizer, the change
// detector and the snapshot store into a single run-to-completion
// pipeline per feed. The output file is only touched after the whole
// pipeline succeeded.
package job

import (
	"context"
	"fmt"
	"time"

	"tdfeed/internal/bond"
	"tdfeed/internal/window"
)

// recordSource is the adapter capability shared by the HTTP feeds.
type recordSource interface {
	Fetch(ctx context.Context) ([]bond.Record, error)
}

// Summary is what a successful run reports on stdout.
type Summary struct {
	Output       string
	Rows         int
	Dates        int
	Changed      bool
	Range        *window.Range
	LastChangeAt string
}

func (s Summary) String() string {
	if s.Range != nil {
		return fmt.Sprintf("OK: wrote %s dates=%d rows_total=%d changed=%v range=%s..%s",
			s.Output, s.Dates, s.Rows, s.Changed, s.Range.From, s.Range.To)
	}
	return fmt.Sprintf("OK: wrote %s rows=%d changed=%v last_change_at=%s",
		s.Output, s.Rows, s.Changed, s.LastChangeAt)
}

// stamp formats a wall-clock read pinned to the job's timezone, second
// precision, explicit offset.
func stamp(t time.Time, loc *time.Location) string {
	return t.In(loc).Truncate(time.Second).Format(time.RFC3339)
}
