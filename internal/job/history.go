package job

import (
	"context"
	"time"

	"tdfeed/internal/canonical"
	"tdfeed/internal/config"
	"tdfeed/internal/logger"
	"tdfeed/internal/snapshot"
	"tdfeed/internal/window"
)

const historySource = "tesourotransparente.gov.br (CKAN)"

type historyMeta struct {
	Source           string        `json:"source"`
	SourceURL        string        `json:"source_url"`
	LastRunAt        string        `json:"last_run_at"`
	LastDataChangeAt string        `json:"last_data_change_at"`
	UniqueDatabases  int           `json:"unique_databases"`
	Range            *window.Range `json:"range,omitempty"`
}

type historyPayload struct {
	Meta historyMeta       `json:"meta"`
	Data canonical.Grouped `json:"data"`
}

// History runs the historical feed: full CSV, trailing window, grouped
// snapshot.
type History struct {
	cfg   config.HistoryJob
	src   recordSource
	store *snapshot.Store
	now   func() time.Time
}

// NewHistory wires the runner. src is normally *source.Historical.
func NewHistory(cfg config.HistoryJob, src recordSource, store *snapshot.Store) *History {
	return &History{cfg: cfg, src: src, store: store, now: time.Now}
}

// Run executes one fetch-to-persist cycle.
func (j *History) Run(ctx context.Context) (Summary, error) {
	loc, err := j.cfg.Location()
	if err != nil {
		return Summary{}, err
	}
	runAt := stamp(j.now(), loc)

	recs, err := j.src.Fetch(ctx)
	if err != nil {
		return Summary{}, err
	}
	kept, dates := window.Trailing(recs, j.cfg.WindowDays)
	current := canonical.GroupedFromRecords(kept).Normalize()

	hist := snapshot.LoadHistory(j.store)
	var previous *canonical.Grouped
	if prev, ok := hist.Grouped(); ok {
		previous = &prev
	}
	decision := snapshot.Decide(current, previous, canonical.Grouped.Equal,
		hist.Meta("last_data_change_at"), runAt)

	rows := 0
	for _, g := range current {
		rows += len(g.Items)
	}
	var rng *window.Range
	if r, ok := window.RangeOf(dates); ok {
		rng = &r
	}
	payload := historyPayload{
		Meta: historyMeta{
			Source:           historySource,
			SourceURL:        j.cfg.URL,
			LastRunAt:        runAt,
			LastDataChangeAt: decision.LastChangeAt,
			UniqueDatabases:  len(dates),
			Range:            rng,
		},
		Data: current,
	}
	if err := j.store.Save(payload); err != nil {
		return Summary{}, err
	}
	logger.Infof("history run finished: %d dates, %d rows, changed=%v", len(dates), rows, decision.Changed)

	return Summary{
		Output:       j.store.Path(),
		Rows:         rows,
		Dates:        len(dates),
		Changed:      decision.Changed,
		Range:        rng,
		LastChangeAt: decision.LastChangeAt,
	}, nil
}
