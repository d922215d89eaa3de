package job

import (
	"context"
	"time"

	"tdfeed/internal/canonical"
	"tdfeed/internal/config"
	"tdfeed/internal/logger"
	"tdfeed/internal/snapshot"
)

const rankingSource = "investidor10"

type rankingMeta struct {
	Source            string `json:"source"`
	SourceURL         string `json:"source_url"`
	LastRunAt         string `json:"last_run_at"`
	LastPriceChangeAt string `json:"last_price_change_at"`
	Rows              int    `json:"rows"`
}

type rankingPayload struct {
	Meta rankingMeta    `json:"meta"`
	Data canonical.Flat `json:"data"`
}

// Ranking runs the investidor10 HTML table feed.
type Ranking struct {
	cfg   config.Job
	src   recordSource
	store *snapshot.Store
	now   func() time.Time
}

// NewRanking wires the runner. src is normally *source.Ranking.
func NewRanking(cfg config.Job, src recordSource, store *snapshot.Store) *Ranking {
	return &Ranking{cfg: cfg, src: src, store: store, now: time.Now}
}

// Run executes one fetch-to-persist cycle.
func (j *Ranking) Run(ctx context.Context) (Summary, error) {
	loc, err := j.cfg.Location()
	if err != nil {
		return Summary{}, err
	}
	runAt := stamp(j.now(), loc)

	recs, err := j.src.Fetch(ctx)
	if err != nil {
		return Summary{}, err
	}
	current := canonical.FlatFromRecords(recs).Normalize()

	hist := snapshot.LoadHistory(j.store)
	var previous *canonical.Flat
	if prev, ok := hist.Flat(); ok {
		previous = &prev
	}
	decision := snapshot.Decide(current, previous, canonical.Flat.Equal,
		hist.Meta("last_price_change_at"), runAt)

	payload := rankingPayload{
		Meta: rankingMeta{
			Source:            rankingSource,
			SourceURL:         j.cfg.URL,
			LastRunAt:         runAt,
			LastPriceChangeAt: decision.LastChangeAt,
			Rows:              len(current),
		},
		Data: current,
	}
	if err := j.store.Save(payload); err != nil {
		return Summary{}, err
	}
	logger.Infof("ranking run finished: %d rows, changed=%v", len(current), decision.Changed)

	return Summary{
		Output:       j.store.Path(),
		Rows:         len(current),
		Changed:      decision.Changed,
		LastChangeAt: decision.LastChangeAt,
	}, nil
}
