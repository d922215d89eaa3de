package job

import (
	"context"
	"time"

	"tdfeed/internal/bond"
	"tdfeed/internal/canonical"
	"tdfeed/internal/config"
	"tdfeed/internal/logger"
	"tdfeed/internal/snapshot"
)

const redeemSource = "TD_Scrape"

type redeemMeta struct {
	Source            string `json:"source"`
	SourceURL         string `json:"source_url"`
	LastRunAt         string `json:"last_run_at"`
	LastPriceChangeAt string `json:"last_price_change_at"`
	// SourceUpdatedAt is the pricing timestamp published by the page
	// itself; empty when the best-effort scrape failed.
	SourceUpdatedAt string `json:"source_updated_at"`
	Rows            int    `json:"rows"`
}

type redeemPayload struct {
	Meta redeemMeta     `json:"meta"`
	Data canonical.Flat `json:"data"`
}

// redeemSrc is the browser-driven adapter capability.
type redeemSrc interface {
	Fetch(ctx context.Context) ([]bond.Record, string, error)
}

// Redeem runs the tesourodireto.com.br redeem CSV feed.
type Redeem struct {
	cfg   config.RedeemJob
	src   redeemSrc
	store *snapshot.Store
	now   func() time.Time
}

// NewRedeem wires the runner. src is normally *source.Redeem.
func NewRedeem(cfg config.RedeemJob, src redeemSrc, store *snapshot.Store) *Redeem {
	return &Redeem{cfg: cfg, src: src, store: store, now: time.Now}
}

// Run executes one fetch-to-persist cycle.
func (j *Redeem) Run(ctx context.Context) (Summary, error) {
	loc, err := j.cfg.Location()
	if err != nil {
		return Summary{}, err
	}
	runAt := stamp(j.now(), loc)

	recs, sourceUpdatedAt, err := j.src.Fetch(ctx)
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

	payload := redeemPayload{
		Meta: redeemMeta{
			Source:            redeemSource,
			SourceURL:         j.cfg.URL,
			LastRunAt:         runAt,
			LastPriceChangeAt: decision.LastChangeAt,
			SourceUpdatedAt:   sourceUpdatedAt,
			Rows:              len(current),
		},
		Data: current,
	}
	if err := j.store.Save(payload); err != nil {
		return Summary{}, err
	}
	logger.Infof("redeem run finished: %d rows, changed=%v", len(current), decision.Changed)

	return Summary{
		Output:       j.store.Path(),
		Rows:         len(current),
		Changed:      decision.Changed,
		LastChangeAt: decision.LastChangeAt,
	}, nil
}
