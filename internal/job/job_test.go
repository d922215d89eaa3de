package job

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"tdfeed/internal/bond"
	"tdfeed/internal/config"
	"tdfeed/internal/snapshot"
	"tdfeed/internal/window"
)

type fixtureSource struct {
	recs []bond.Record
	err  error
}

func (f *fixtureSource) Fetch(context.Context) ([]bond.Record, error) {
	return f.recs, f.err
}

type fixtureRedeemSource struct {
	recs      []bond.Record
	updatedAt string
	err       error
}

func (f *fixtureRedeemSource) Fetch(context.Context) ([]bond.Record, string, error) {
	return f.recs, f.updatedAt, f.err
}

func fixedClock(iso string) func() time.Time {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func newStore(t *testing.T) *snapshot.Store {
	t.Helper()
	st, err := snapshot.NewStore(filepath.Join(t.TempDir(), "feed.json"))
	require.NoError(t, err)
	return st
}

func realtimeRecords() []bond.Record {
	return []bond.Record{
		{Title: "Tesouro Prefixado 2028", Maturity: "2028-01-01", Ticker: "LTN 2028-01-01", Price: 751.33, Rate: 13.61},
		{Title: "Tesouro Selic 2029", Maturity: "2029-03-01", Ticker: "LFT 2029-03-01", Price: 15880.12, Rate: 0.0711},
	}
}

func TestRankingFirstAndSecondRun(t *testing.T) {
	st := newStore(t)
	src := &fixtureSource{recs: realtimeRecords()}
	cfg := config.Job{URL: "https://example.org/resgatar/", Output: st.Path(), Timezone: "America/Sao_Paulo"}

	j := NewRanking(cfg, src, st)
	j.now = fixedClock("2024-03-05T10:00:00-03:00")

	sum, err := j.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.Changed)
	assert.Equal(t, 2, sum.Rows)
	assert.Equal(t, "2024-03-05T10:00:00-03:00", sum.LastChangeAt)

	raw, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	assert.Equal(t, "investidor10", gjson.GetBytes(raw, "meta.source").String())
	assert.Equal(t, "2024-03-05T10:00:00-03:00", gjson.GetBytes(raw, "meta.last_run_at").String())
	assert.Equal(t, "2024-03-05T10:00:00-03:00", gjson.GetBytes(raw, "meta.last_price_change_at").String())
	assert.Equal(t, int64(2), gjson.GetBytes(raw, "meta.rows").Int())
	// Data sorted by ticker, spreadsheet field names intact.
	assert.Equal(t, "LFT 2029-03-01", gjson.GetBytes(raw, "data.0.Ticker").String())
	assert.Equal(t, 15880.12, gjson.GetBytes(raw, "data.0.Preco_Atual").Float())
	assert.Equal(t, 0.0711, gjson.GetBytes(raw, "data.0.Yield_Atual").Float())

	// Second run, same content: last_run_at advances, change stamp not.
	j2 := NewRanking(cfg, src, st)
	j2.now = fixedClock("2024-03-06T10:00:00-03:00")
	sum2, err := j2.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, sum2.Changed)
	assert.Equal(t, "2024-03-05T10:00:00-03:00", sum2.LastChangeAt)

	raw, err = os.ReadFile(st.Path())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-06T10:00:00-03:00", gjson.GetBytes(raw, "meta.last_run_at").String())
	assert.Equal(t, "2024-03-05T10:00:00-03:00", gjson.GetBytes(raw, "meta.last_price_change_at").String())
}

func TestRankingPriceChangeAdvancesStamp(t *testing.T) {
	st := newStore(t)
	cfg := config.Job{URL: "u", Output: st.Path(), Timezone: "America/Sao_Paulo"}

	j := NewRanking(cfg, &fixtureSource{recs: realtimeRecords()}, st)
	j.now = fixedClock("2024-03-05T10:00:00-03:00")
	_, err := j.Run(context.Background())
	require.NoError(t, err)

	changed := realtimeRecords()
	changed[0].Price += 0.000002
	j2 := NewRanking(cfg, &fixtureSource{recs: changed}, st)
	j2.now = fixedClock("2024-03-06T10:00:00-03:00")
	sum, err := j2.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.Changed)
	assert.Equal(t, "2024-03-06T10:00:00-03:00", sum.LastChangeAt)
}

func TestRankingFetchFailureLeavesPreviousFile(t *testing.T) {
	st := newStore(t)
	cfg := config.Job{URL: "u", Output: st.Path(), Timezone: "UTC"}

	j := NewRanking(cfg, &fixtureSource{recs: realtimeRecords()}, st)
	j.now = fixedClock("2024-03-05T13:00:00Z")
	_, err := j.Run(context.Background())
	require.NoError(t, err)
	before, err := os.ReadFile(st.Path())
	require.NoError(t, err)

	j2 := NewRanking(cfg, &fixtureSource{err: errors.New("HTTP 502")}, st)
	j2.now = fixedClock("2024-03-06T13:00:00Z")
	_, err = j2.Run(context.Background())
	require.Error(t, err)

	after, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRankingRecoversFromCorruptHistory(t *testing.T) {
	st := newStore(t)
	require.NoError(t, os.WriteFile(st.Path(), []byte("{broken"), 0o644))
	cfg := config.Job{URL: "u", Output: st.Path(), Timezone: "UTC"}

	j := NewRanking(cfg, &fixtureSource{recs: realtimeRecords()}, st)
	j.now = fixedClock("2024-03-05T13:00:00Z")
	sum, err := j.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.Changed)
	assert.Equal(t, "2024-03-05T13:00:00Z", sum.LastChangeAt)
}

func historyRecords() []bond.Record {
	return []bond.Record{
		{Title: "Tesouro Selic", Maturity: "2029-03-01", Ticker: "LFT 2029-03-01", ObservationDate: "2024-03-05", Price: 15879.0, Rate: 0.0715},
		{Title: "Tesouro Selic", Maturity: "2029-03-01", Ticker: "LFT 2029-03-01", ObservationDate: "2024-03-06", Price: 15880.12, Rate: 0.0711},
		{Title: "Tesouro Prefixado", Maturity: "2028-01-01", Ticker: "LTN 2028-01-01", ObservationDate: "2024-03-06", Price: 751.33, Rate: 13.61},
	}
}

func TestHistoryRun(t *testing.T) {
	st := newStore(t)
	cfg := config.HistoryJob{
		Job:        config.Job{URL: "https://example.org/precotaxa.csv", Output: st.Path(), Timezone: "America/Sao_Paulo"},
		WindowDays: 180,
	}

	j := NewHistory(cfg, &fixtureSource{recs: historyRecords()}, st)
	j.now = fixedClock("2024-03-06T19:00:00-03:00")
	sum, err := j.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.Changed)
	assert.Equal(t, 3, sum.Rows)
	assert.Equal(t, 2, sum.Dates)
	require.NotNil(t, sum.Range)
	assert.Equal(t, "2024-03-05", sum.Range.From)
	assert.Equal(t, "2024-03-06", sum.Range.To)

	raw, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	assert.Equal(t, "tesourotransparente.gov.br (CKAN)", gjson.GetBytes(raw, "meta.source").String())
	assert.Equal(t, int64(2), gjson.GetBytes(raw, "meta.unique_databases").Int())
	assert.Equal(t, "2024-03-05", gjson.GetBytes(raw, "meta.range.from").String())
	assert.Equal(t, "2024-03-06", gjson.GetBytes(raw, "meta.range.to").String())
	assert.Equal(t, "2024-03-05", gjson.GetBytes(raw, "data.0.DataBase").String())
	assert.Equal(t, "Tesouro Selic", gjson.GetBytes(raw, "data.0.items.0.TipoTitulo").String())
	assert.Equal(t, "2029-03-01", gjson.GetBytes(raw, "data.0.items.0.Vencimento").String())
	assert.Equal(t, 15879.0, gjson.GetBytes(raw, "data.0.items.0.PUVenda").Float())
	assert.Equal(t, 0.0715, gjson.GetBytes(raw, "data.0.items.0.TaxaVenda").Float())

	// Unchanged rerun keeps the change stamp.
	j2 := NewHistory(cfg, &fixtureSource{recs: historyRecords()}, st)
	j2.now = fixedClock("2024-03-07T19:00:00-03:00")
	sum2, err := j2.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, sum2.Changed)
	assert.Equal(t, "2024-03-06T19:00:00-03:00", sum2.LastChangeAt)
}

func TestHistoryWindowTrimsOldDates(t *testing.T) {
	st := newStore(t)
	cfg := config.HistoryJob{
		Job:        config.Job{URL: "u", Output: st.Path(), Timezone: "UTC"},
		WindowDays: 1,
	}

	j := NewHistory(cfg, &fixtureSource{recs: historyRecords()}, st)
	j.now = fixedClock("2024-03-06T22:00:00Z")
	sum, err := j.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Dates)
	assert.Equal(t, 2, sum.Rows)
	assert.Equal(t, "2024-03-06", sum.Range.From)

	var doc struct {
		Data []struct {
			DataBase string `json:"DataBase"`
		} `json:"data"`
	}
	raw, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc.Data, 1)
	assert.Equal(t, "2024-03-06", doc.Data[0].DataBase)
}

func TestRedeemRun(t *testing.T) {
	st := newStore(t)
	cfg := config.RedeemJob{
		Job:     config.Job{URL: "https://example.org/export.csv", Output: st.Path(), Timezone: "UTC"},
		PageURL: "https://example.org/rendimento",
	}

	src := &fixtureRedeemSource{recs: realtimeRecords(), updatedAt: "2024-03-05T12:55:01-03:00"}
	j := NewRedeem(cfg, src, st)
	j.now = fixedClock("2024-03-05T16:00:00Z")
	sum, err := j.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.Changed)
	assert.Equal(t, "2024-03-05T16:00:00Z", sum.LastChangeAt)

	raw, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	assert.Equal(t, "TD_Scrape", gjson.GetBytes(raw, "meta.source").String())
	assert.Equal(t, "2024-03-05T12:55:01-03:00", gjson.GetBytes(raw, "meta.source_updated_at").String())
	assert.Equal(t, "2024-03-05T16:00:00Z", gjson.GetBytes(raw, "meta.last_run_at").String())

	// A later run with a missing page timestamp still succeeds.
	src2 := &fixtureRedeemSource{recs: realtimeRecords(), updatedAt: ""}
	j2 := NewRedeem(cfg, src2, st)
	j2.now = fixedClock("2024-03-06T16:00:00Z")
	sum2, err := j2.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, sum2.Changed)
	assert.Equal(t, "2024-03-05T16:00:00Z", sum2.LastChangeAt)

	raw, err = os.ReadFile(st.Path())
	require.NoError(t, err)
	assert.Equal(t, "", gjson.GetBytes(raw, "meta.source_updated_at").String())
}

func TestSummaryString(t *testing.T) {
	flat := Summary{Output: "output/x.json", Rows: 3, Changed: true, LastChangeAt: "2024-03-05T10:00:00-03:00"}
	assert.Equal(t, "OK: wrote output/x.json rows=3 changed=true last_change_at=2024-03-05T10:00:00-03:00", flat.String())

	grouped := Summary{Output: "output/h.json", Rows: 10, Dates: 2, Changed: false,
		Range: &window.Range{From: "2024-03-05", To: "2024-03-06"}}
	assert.Equal(t, "OK: wrote output/h.json dates=2 rows_total=10 changed=false range=2024-03-05..2024-03-06", grouped.String())
}
