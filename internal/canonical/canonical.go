// Package canonical turns the raw records of one run into the
// deterministic form used for change detection: floats rounded to a
// fixed precision, records sorted order-independently, meta excluded.
// The same normalization is applied to the freshly fetched batch and to
// the previously persisted one, so equality is pure value comparison.
package canonical

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"tdfeed/internal/bond"
	"tdfeed/internal/logger"
)

// Precision is the number of fractional digits kept when comparing
// prices and rates. Differences below it are float noise, not changes.
const Precision = 6

// Round rounds v half away from zero to Precision fractional digits.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(Precision).InexactFloat64()
}

// Entry is one real-time record in its persisted shape. Field names are
// read by the downstream spreadsheet and must not change.
type Entry struct {
	Ticker string  `json:"Ticker"`
	Price  float64 `json:"Preco_Atual"`
	Yield  float64 `json:"Yield_Atual"`
}

// Flat is the canonical form of an ungrouped snapshot.
type Flat []Entry

// HistoricalItem is one historical record within a pricing date.
type HistoricalItem struct {
	Title    string  `json:"TipoTitulo"`
	Maturity string  `json:"Vencimento"`
	Ticker   string  `json:"Ticker"`
	Rate     float64 `json:"TaxaVenda"`
	Price    float64 `json:"PUVenda"`
}

// DateGroup holds every record observed on one pricing date.
type DateGroup struct {
	Date  string           `json:"DataBase"`
	Items []HistoricalItem `json:"items"`
}

// Grouped is the canonical form of the historical snapshot: groups
// ascending by date, items sorted within each group.
type Grouped []DateGroup

// FlatFromRecords maps raw records into the real-time shape. The result
// still needs Normalize before comparison or persistence.
func FlatFromRecords(recs []bond.Record) Flat {
	out := make(Flat, 0, len(recs))
	for _, r := range recs {
		out = append(out, Entry{Ticker: r.Ticker, Price: r.Price, Yield: r.Rate})
	}
	return out
}

// GroupedFromRecords maps raw records into per-date groups keyed on
// ObservationDate.
func GroupedFromRecords(recs []bond.Record) Grouped {
	byDate := make(map[string][]HistoricalItem)
	for _, r := range recs {
		byDate[r.ObservationDate] = append(byDate[r.ObservationDate], HistoricalItem{
			Title:    r.Title,
			Maturity: r.Maturity,
			Ticker:   r.Ticker,
			Rate:     r.Rate,
			Price:    r.Price,
		})
	}
	out := make(Grouped, 0, len(byDate))
	for date, items := range byDate {
		out = append(out, DateGroup{Date: date, Items: items})
	}
	return out
}

// Normalize returns the canonical value of f: rounded, sorted and
// audited for duplicate tickers. It never mutates the receiver and is
// idempotent.
func (f Flat) Normalize() Flat {
	out := make(Flat, len(f))
	for i, e := range f {
		e.Price = Round(e.Price)
		e.Yield = Round(e.Yield)
		out[i] = e
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if c := strings.Compare(a.Ticker, b.Ticker); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Price, b.Price); c != 0 {
			return c
		}
		return cmp.Compare(a.Yield, b.Yield)
	})
	auditFlat(out)
	return out
}

// Normalize returns the canonical value of g. Groups sort ascending by
// date, items by ticker; duplicates are audited per group.
func (g Grouped) Normalize() Grouped {
	out := make(Grouped, len(g))
	for i, grp := range g {
		items := make([]HistoricalItem, len(grp.Items))
		for j, it := range grp.Items {
			it.Rate = Round(it.Rate)
			it.Price = Round(it.Price)
			items[j] = it
		}
		slices.SortFunc(items, func(a, b HistoricalItem) int {
			if c := strings.Compare(a.Ticker, b.Ticker); c != 0 {
				return c
			}
			if c := cmp.Compare(a.Price, b.Price); c != 0 {
				return c
			}
			return cmp.Compare(a.Rate, b.Rate)
		})
		out[i] = DateGroup{Date: grp.Date, Items: items}
		auditGroup(grp.Date, items)
	}
	slices.SortFunc(out, func(a, b DateGroup) int {
		return strings.Compare(a.Date, b.Date)
	})
	return out
}

// Equal reports structural equality of two canonical flat values.
func (f Flat) Equal(o Flat) bool {
	return slices.Equal(f, o)
}

// Equal reports structural equality of two canonical grouped values.
func (g Grouped) Equal(o Grouped) bool {
	if len(g) != len(o) {
		return false
	}
	for i := range g {
		if g[i].Date != o[i].Date || !slices.Equal(g[i].Items, o[i].Items) {
			return false
		}
	}
	return true
}

// Downstream consumers key on Ticker, so two entries sharing one within
// a group is a source defect worth flagging. Records are kept; the
// deterministic sort above keeps the canonical form stable regardless.
func auditFlat(sorted Flat) {
	var dups []string
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Ticker == sorted[i-1].Ticker {
			dups = appendUnique(dups, sorted[i].Ticker)
		}
	}
	if len(dups) > 0 {
		logger.Warnf("duplicate tickers in snapshot: %s", strings.Join(dups, ", "))
	}
}

func auditGroup(date string, sorted []HistoricalItem) {
	var dups []string
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Ticker == sorted[i-1].Ticker {
			dups = appendUnique(dups, sorted[i].Ticker)
		}
	}
	if len(dups) > 0 {
		logger.Warnf("duplicate tickers on %s: %s", date, strings.Join(dups, ", "))
	}
}

func appendUnique(list []string, s string) []string {
	if len(list) > 0 && list[len(list)-1] == s {
		return list
	}
	return append(list, s)
}
