package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"tdfeed/internal/bond"
	"tdfeed/internal/logger"
	"tdfeed/internal/ptbr"
)

// Historical reads the full price/rate CSV published on
// tesourotransparente.gov.br (CKAN). One row per instrument per pricing
// date.
type Historical struct {
	getter Getter
	url    string
}

// NewHistorical builds the adapter for the given CSV URL.
func NewHistorical(getter Getter, url string) *Historical {
	return &Historical{getter: getter, url: url}
}

// Fetch downloads and parses the CSV into raw records.
func (a *Historical) Fetch(ctx context.Context) ([]bond.Record, error) {
	raw, err := a.getter.Get(ctx, a.url)
	if err != nil {
		return nil, err
	}
	return ParseHistoricalCSV(string(raw))
}

// ParseHistoricalCSV parses the semicolon-delimited CKAN dump. Rows
// with unparseable dates or numbers are dropped; missing required
// columns are fatal.
func ParseHistoricalCSV(text string) ([]bond.Record, error) {
	rd := csv.NewReader(strings.NewReader(strings.TrimSpace(text)))
	rd.Comma = ';'
	rd.FieldsPerRecord = -1

	all, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("%w: CSV has no data rows", ErrSchema)
	}

	headers := all[0]
	headers[0] = stripBOM(headers[0])

	idxTitle := headerIndex(headers, "Tipo Titulo")
	idxMaturity := headerIndex(headers, "Data Vencimento")
	idxDate := headerIndex(headers, "Data Base")
	idxRate := headerIndex(headers, "Taxa Venda Manha")
	idxPrice := headerIndex(headers, "PU Venda Manha")
	if idxTitle < 0 || idxMaturity < 0 || idxDate < 0 || idxRate < 0 || idxPrice < 0 {
		return nil, fmt.Errorf("%w: required columns missing, headers=%v", ErrSchema, headers)
	}
	last := maxIndex(idxTitle, idxMaturity, idxDate, idxRate, idxPrice)

	var out []bond.Record
	dropped := 0
	for _, rec := range all[1:] {
		if len(rec) <= last {
			dropped++
			continue
		}
		title := ptbr.Clean(rec[idxTitle])
		maturity, okM := ptbr.Date(rec[idxMaturity])
		date, okD := ptbr.Date(rec[idxDate])
		rate, okR := ptbr.Number(rec[idxRate])
		price, okP := ptbr.Number(rec[idxPrice])
		if title == "" || !okM || !okD || !okR || !okP {
			dropped++
			continue
		}
		out = append(out, bond.Record{
			Title:           title,
			Maturity:        maturity,
			Ticker:          bond.Ticker(bond.HistoricalRules.Class(title), maturity),
			ObservationDate: date,
			Price:           price,
			Rate:            rate,
		})
	}
	if dropped > 0 {
		logger.Debugf("historical CSV: dropped %d malformed rows", dropped)
	}
	return out, nil
}
