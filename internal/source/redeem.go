package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"tdfeed/internal/bond"
	"tdfeed/internal/logger"
	"tdfeed/internal/ptbr"
)

// The rendimento page injects this page-global via JS; the matching
// <p class="lastMarketPricingDate"> stays empty in the raw HTML.
const lastPricingVar = "lastMarketPricingDate"

// The page timestamp carries no timezone; it is wall clock at B3.
const sourceTimezone = "America/Sao_Paulo"

// PageSource is the browser capability the redeem adapter needs.
// *fetch.Browser satisfies it; tests substitute fixtures.
type PageSource interface {
	DownloadCSV(ctx context.Context, pageURL, fileURL string) ([]byte, error)
	PageVar(ctx context.Context, pageURL, name string) (string, error)
}

// Redeem drives the tesourodireto.com.br redeem-yield CSV export, which
// is only served to a browser session, plus a best-effort scrape of the
// page's own "last updated" timestamp.
type Redeem struct {
	browser PageSource
	pageURL string
	fileURL string
}

// NewRedeem builds the adapter for the rendimento page and its CSV
// export endpoint.
func NewRedeem(browser PageSource, pageURL, fileURL string) *Redeem {
	return &Redeem{browser: browser, pageURL: pageURL, fileURL: fileURL}
}

// Fetch downloads and parses the redeem CSV. The returned updatedAt is
// the page's own pricing timestamp normalized to RFC3339, or empty when
// the scrape failed; that failure is never fatal.
func (a *Redeem) Fetch(ctx context.Context) (recs []bond.Record, updatedAt string, err error) {
	raw, err := a.browser.DownloadCSV(ctx, a.pageURL, a.fileURL)
	if err != nil {
		return nil, "", err
	}
	recs, err = ParseRedeemCSV(string(raw))
	if err != nil {
		return nil, "", err
	}

	if v, verr := a.browser.PageVar(ctx, a.pageURL, lastPricingVar); verr == nil && v != "" {
		updatedAt = NormalizeSourceTime(v)
		if updatedAt == "" {
			logger.Warnf("could not interpret %s value %q", lastPricingVar, v)
		}
	}
	return recs, updatedAt, nil
}

// ParseRedeemCSV parses the semicolon-delimited redeem export. Columns:
// title, annual yield, unit redemption price, maturity.
func ParseRedeemCSV(text string) ([]bond.Record, error) {
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

	idxTitle := headerIndex(headers, "Título")
	idxYield := headerIndex(headers, "Rendimento anual do título")
	idxPrice := headerIndex(headers, "Preço unitário de resgate")
	idxMaturity := headerIndexContains(headers, "Vencimento")
	if idxTitle < 0 || idxYield < 0 || idxPrice < 0 || idxMaturity < 0 {
		return nil, fmt.Errorf("%w: required columns missing, headers=%v", ErrSchema, headers)
	}
	last := maxIndex(idxTitle, idxYield, idxPrice, idxMaturity)

	var out []bond.Record
	dropped := 0
	for _, rec := range all[1:] {
		if len(rec) <= last {
			dropped++
			continue
		}
		title := ptbr.Clean(rec[idxTitle])
		yield, okY := ptbr.Percent(rec[idxYield])
		price, okP := parsePriceCell(rec[idxPrice])
		maturity, okM := ptbr.Date(rec[idxMaturity])
		if title == "" || !okY || !okP || !okM {
			dropped++
			continue
		}
		out = append(out, bond.Record{
			Title:    title,
			Maturity: maturity,
			Ticker:   bond.Ticker(bond.RedeemRules.Class(title), maturity),
			Price:    price,
			Rate:     yield,
		})
	}
	if dropped > 0 {
		logger.Debugf("redeem CSV: dropped %d malformed rows", dropped)
	}
	return out, nil
}

// The export writes prices either as "R$ 1.234,56" or as a bare pt-BR
// numeral depending on the column version.
func parsePriceCell(s string) (float64, bool) {
	if v, ok := ptbr.Currency(s); ok {
		return v, ok
	}
	return ptbr.Number(strings.ReplaceAll(s, "R$", ""))
}

// NormalizeSourceTime converts the page timestamp to RFC3339. Values
// usually come as "2026-01-28T13:02:01.613" without a timezone and are
// interpreted in the source's own timezone; values already carrying an
// offset pass through.
func NormalizeSourceTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.Format(time.RFC3339)
	}
	loc, err := time.LoadLocation(sourceTimezone)
	if err != nil {
		return ""
	}
	for _, layout := range []string{"2006-01-02T15:04:05.000", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.Format(time.RFC3339)
		}
	}
	return ""
}
