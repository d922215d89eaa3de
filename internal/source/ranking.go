package source

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"tdfeed/internal/bond"
	"tdfeed/internal/logger"
	"tdfeed/internal/ptbr"
)

// The investidor10 redeem page renders its data in a table whose id has
// carried this typo for years. Treat it as a stable selector.
const rankingTableID = "rankigns"

// Ranking scrapes the redeem ranking table from investidor10.com.br.
// Body rows carry [rank, title, annual yield, unit price, maturity].
type Ranking struct {
	getter Getter
	url    string
}

// NewRanking builds the adapter for the given page URL.
func NewRanking(getter Getter, url string) *Ranking {
	return &Ranking{getter: getter, url: url}
}

// Fetch downloads the page and parses the ranking table.
func (a *Ranking) Fetch(ctx context.Context) ([]bond.Record, error) {
	raw, err := a.getter.Get(ctx, a.url)
	if err != nil {
		return nil, err
	}
	return ParseRankingHTML(raw)
}

// ParseRankingHTML extracts records from the ranking table markup. A
// missing table is fatal; malformed rows are dropped.
func ParseRankingHTML(markup []byte) ([]bond.Record, error) {
	doc, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	table := findTableByID(doc, rankingTableID)
	if table == nil {
		return nil, fmt.Errorf("%w: table#%s not found", ErrSchema, rankingTableID)
	}

	var out []bond.Record
	dropped := 0
	for _, row := range tableBodyRows(table) {
		cols := cellTexts(row)
		// [rank, title, annual yield, unit price, maturity]
		if len(cols) < 5 {
			dropped++
			continue
		}
		title := cols[1]
		yield, okY := ptbr.Percent(cols[2])
		price, okP := ptbr.Currency(cols[3])
		maturity, okM := ptbr.Date(cols[4])
		if title == "" || !okY || !okP || !okM {
			dropped++
			continue
		}
		out = append(out, bond.Record{
			Title:    title,
			Maturity: maturity,
			Ticker:   bond.Ticker(bond.RankingRules.Class(title), maturity),
			Price:    price,
			Rate:     yield,
		})
	}
	if dropped > 0 {
		logger.Debugf("ranking table: dropped %d malformed rows", dropped)
	}
	return out, nil
}

func findTableByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && n.Data == "table" {
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTableByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// tableBodyRows returns the tr elements under tbody, skipping the
// header row when the markup has no explicit tbody.
func tableBodyRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(n *html.Node, inBody bool)
	walk = func(n *html.Node, inBody bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.ElementNode && c.Data == "tbody":
				walk(c, true)
			case c.Type == html.ElementNode && c.Data == "tr" && inBody:
				rows = append(rows, c)
			default:
				walk(c, inBody)
			}
		}
	}
	walk(table, false)
	return rows
}

func cellTexts(tr *html.Node) []string {
	var cols []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "td" {
			var b strings.Builder
			collectText(c, &b)
			cols = append(cols, ptbr.Clean(b.String()))
		}
	}
	return cols
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteString(" ")
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
