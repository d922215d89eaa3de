package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rankingHTML = `<!DOCTYPE html>
<html><body>
<div class="wrapper">
<table id="rankigns">
  <thead><tr><th>#</th><th>Título</th><th>Rentabilidade anual</th><th>Preço (unid.)</th><th>Vencimento</th></tr></thead>
  <tbody>
    <tr><td>1</td><td>TESOURO <b>SELIC</b> 2029</td><td>SELIC + 0,0711%</td><td>R$ 15.880,12</td><td>01/03/2029</td></tr>
    <tr><td>2</td><td>Tesouro Prefixado 2028</td><td>13,61%</td><td>R$ 751,33</td><td>01/01/2028</td></tr>
    <tr><td>3</td><td>Tesouro IPCA+ 2045</td><td>IPCA + 7,80%</td><td>R$ 1.842,01</td><td>15/05/2045</td></tr>
    <tr><td>4</td><td>Tesouro Quebrado</td><td>sem taxa</td><td>R$ 100,00</td><td>01/01/2030</td></tr>
    <tr><td>5</td><td>Tesouro Incompleto</td></tr>
  </tbody>
</table>
</div>
</body></html>`

func TestParseRankingHTML(t *testing.T) {
	recs, err := ParseRankingHTML([]byte(rankingHTML))
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "LFT 2029-03-01", recs[0].Ticker)
	assert.Equal(t, "TESOURO SELIC 2029", recs[0].Title)
	assert.InDelta(t, 15880.12, recs[0].Price, 1e-9)
	assert.InDelta(t, 0.0711, recs[0].Rate, 1e-9)

	assert.Equal(t, "LTN 2028-01-01", recs[1].Ticker)
	assert.Equal(t, "NTN-B P 2045-05-15", recs[2].Ticker)
	assert.InDelta(t, 7.8, recs[2].Rate, 1e-9)
}

func TestParseRankingHTMLMissingTable(t *testing.T) {
	_, err := ParseRankingHTML([]byte(`<html><body><table id="outra"></table></body></html>`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestRankingFetch(t *testing.T) {
	g := &fixtureGetter{body: []byte(rankingHTML)}
	a := NewRanking(g, "https://example.org/resgatar/")
	recs, err := a.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/resgatar/", g.url)
	assert.Len(t, recs, 3)
}
