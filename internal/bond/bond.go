// Package bond holds the source-agnostic record shape and the ticker
// vocabulary shared by the three feeds.
package bond

// Instrument classes. Tickers built from any source must resolve into
// this one vocabulary so the feeds stay joinable downstream.
const (
	ClassLFT     = "LFT"       // Tesouro Selic
	ClassLTN     = "LTN"       // Tesouro Prefixado
	ClassNTNF    = "NTN-F"     // Tesouro Prefixado com Juros Semestrais
	ClassNTNB    = "NTN-B"     // Tesouro IPCA+ com Juros Semestrais
	ClassNTNBP   = "NTN-B P"   // Tesouro IPCA+
	ClassNTNC    = "NTN-C"     // Tesouro IGPM+ com Juros Semestrais
	ClassRendaP  = "NTN-B1 R+" // Tesouro Renda+
	ClassEducaP  = "NTN-B1 E+" // Tesouro Educa+
	ClassGeneric = "TD"        // fallback when no rule matches
)

// Record is the atomic unit flowing from a source adapter into the
// canonicalizer. It is created fresh each run and never mutated.
type Record struct {
	// Title is the instrument name exactly as the source publishes it.
	Title string
	// Maturity is the ISO maturity date, empty when unknown.
	Maturity string
	// Ticker is "<class> <maturity>" (or just the class when the
	// maturity is unknown). Unique per observation date by convention,
	// not enforced here.
	Ticker string
	// ObservationDate is the ISO pricing date for historical rows and
	// empty for the real-time feeds.
	ObservationDate string
	// Price is the unit price in BRL.
	Price float64
	// Rate is the annual yield in percent.
	Rate float64
}

// Ticker synthesizes the composite key for an instrument class and ISO
// maturity date.
func Ticker(class, maturity string) string {
	if maturity == "" {
		return class
	}
	return class + " " + maturity
}
