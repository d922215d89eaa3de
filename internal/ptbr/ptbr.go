// Package ptbr parses the pt-BR formatted tokens published by the
// Tesouro Direto sources: dates, decimal numbers, currency amounts and
// percentages. Every parser is a pure function returning (value, ok);
// malformed input is reported as !ok, never as an error or a sentinel
// value.
package ptbr

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	dateRe     = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	currencyRe = regexp.MustCompile(`[0-9]{1,3}(?:\.[0-9]{3})*,[0-9]{2}`)
	percentRe  = regexp.MustCompile(`([0-9]+(?:,[0-9]+)?)\s*%`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// Clean collapses runs of whitespace into single spaces and trims the
// ends. Table cells come with newlines and padding baked in.
func Clean(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// Date converts a strict DD/MM/YYYY date into YYYY-MM-DD. Partial dates
// and other separators do not match.
func Date(s string) (string, bool) {
	m := dateRe.FindStringSubmatch(Clean(s))
	if m == nil {
		return "", false
	}
	return m[3] + "-" + m[2] + "-" + m[1], true
}

// Number parses a plain pt-BR numeral such as "1.842,01" or "7,33".
// The dot is a thousands separator, the comma the decimal mark.
func Number(s string) (float64, bool) {
	s = Clean(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Currency extracts the first pt-BR money amount from s, ignoring the
// currency symbol and any surrounding text ("R$ 4.612,51" -> 4612.51).
func Currency(s string) (float64, bool) {
	m := currencyRe.FindString(Clean(s))
	if m == "" {
		return 0, false
	}
	return Number(m)
}

// Percent extracts the first percentage from s. This is an extraction,
// not a full-string parse: "SELIC + 0,0711%" yields 0.0711.
func Percent(s string) (float64, bool) {
	m := percentRe.FindStringSubmatch(Clean(s))
	if m == nil {
		return 0, false
	}
	return Number(m[1])
}
