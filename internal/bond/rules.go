package bond

import "strings"

// Rule maps instrument titles containing every listed substring to one
// class. Matching is case-insensitive.
type Rule struct {
	Contains []string
	Class    string
}

// RuleTable is a priority-ordered rule list; the first matching rule
// wins. Each source carries its own table because the exact wording of
// titles differs per site, but all tables resolve into the same class
// vocabulary.
type RuleTable struct {
	Rules    []Rule
	Fallback string
}

// Class resolves an instrument title to its class.
func (t RuleTable) Class(title string) string {
	lower := strings.ToLower(strings.TrimSpace(title))
	for _, r := range t.Rules {
		matched := true
		for _, sub := range r.Contains {
			if !strings.Contains(lower, sub) {
				matched = false
				break
			}
		}
		if matched {
			return r.Class
		}
	}
	return t.Fallback
}

// HistoricalRules covers the official titles in the tesourotransparente
// CSV ("Tesouro IPCA+ com Juros Semestrais" and friends). The
// juros-bearing variants are listed before their plain counterparts so
// the broader substring never shadows them.
var HistoricalRules = RuleTable{
	Rules: []Rule{
		{Contains: []string{"selic"}, Class: ClassLFT},
		{Contains: []string{"prefixado", "juros semestrais"}, Class: ClassNTNF},
		{Contains: []string{"prefixado"}, Class: ClassLTN},
		{Contains: []string{"ipca+ com juros semestrais"}, Class: ClassNTNB},
		{Contains: []string{"ipca+"}, Class: ClassNTNBP},
		{Contains: []string{"igpm+ com juros semestrais"}, Class: ClassNTNC},
		{Contains: []string{"renda+"}, Class: ClassRendaP},
		{Contains: []string{"educa+"}, Class: ClassEducaP},
	},
	Fallback: ClassGeneric,
}

// RankingRules covers the investidor10 ranking table wording.
var RankingRules = RuleTable{
	Rules: []Rule{
		{Contains: []string{"selic"}, Class: ClassLFT},
		{Contains: []string{"prefixado", "juros"}, Class: ClassNTNF},
		{Contains: []string{"prefixado"}, Class: ClassLTN},
		{Contains: []string{"ipca", "juros"}, Class: ClassNTNB},
		{Contains: []string{"ipca"}, Class: ClassNTNBP},
		{Contains: []string{"igpm", "juros"}, Class: ClassNTNC},
		{Contains: []string{"renda+"}, Class: ClassRendaP},
		{Contains: []string{"educa"}, Class: ClassEducaP},
	},
	Fallback: ClassGeneric,
}

// RedeemRules covers the titles in the tesourodireto.com.br redeem CSV,
// which follow the same wording as the site itself.
var RedeemRules = RuleTable{
	Rules: []Rule{
		{Contains: []string{"selic"}, Class: ClassLFT},
		{Contains: []string{"prefixado", "juros"}, Class: ClassNTNF},
		{Contains: []string{"prefixado"}, Class: ClassLTN},
		{Contains: []string{"ipca", "juros"}, Class: ClassNTNB},
		{Contains: []string{"ipca"}, Class: ClassNTNBP},
		{Contains: []string{"igpm", "juros"}, Class: ClassNTNC},
		{Contains: []string{"renda+"}, Class: ClassRendaP},
		{Contains: []string{"educa"}, Class: ClassEducaP},
	},
	Fallback: ClassGeneric,
}
