package pricebook

import "strings"

// sheetTierKeywords maps a product keyword found in a worksheet title to the
// tier that sheet prices. Order matters: the first matching keyword wins.
var sheetTierKeywords = []struct {
	Keyword string
	Tier    string
}{
	{"킥스 GX5", "economy"},
	{"킥스 GX7", "standard"},
	{"킥스 Pao", "premium"},
	{"벤졸", "premium_hybrid"},
	{"슈퍼노멀", "hyperformance"},
	{"메탈로센", "racing"},
}

// TierForSheet classifies a worksheet by title. Sheets matching no keyword
// carry no price data and are skipped entirely.
func TierForSheet(title string) (string, bool) {
	for _, kt := range sheetTierKeywords {
		if strings.Contains(title, kt.Keyword) {
			return kt.Tier, true
		}
	}
	return "", false
}
