// Package pricebook reconciles the vehicle price catalog from the supplier's
// XLSX price sheet. The workbook layout is irregular: each sheet carries one
// oil tier, four fixed brand column groups, header and memo rows mixed into
// the data, and nested sub-brand sections.
package pricebook

import (
	"strconv"
	"strings"
)

// GenerationParents are model names that appear in the sheet as
// "<model> <generation>" (e.g. "쏘나타 DN8").
var GenerationParents = map[string]bool{
	"쏘나타": true,
	"그랜져": true,
	"아반떼": true,
}

// DefaultGeneration maps model names that appear without a generation token
// to the generation they must resolve to.
var DefaultGeneration = map[string]string{
	"아반떼": "CN7",
}

// skipValues are header and fuel-label cells interleaved with vehicle rows.
var skipValues = map[string]bool{
	"차종":        true,
	"현대":        true,
	"기아":        true,
	"제네시스":      true,
	"르노":        true,
	"르노코리아":     true,
	"휘발유":       true,
	"경유":        true,
	"휘발유/LPG":   true,
	"휘발유/LPG/하이": true,
	"하이브리드":     true,
}

// subBrandNames maps sub-brand header keywords to the canonical brand name.
// Headers appear as the bare keyword or as "KGM(쌍용)" style cells.
var subBrandNames = map[string]string{
	"KGM":    "KG모빌리티",
	"KG모빌리티": "KG모빌리티",
	"쉐보레":    "쉐보레",
}

// emptyMarkers are cell values meaning "no price listed".
var emptyMarkers = map[string]bool{
	"":  true,
	"-": true,
	"—": true,
	"–": true,
}

// ParseVehicleName splits a raw vehicle cell into (model, generation).
// "쏘나타 DN8" → ("쏘나타", "DN8"); "아반떼" → ("아반떼", "CN7") via
// DefaultGeneration; anything else is a plain base model with no generation.
func ParseVehicleName(raw string) (model, generation string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}

	if fields := strings.Fields(raw); len(fields) >= 2 && GenerationParents[fields[0]] {
		return fields[0], strings.Join(fields[1:], " ")
	}

	if gen, ok := DefaultGeneration[raw]; ok {
		return raw, gen
	}

	return raw, ""
}

// ParsePrice normalizes a raw price cell to an amount in KRW. Empty markers
// and non-positive values are absent. A cell that renders as a plain number
// is truncated to an integer; any other text is reduced to its digits
// ("165,000원" → 165000), absent when no digits remain.
func ParsePrice(cell string) (int, bool) {
	cell = strings.TrimSpace(cell)
	if emptyMarkers[cell] {
		return 0, false
	}

	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		v := int(f)
		if v <= 0 {
			return 0, false
		}
		return v, true
	}

	var digits strings.Builder
	for _, r := range cell {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(digits.String())
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// DetectSubBrand reports whether a cell is a nested sub-brand section header
// ("KGM", "KGM(쌍용)", "쉐보레") and returns the canonical brand name.
func DetectSubBrand(cell string) (string, bool) {
	val := strings.TrimSpace(cell)
	if val == "" {
		return "", false
	}
	for keyword, name := range subBrandNames {
		if val == keyword || strings.HasPrefix(val, keyword+"(") {
			return name, true
		}
	}
	return "", false
}
