package analysis

import (
	"strconv"
	"strings"
	"time"

	"github.com/relvacode/iso8601"
)

// NumberFormat fixes the separators used when reading numbers. Zero values auto-detect per cell.
type NumberFormat struct {
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// missingTokens mirrors the NA markers common table libraries read as missing.
var missingTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "#N/A": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"NULL": {}, "null": {}, "None": {}, "<NA>": {}, "#NA": {}, "1.#IND": {}, "1.#QNAN": {},
}

func isMissing(s string) bool {
	_, ok := missingTokens[strings.TrimSpace(s)]
	return ok
}

// parseNumeric reads a number. Without a configured format it accepts plain Go
// floats, a single decimal comma, and thousands separators only in well-formed
// groups of three digits; anything else is not a number.
func parseNumeric(s string, nf NumberFormat) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	if raw == "" {
		return 0, false
	}
	if nf.DecimalSeparator != 0 {
		return parseWith(raw, nf.DecimalSeparator, nf.ThousandsSeparator)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f, true
	}
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	var candidates [][2]rune // {decimal, thousands}
	switch {
	case cpos >= 0 && dpos >= 0:
		if cpos > dpos {
			candidates = [][2]rune{{',', '.'}}
		} else {
			candidates = [][2]rune{{'.', ','}}
		}
	case cpos >= 0:
		candidates = [][2]rune{{'.', ','}, {',', ' '}}
	case dpos >= 0:
		candidates = [][2]rune{{',', '.'}, {'.', ' '}}
	default:
		candidates = [][2]rune{{'.', ' '}}
	}
	for _, c := range candidates {
		if f, ok := parseWith(raw, c[0], c[1]); ok {
			return f, true
		}
	}
	return 0, false
}

// parseWith reads digits with one optional decimal separator and, in the
// integer part, optional thousands separators between groups of three.
func parseWith(raw string, dec, thou rune) (float64, bool) {
	sign := ""
	if raw[0] == '-' || raw[0] == '+' {
		sign, raw = raw[:1], raw[1:]
	}
	intPart, frac := raw, ""
	if i := strings.LastIndex(raw, string(dec)); i >= 0 {
		intPart, frac = raw[:i], raw[i+1:]
		if frac == "" || !allDigits(frac) {
			return 0, false
		}
	}
	if thou != 0 && thou != dec && strings.ContainsRune(intPart, thou) {
		if !wellGrouped(intPart, thou) {
			return 0, false
		}
		intPart = strings.ReplaceAll(intPart, string(thou), "")
	}
	if (intPart == "" && frac == "") || !allDigits(intPart) {
		return 0, false
	}
	f, err := strconv.ParseFloat(sign+intPart+"."+frac+"0", 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func wellGrouped(s string, sep rune) bool {
	groups := strings.Split(s, string(sep))
	if len(groups[0]) < 1 || len(groups[0]) > 3 || !allDigits(groups[0]) {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 || !allDigits(g) {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Slash dates are read month first.
var timeLayouts = []string{
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"02.01.2006 15:04:05",
	"02.01.2006",
	time.RFC1123Z,
	time.RFC1123,
	time.ANSIC,
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006",
}

// parseTimestamp reads ISO 8601 first and falls back to common spreadsheet layouts.
func parseTimestamp(s string) (time.Time, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, false
	}
	if t, err := iso8601.ParseString(v); err == nil {
		return t, true
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
