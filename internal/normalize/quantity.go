package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gwind/medicoes/internal/sheet"
)

var (
	numberRe     = regexp.MustCompile(`-?\d[\d.,]*`)
	gramRe       = regexp.MustCompile(`\d\s*(g|gr|grs|grama|gramas)\b`)
	kilogramRe   = regexp.MustCompile(`kg|quilo|kilo`)
	thousandsDot = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)
)

// Quantity parses a consumed amount in kilograms (or the material's own unit).
// "1.234,50" -> 1234.5, "900g" -> 0.9, "3kg" -> 3. Anything unreadable yields
// false; callers must treat that as absent, not as zero.
func Quantity(v sheet.Value) (float64, bool) {
	switch x := v.(type) {
	case sheet.NumberVal:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case sheet.StringVal:
		return quantityFromText(string(x))
	default:
		return 0, false
	}
}

// Number parses a Brazilian-formatted number without any unit conversion.
func Number(v sheet.Value) (float64, bool) {
	switch x := v.(type) {
	case sheet.NumberVal:
		return float64(x), true
	case sheet.StringVal:
		raw := numberRe.FindString(strings.TrimSpace(string(x)))
		if raw == "" {
			return 0, false
		}
		return parseDecimal(raw)
	default:
		return 0, false
	}
}

func quantityFromText(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	raw := numberRe.FindString(s)
	if raw == "" {
		return 0, false
	}
	n, ok := parseDecimal(raw)
	if !ok {
		return 0, false
	}
	if gramRe.MatchString(s) && !kilogramRe.MatchString(s) {
		n /= 1000
	}
	return n, true
}

// parseDecimal reads "1.234,50", "1234,5", "1.500" (thousands) and "0.9".
func parseDecimal(raw string) (float64, bool) {
	raw = strings.TrimRight(raw, ".,")
	switch {
	case strings.Contains(raw, ","):
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
		raw = strings.ReplaceAll(raw, ",", "")
	case strings.Count(raw, ".") > 1 || thousandsDot.MatchString(raw):
		raw = strings.ReplaceAll(raw, ".", "")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
