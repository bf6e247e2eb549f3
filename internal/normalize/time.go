package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/gwind/medicoes/internal/sheet"
)

var (
	clockRe  = regexp.MustCompile(`^(\d{1,2})\s*[:hH]\s*(\d{1,2})?`)
	digitsRe = regexp.MustCompile(`\d+`)
)

// Time returns v as zero-padded "HH:MM" and true, or the raw text and false.
// Accepted: "7:05", "07:05:00", "7h00", "7h", "das 7 as 30" and day fractions (0.5 = 12:00).
func Time(v sheet.Value) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case sheet.NumberVal:
		return timeFromNumber(float64(x), sheet.Text(v))
	case sheet.StringVal:
		return timeFromText(strings.TrimSpace(string(x)))
	default:
		return sheet.Text(v), false
	}
}

func timeFromNumber(n float64, raw string) (string, bool) {
	switch {
	case n >= 0 && n < 1:
		total := int(math.Round(n * 24 * 60))
		return clock(total/60%24, total%60)
	case n >= 1 && n < 24 && n == math.Trunc(n):
		return clock(int(n), 0)
	}
	return raw, false
}

func timeFromText(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	if m := clockRe.FindStringSubmatch(raw); m != nil {
		minute := 0
		if m[2] != "" {
			minute = atoi(m[2])
		}
		if s, ok := clock(atoi(m[1]), minute); ok {
			return s, true
		}
		return raw, false
	}

	groups := digitsRe.FindAllString(raw, -1)
	if len(groups) >= 2 {
		if s, ok := clock(atoi(groups[0]), atoi(groups[1])); ok {
			return s, true
		}
	}
	return raw, false
}

func clock(hour, minute int) (string, bool) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}
