// Package normalize converts loosely typed sheet values into domain values.
// Dates and times that cannot be understood are handed back unchanged so that
// nothing typed by a technician is silently lost; quantities are reported as absent.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gwind/medicoes/internal/sheet"
)

const isoDate = "2006-01-02"

// serialEpoch is day zero of spreadsheet date serials.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

var (
	isoDateRe     = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:[T ].*)?$`)
	slashedDateRe = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2}|\d{4})$`)
	serialRe      = regexp.MustCompile(`^\d{1,7}(?:[.,]\d+)?$`)
)

// Date returns the ISO 8601 date held by v and true, or the raw text and
// false when v is not a recognisable date ("" for an empty value).
//
// NN/NN/YY is day-first when the first part exceeds 12, month-first when the
// second does, and dayFirst decides the ambiguous remainder.
func Date(v sheet.Value, dayFirst bool) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case sheet.NumberVal:
		if d, ok := fromSerial(float64(x)); ok {
			return d, true
		}
		return sheet.Text(v), false
	case sheet.StringVal:
		return dateFromText(strings.TrimSpace(string(x)), dayFirst)
	default:
		return sheet.Text(v), false
	}
}

func dateFromText(raw string, dayFirst bool) (string, bool) {
	if raw == "" {
		return "", false
	}

	if m := isoDateRe.FindStringSubmatch(raw); m != nil {
		if d, ok := build(atoi(m[1]), atoi(m[2]), atoi(m[3])); ok {
			return d, true
		}
		return raw, false
	}

	if m := slashedDateRe.FindStringSubmatch(raw); m != nil {
		a, b, y := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if len(m[3]) == 2 {
			y += 2000
		}

		var day, month int
		switch {
		case a > 12:
			day, month = a, b
		case b > 12:
			day, month = b, a
		case dayFirst:
			day, month = a, b
		default:
			day, month = b, a
		}
		if d, ok := build(y, month, day); ok {
			return d, true
		}
		return raw, false
	}

	if serialRe.MatchString(raw) {
		n, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
		if err == nil {
			if d, ok := fromSerial(n); ok {
				return d, true
			}
		}
	}

	return raw, false
}

func fromSerial(n float64) (string, bool) {
	// 1 .. 9999-12-31
	if n < 1 || n > 2958465 || math.IsNaN(n) {
		return "", false
	}
	return serialEpoch.AddDate(0, 0, int(math.Floor(n))).Format(isoDate), true
}

// build rejects impossible calendar dates such as 31/02.
func build(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return "", false
	}
	return t.Format(isoDate), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
