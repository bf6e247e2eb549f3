package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gwind/medicoes/internal/sheet"
)

func TestDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       sheet.Value
		dayFirst bool
		want     string
		parsed   bool
	}{
		{name: "day column, first part above 12", in: sheet.StringVal("13/10/25"), dayFirst: true, want: "2025-10-13", parsed: true},
		{name: "second part above 12 forces month-first", in: sheet.StringVal("10/13/25"), dayFirst: true, want: "2025-10-13", parsed: true},
		{name: "ambiguous on day column is day-first", in: sheet.StringVal("05/06/25"), dayFirst: true, want: "2025-06-05", parsed: true},
		{name: "ambiguous elsewhere is month-first", in: sheet.StringVal("05/06/25"), dayFirst: false, want: "2025-05-06", parsed: true},
		{name: "four digit year", in: sheet.StringVal("01/02/2024"), dayFirst: true, want: "2024-02-01", parsed: true},
		{name: "iso", in: sheet.StringVal("2025-10-13"), want: "2025-10-13", parsed: true},
		{name: "iso with time", in: sheet.StringVal("2025-10-13T08:00:00Z"), want: "2025-10-13", parsed: true},
		{name: "serial number", in: sheet.NumberVal(45943), want: "2025-10-13", parsed: true},
		{name: "serial as text", in: sheet.StringVal("45943"), want: "2025-10-13", parsed: true},
		{name: "impossible date passes through", in: sheet.StringVal("31/02/25"), dayFirst: true, want: "31/02/25", parsed: false},
		{name: "free text passes through", in: sheet.StringVal("ontem"), want: "ontem", parsed: false},
		{name: "empty", in: sheet.StringVal("  "), want: "", parsed: false},
		{name: "nil", in: nil, want: "", parsed: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := Date(tc.in, tc.dayFirst)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.parsed, ok)
		})
	}
}

func TestTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     sheet.Value
		want   string
		parsed bool
	}{
		{name: "h:mm", in: sheet.StringVal("7:05"), want: "07:05", parsed: true},
		{name: "hh:mm:ss", in: sheet.StringVal("17:30:00"), want: "17:30", parsed: true},
		{name: "7h00", in: sheet.StringVal("7h00"), want: "07:00", parsed: true},
		{name: "bare hour with h", in: sheet.StringVal("8h"), want: "08:00", parsed: true},
		{name: "free text with two groups", in: sheet.StringVal("inicio 6 e 45"), want: "06:45", parsed: true},
		{name: "day fraction", in: sheet.NumberVal(0.5), want: "12:00", parsed: true},
		{name: "whole hour number", in: sheet.NumberVal(9), want: "09:00", parsed: true},
		{name: "out of range passes through", in: sheet.StringVal("25:00"), want: "25:00", parsed: false},
		{name: "no digits passes through", in: sheet.StringVal("manhã"), want: "manhã", parsed: false},
		{name: "empty", in: nil, want: "", parsed: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := Time(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.parsed, ok)
		})
	}
}

func TestQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   sheet.Value
		want float64
		ok   bool
	}{
		{name: "brazilian thousands and decimal", in: sheet.StringVal("1.234,50"), want: 1234.50, ok: true},
		{name: "grams become kilograms", in: sheet.StringVal("900g"), want: 0.9, ok: true},
		{name: "kilograms stay", in: sheet.StringVal("3kg"), want: 3, ok: true},
		{name: "spaced grams word", in: sheet.StringVal("500 gramas"), want: 0.5, ok: true},
		{name: "decimal comma with unit", in: sheet.StringVal("2,5 kg"), want: 2.5, ok: true},
		{name: "decimal dot", in: sheet.StringVal("1.5"), want: 1.5, ok: true},
		{name: "dot as thousands", in: sheet.StringVal("1.500"), want: 1500, ok: true},
		{name: "number value", in: sheet.NumberVal(0.75), want: 0.75, ok: true},
		{name: "unreadable is absent", in: sheet.StringVal("n/a"), ok: false},
		{name: "empty is absent", in: sheet.StringVal(""), ok: false},
		{name: "bool is absent", in: sheet.BoolVal(true), ok: false},
		{name: "nil is absent", in: nil, ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := Quantity(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.want, got, 1e-9)
			}
		})
	}
}
