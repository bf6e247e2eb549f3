package inventory

import (
	"math"
	"time"
)

// Movement is the audit row of one stock debit. Applied can be lower than
// Requested when the stock ran out.
type Movement struct {
	ID          int64
	MaterialID  int64
	EventID     int64
	Requested   float64
	Applied     float64
	StockBefore float64
	StockAfter  float64
	CreatedAt   time.Time
}

// Depleted reports whether this debit is the one that emptied the material.
func (m Movement) Depleted() bool {
	return m.Applied > 0 && m.StockAfter <= 0
}

// Debit applies qty to current with the zero floor: stock never goes below
// zero, the part of qty that does not fit is simply not applied.
func Debit(current, qty float64) (applied, next float64) {
	if qty <= 0 || math.IsNaN(qty) {
		return 0, current
	}
	applied = math.Min(qty, math.Max(current, 0))
	return applied, current - applied
}
