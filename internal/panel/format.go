// Package panel renders the sidebar list, the map legend and the group popup as HTML
// fragments, plus the display formatting they share.
package panel

import (
	"github.com/shopspring/decimal"

	"pagsusi/internal/anomaly"
)

// NotAvailable is shown for rates the pipeline left null.
const NotAvailable = "N/A"

// Score formats an anomaly score with one decimal.
func Score(v float64) string { return decimal.NewFromFloat(v).StringFixed(1) }

// Fixed2 formats a z-score or similar with two decimals.
func Fixed2(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) }

// Sigma formats a residual in standard deviations.
func Sigma(v float64) string { return Fixed2(v) + "σ" }

// Percent formats a fraction as a percentage with the given decimals.
func Percent(frac float64, places int32) string {
	return decimal.NewFromFloat(frac).Shift(2).StringFixed(places) + "%"
}

// Rate formats an optional fraction with two decimals, or NotAvailable when nil.
func Rate(r *float64) string {
	if r == nil {
		return NotAvailable
	}
	return Percent(*r, 2)
}

// TurnoutDelta is actual minus expected turnout in percentage points, with an arrow.
func TurnoutDelta(turnout, expected float64) string {
	d := decimal.NewFromFloat(turnout).Sub(decimal.NewFromFloat(expected)).Shift(2)
	arrow := " ▼"
	if turnout > expected {
		arrow = " ▲"
	}
	return d.StringFixed(1) + "%" + arrow
}

// TurnoutBar is the width, in percent, of the turnout share of turnout+expected.
func TurnoutBar(turnout, expected float64) string {
	sum := turnout + expected
	if sum <= 0 {
		return "0.00"
	}
	w := turnout / sum * 100
	switch {
	case w < 0:
		w = 0
	case w > 100:
		w = 100
	}
	return decimal.NewFromFloat(w).StringFixed(2)
}

// PriorityClass picks the badge style. Unknown priorities look like Low.
func PriorityClass(p anomaly.Priority) string {
	switch p {
	case anomaly.PriorityCritical:
		return "badge-critical"
	case anomaly.PriorityHigh:
		return "badge-high"
	case anomaly.PriorityMedium:
		return "badge-medium"
	}
	return "badge-low"
}

// ScoreClass emphasises scores above 80 and 60.
func ScoreClass(score float64) string {
	switch {
	case score > 80:
		return "score-critical"
	case score > 60:
		return "score-elevated"
	}
	return "score-normal"
}
