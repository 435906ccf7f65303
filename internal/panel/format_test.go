package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pagsusi/internal/anomaly"
)

func ptr(v float64) *float64 { return &v }

func TestRate(t *testing.T) {
	testCases := []struct {
		name string
		in   *float64
		want string
	}{
		{"null renders N/A", nil, "N/A"},
		{"zero is a real value", ptr(0), "0.00%"},
		{"two decimals", ptr(0.01234), "1.23%"},
		{"rounds half up", ptr(0.00125), "0.13%"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Rate(tc.in))
		})
	}
}

func TestNumberFormats(t *testing.T) {
	assert.Equal(t, "85.5", Score(85.46))
	assert.Equal(t, "12.0", Score(12))
	assert.Equal(t, "81.2%", Percent(0.8123, 1))
	assert.Equal(t, "2.35σ", Sigma(2.3456))
	assert.Equal(t, "-1.20", Fixed2(-1.2))
}

func TestTurnoutDelta(t *testing.T) {
	testCases := []struct {
		name              string
		turnout, expected float64
		want              string
	}{
		{"above expected", 0.90, 0.80, "10.0% ▲"},
		{"below expected", 0.70, 0.75, "-5.0% ▼"},
		{"equal", 0.5, 0.5, "0.0% ▼"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TurnoutDelta(tc.turnout, tc.expected))
		})
	}
}

func TestTurnoutBar(t *testing.T) {
	assert.Equal(t, "50.00", TurnoutBar(0.8, 0.8))
	assert.Equal(t, "75.00", TurnoutBar(0.75, 0.25))
	assert.Equal(t, "0.00", TurnoutBar(0, 0))
}

func TestClasses(t *testing.T) {
	assert.Equal(t, "badge-critical", PriorityClass(anomaly.PriorityCritical))
	assert.Equal(t, "badge-high", PriorityClass(anomaly.PriorityHigh))
	assert.Equal(t, "badge-medium", PriorityClass(anomaly.PriorityMedium))
	assert.Equal(t, "badge-low", PriorityClass(anomaly.PriorityLow))
	assert.Equal(t, "badge-low", PriorityClass("Unknown"))

	assert.Equal(t, "score-critical", ScoreClass(80.1))
	assert.Equal(t, "score-elevated", ScoreClass(80))
	assert.Equal(t, "score-elevated", ScoreClass(60.5))
	assert.Equal(t, "score-normal", ScoreClass(60))
}
