package mapview

// Layer is a style layer in the renderer's JSON shape.
type Layer struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Source string         `json:"source"`
	Filter any            `json:"filter,omitempty"`
	Layout map[string]any `json:"layout,omitempty"`
	Paint  map[string]any `json:"paint,omitempty"`
}

// Stop is one breakpoint of the severity colour ramp.
type Stop struct {
	Score float64 `json:"score"`
	Color string  `json:"color"`
}

// SeverityStops is the legend ramp. The point layer uses only the stops from RampFloor up, so
// every score below RampFloor is drawn in the RampFloor colour and scores at or above the last
// stop take the last.
var SeverityStops = []Stop{
	{0, "#2B9229"},
	{40, "#e2f100"},
	{60, "#ffff00"},
	{75, "#ffa500"},
	{90, "#ff0000"},
}

// RampFloor is the lowest score the point colour distinguishes.
const RampFloor = 40.0

const (
	RadiusSingle  = 6.0
	RadiusMulti   = 9.0
	CircleOpacity = 0.8
)

func severityRamp() []any {
	expr := []any{"interpolate", []any{"linear"}, []any{"get", "maxScore"}}
	for _, s := range SeverityStops {
		if s.Score < RampFloor {
			continue
		}
		expr = append(expr, s.Score, s.Color)
	}
	return expr
}

func multiMarker() []any { return []any{">", []any{"get", "count"}, 1} }

// CircleLayer is the point layer: colour by maxScore, larger radius for collapsed precincts.
func CircleLayer() Layer {
	return Layer{
		ID:     CircleLayerID,
		Type:   "circle",
		Source: SourceID,
		Paint: map[string]any{
			"circle-color":        severityRamp(),
			"circle-radius":       []any{"case", multiMarker(), RadiusMulti, RadiusSingle},
			"circle-stroke-width": 0,
			"circle-stroke-color": severityRamp(),
			"circle-opacity":      CircleOpacity,
		},
	}
}

// CountLayer labels multi-precinct points with their count.
func CountLayer() Layer {
	return Layer{
		ID:     CountLayerID,
		Type:   "symbol",
		Source: SourceID,
		Filter: multiMarker(),
		Layout: map[string]any{
			"text-field":         []any{"get", "count"},
			"text-font":          []any{"Open Sans Bold", "Arial Unicode MS Bold"},
			"text-size":          10,
			"text-allow-overlap": true,
		},
		Paint: map[string]any{
			"text-color": "#ffffff",
		},
	}
}
