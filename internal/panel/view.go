package panel

import (
	"html/template"
	"strconv"
	"strings"

	"pagsusi/internal/anomaly"
	"pagsusi/internal/grouping"
	"pagsusi/internal/mapview"
)

// ListEntry is one sidebar row; there is one per record, not per group.
type ListEntry struct {
	ID             int
	Name           string
	Location       string
	Priority       anomaly.Priority
	PriorityClass  string
	PrecinctNumber int
	Score          string
	Selected       bool
}

// NewList builds sidebar rows in record order. selectedIDs marks rows of the open group.
func NewList(records []anomaly.Record, selectedIDs []int) []ListEntry {
	sel := make(map[int]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		sel[id] = true
	}
	out := make([]ListEntry, len(records))
	for i, r := range records {
		out[i] = ListEntry{
			ID:             r.ID,
			Name:           r.Name,
			Location:       r.Location(),
			Priority:       r.Priority,
			PriorityClass:  PriorityClass(r.Priority),
			PrecinctNumber: r.PrecinctNumber,
			Score:          Score(r.AnomalyScore),
			Selected:       sel[r.ID],
		}
	}
	return out
}

// MemberView is one popup sub-panel. Detail selects the detail view over the summary view.
type MemberView struct {
	ID             int
	PrecinctNumber int
	Priority       anomaly.Priority
	PriorityClass  string
	Score          string
	ScoreClass     string
	Turnout        string
	Expected       string
	Delta          string
	Bar            string

	Detail           bool
	Residual         string
	SpatialDevZScore string
	OvervoteRate     string
	UndervoteRate    string
	GiStarZScore     string
	RegisteredVoters int
	ActualVoters     int
	ValidVotes       int
	OverVotes        int
	UnderVotes       int
}

// PopupView is the popup for the selected group; Open is false when nothing is selected.
type PopupView struct {
	Open     bool
	Name     string
	Location string
	Region   int
	Count    int
	Lng      float64
	Lat      float64
	Members  []MemberView
}

// NewPopup builds the popup for g with member detailID expanded, if any.
func NewPopup(g grouping.Group, detailID *int) PopupView {
	if g.Count() == 0 {
		return PopupView{}
	}
	first := g.First()
	v := PopupView{
		Open:     true,
		Name:     first.Name,
		Location: first.Location(),
		Region:   first.Region,
		Count:    g.Count(),
		Lng:      first.Lng,
		Lat:      first.Lat,
		Members:  make([]MemberView, 0, g.Count()),
	}
	for _, r := range g.Members {
		v.Members = append(v.Members, MemberView{
			ID:               r.ID,
			PrecinctNumber:   r.PrecinctNumber,
			Priority:         r.Priority,
			PriorityClass:    PriorityClass(r.Priority),
			Score:            Score(r.AnomalyScore),
			ScoreClass:       ScoreClass(r.AnomalyScore),
			Turnout:          Percent(r.Turnout, 1),
			Expected:         Percent(r.Expected, 1),
			Delta:            TurnoutDelta(r.Turnout, r.Expected),
			Bar:              TurnoutBar(r.Turnout, r.Expected),
			Detail:           detailID != nil && *detailID == r.ID,
			Residual:         Sigma(r.Residual),
			SpatialDevZScore: Fixed2(r.SpatialDevZScore),
			OvervoteRate:     Rate(r.OvervoteRate),
			UndervoteRate:    Rate(r.UndervoteRate),
			GiStarZScore:     Fixed2(r.GiStarZScore),
			RegisteredVoters: r.RegisteredVoters,
			ActualVoters:     r.ActualVoters,
			ValidVotes:       r.ValidVotes,
			OverVotes:        r.OverVotes,
			UnderVotes:       r.UnderVotes,
		})
	}
	return v
}

// LegendStop is one labelled tick under the legend gradient.
type LegendStop struct {
	Label string
	Color string
}

// Legend mirrors the point layer's colour ramp. The last label gets a "+".
func Legend() []LegendStop {
	out := make([]LegendStop, len(mapview.SeverityStops))
	for i, s := range mapview.SeverityStops {
		label := strconv.FormatFloat(s.Score, 'f', -1, 64)
		if i == len(mapview.SeverityStops)-1 {
			label += "+"
		}
		out[i] = LegendStop{Label: label, Color: s.Color}
	}
	return out
}

// LegendGradient is the CSS background for the legend bar.
func LegendGradient() template.CSS {
	colors := make([]string, len(mapview.SeverityStops))
	for i, s := range mapview.SeverityStops {
		colors[i] = s.Color
	}
	return template.CSS("linear-gradient(to right, " + strings.Join(colors, ", ") + ")")
}

// Page is the full dashboard document.
type Page struct {
	Title    string
	Subtitle string
	APIBase  string
	StyleURL string
	Camera   mapview.Camera
	Precinct int
	List     []ListEntry
	Popup    PopupView
	Method   Methodology
}
