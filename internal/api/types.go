package api

import (
	"pagsusi/internal/grouping"
	"pagsusi/internal/selection"
)

type errorBody struct {
	Error string `json:"error"`
}

// groupSummary is one coordinate group as listed by /groups.
type groupSummary struct {
	Index     int     `json:"index"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Count     int     `json:"count"`
	MaxScore  float64 `json:"maxScore"`
	MemberIDs []int   `json:"memberIds"`
}

func summarize(groups []grouping.Group) []groupSummary {
	out := make([]groupSummary, len(groups))
	for i, g := range groups {
		c := g.Coord()
		out[i] = groupSummary{
			Index:     i,
			Lat:       c.Lat,
			Lng:       c.Lng,
			Count:     g.Count(),
			MaxScore:  g.MaxScore(),
			MemberIDs: g.IDs(),
		}
	}
	return out
}

// actionResult reports whether a request changed anything, with the selection afterwards.
type actionResult struct {
	Applied   bool               `json:"applied"`
	Selection selection.Snapshot `json:"selection"`
}

type eventResult struct {
	Handlers int `json:"handlers"`
}

type reloadResult struct {
	Source  string `json:"source"`
	Digest  string `json:"digest"`
	Records int    `json:"records"`
	Groups  int    `json:"groups"`
}
