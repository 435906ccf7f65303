// Package grouping partitions anomaly records into groups that share an exact coordinate.
package grouping

import "pagsusi/internal/anomaly"

// Coord is a group key. Comparison is plain float equality: no snapping, no tolerance.
type Coord struct {
	Lat float64
	Lng float64
}

// Group is a non-empty run of records at one coordinate, in input order.
type Group struct {
	Members []anomaly.Record
}

// Count is the number of precincts collapsed into the group.
func (g Group) Count() int { return len(g.Members) }

// MaxScore is the highest anomaly score among the members.
func (g Group) MaxScore() float64 {
	if len(g.Members) == 0 {
		return 0
	}
	m := g.Members[0].AnomalyScore
	for _, r := range g.Members[1:] {
		if r.AnomalyScore > m {
			m = r.AnomalyScore
		}
	}
	return m
}

// First is the member whose coordinate places the group on the map.
func (g Group) First() anomaly.Record { return g.Members[0] }

func (g Group) Coord() Coord {
	f := g.First()
	return Coord{Lat: f.Lat, Lng: f.Lng}
}

// Contains reports whether a record with the given id is a member.
func (g Group) Contains(id int) bool {
	for _, r := range g.Members {
		if r.ID == id {
			return true
		}
	}
	return false
}

// IDs lists member ids in group order.
func (g Group) IDs() []int {
	out := make([]int, len(g.Members))
	for i, r := range g.Members {
		out[i] = r.ID
	}
	return out
}

// Build groups records by exact (lat, lng). Groups appear in order of the first occurrence of
// their coordinate and members keep input order. The input is not modified and the result
// shares no slices with it, so calling Build again on the same list yields an equal result.
func Build(records []anomaly.Record) []Group {
	index := make(map[Coord]int, len(records))
	groups := make([]Group, 0, len(records))
	for _, r := range records {
		k := Coord{Lat: r.Lat, Lng: r.Lng}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{})
		}
		groups[i].Members = append(groups[i].Members, r)
	}
	return groups
}

// IndexOf returns the index of the group holding recordID, or -1.
func IndexOf(groups []Group, recordID int) int {
	for i, g := range groups {
		if g.Contains(recordID) {
			return i
		}
	}
	return -1
}
