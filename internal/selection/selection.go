// Package selection keeps the popup state shared by the map layer, the list panel and the popup:
// which group is open and which of its members is expanded to the detail view.
package selection

import "pagsusi/internal/grouping"

// State is owned by the dashboard and mutated only from its event loop.
type State struct {
	group    *grouping.Group
	index    int
	detailID *int
}

// SelectGroup opens the popup on g. Any expanded member is collapsed, so a fresh selection
// always starts in the summary view.
func (s *State) SelectGroup(g grouping.Group, index int) {
	s.group = &g
	s.index = index
	s.detailID = nil
}

// Group returns the selected group, if any.
func (s *State) Group() (grouping.Group, bool) {
	if s.group == nil {
		return grouping.Group{}, false
	}
	return *s.group, true
}

// Index is the selected group's position in the group list, or -1.
func (s *State) Index() int {
	if s.group == nil {
		return -1
	}
	return s.index
}

// ShowDetail expands member id. It is refused when no group is open or id is not a member.
func (s *State) ShowDetail(id int) bool {
	if s.group == nil || !s.group.Contains(id) {
		return false
	}
	s.detailID = &id
	return true
}

// HideDetail returns the popup to the summary view.
func (s *State) HideDetail() { s.detailID = nil }

// DetailID is the expanded member, if any.
func (s *State) DetailID() (int, bool) {
	if s.detailID == nil {
		return 0, false
	}
	return *s.detailID, true
}

// Dismiss closes the popup: both the group and the detail member are cleared.
func (s *State) Dismiss() {
	s.group = nil
	s.index = 0
	s.detailID = nil
}

// Snapshot is a copy of the state safe to hand outside the event loop.
type Snapshot struct {
	GroupIndex int   `json:"groupIndex"`
	MemberIDs  []int `json:"memberIds,omitempty"`
	DetailID   *int  `json:"detailPrecinctId"`
}

// Open reports whether a group was selected when the snapshot was taken.
func (s Snapshot) Open() bool { return s.GroupIndex >= 0 }

func (s *State) Snapshot() Snapshot {
	out := Snapshot{GroupIndex: s.Index()}
	if s.group != nil {
		out.MemberIDs = s.group.IDs()
	}
	if s.detailID != nil {
		id := *s.detailID
		out.DetailID = &id
	}
	return out
}
