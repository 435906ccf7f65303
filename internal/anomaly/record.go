// Package anomaly holds the precinct anomaly records produced by the offline scoring pipeline
// and the read-only dataset the rest of the service works from.
package anomaly

// Priority is the pipeline's severity class for a precinct.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// Valid reports whether p is one of the four known classes.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Record is one scored precinct. Field names follow the static data file.
//
// OvervoteRate and UndervoteRate are nil when the pipeline could not compute them.
type Record struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Municipality   string   `json:"municipality"`
	Province       string   `json:"province"`
	Region         int      `json:"region"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	AnomalyScore   float64  `json:"anomalyScore"`
	Priority       Priority `json:"priority"`
	PrecinctNumber int      `json:"precinctNumber"`

	Turnout          float64  `json:"turnout"`
	Expected         float64  `json:"expected"`
	Residual         float64  `json:"residual"`
	SpatialDevZScore float64  `json:"spatialDevZScore"`
	GiStarZScore     float64  `json:"giStarZScore"`
	OvervoteRate     *float64 `json:"overvoteRate"`
	UndervoteRate    *float64 `json:"undervoteRate"`

	RegisteredVoters int `json:"registeredVoters"`
	ActualVoters     int `json:"actualVoters"`
	ValidVotes       int `json:"validVotes"`
	OverVotes        int `json:"overVotes"`
	UnderVotes       int `json:"underVotes"`
}

// Location is the "municipality, province" line shown in the list and popup.
func (r Record) Location() string {
	switch {
	case r.Municipality == "":
		return r.Province
	case r.Province == "":
		return r.Municipality
	}
	return r.Municipality + ", " + r.Province
}
