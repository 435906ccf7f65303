package mapview

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"pagsusi/internal/grouping"
)

// FeatureCollection renders one point per group at its first member. Properties carry the
// group's position in the list so clicks resolve back to it.
func FeatureCollection(groups []grouping.Group) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, g := range groups {
		if g.Count() == 0 {
			continue
		}
		first := g.First()
		f := geojson.NewFeature(orb.Point{first.Lng, first.Lat})
		f.ID = i
		f.Properties["id"] = i
		f.Properties["groupIndex"] = i
		f.Properties["count"] = g.Count()
		f.Properties["maxScore"] = g.MaxScore()
		fc.Append(f)
	}
	return fc
}
