package mapview

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureCollection(t *testing.T) {
	fc := FeatureCollection(sampleGroups())
	require.Len(t, fc.Features, 2)

	f := fc.Features[0]
	assert.Equal(t, orb.Point{20, 10}, f.Geometry)
	assert.Equal(t, 0, f.Properties["groupIndex"])
	assert.Equal(t, 2, f.Properties["count"])
	assert.Equal(t, 85.0, f.Properties["maxScore"])

	f = fc.Features[1]
	assert.Equal(t, orb.Point{40, 30}, f.Geometry)
	assert.Equal(t, 1, f.Properties["groupIndex"])
	assert.Equal(t, 1, f.Properties["count"])
	assert.Equal(t, 55.0, f.Properties["maxScore"])
}

func TestFeatureCollectionEmptyMarshals(t *testing.T) {
	b, err := json.Marshal(FeatureCollection(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(b))
}
