package mapview

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircleLayerPaint(t *testing.T) {
	l := CircleLayer()
	assert.Equal(t, SourceID, l.Source)
	assert.Equal(t, "circle", l.Type)

	b, err := json.Marshal(l.Paint["circle-color"])
	require.NoError(t, err)
	assert.JSONEq(t, `["interpolate",["linear"],["get","maxScore"],
		40,"#e2f100",60,"#ffff00",75,"#ffa500",90,"#ff0000"]`, string(b))
	assert.Equal(t, Stop{0, "#2B9229"}, SeverityStops[0], "legend keeps the zero stop")

	b, err = json.Marshal(l.Paint["circle-radius"])
	require.NoError(t, err)
	assert.JSONEq(t, `["case",[">",["get","count"],1],9,6]`, string(b))
	assert.Equal(t, CircleOpacity, l.Paint["circle-opacity"])
}

func TestCountLayerFilter(t *testing.T) {
	l := CountLayer()
	assert.Equal(t, "symbol", l.Type)
	b, err := json.Marshal(l.Filter)
	require.NoError(t, err)
	assert.JSONEq(t, `[">",["get","count"],1]`, string(b))
	assert.Equal(t, "#ffffff", l.Paint["text-color"])
}
