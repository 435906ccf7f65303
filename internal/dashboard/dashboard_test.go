package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagsusi/internal/anomaly"
	"pagsusi/internal/mapview"
)

var basemap = []mapview.LayerRef{
	{ID: "background", Type: "background"},
	{ID: "water_name_line", Type: "symbol"},
	{ID: "place_town", Type: "symbol"},
}

func sampleDataset() *anomaly.Dataset {
	return anomaly.NewDataset([]anomaly.Record{
		{ID: 1, Name: "A", Lat: 14.6, Lng: 121.0, AnomalyScore: 91},
		{ID: 2, Name: "B", Lat: 14.6, Lng: 121.0, AnomalyScore: 40},
		{ID: 3, Name: "C", Lat: 10.3, Lng: 123.9, AnomalyScore: 65},
	}, "test")
}

func start(t *testing.T, ds *anomaly.Dataset) (*Dashboard, context.Context) {
	t.Helper()
	d := New(ds, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return d, context.Background()
}

func loadMap(t *testing.T, d *Dashboard, ctx context.Context) {
	t.Helper()
	_, err := d.MapEvent(ctx, mapview.Event{Type: mapview.EventLoad, StyleLayers: basemap})
	require.NoError(t, err)
}

func view(t *testing.T, d *Dashboard, ctx context.Context) View {
	t.Helper()
	v, err := d.View(ctx)
	require.NoError(t, err)
	return v
}

func layerIDs(st mapview.CanvasState) []string {
	ids := make([]string, len(st.Layers))
	for i, l := range st.Layers {
		ids[i] = l.ID
	}
	return ids
}

func click(layer string, groupIndex any) mapview.Event {
	return mapview.Event{
		Type:     mapview.EventClick,
		LayerID:  layer,
		Features: []mapview.Feature{{Properties: map[string]any{"groupIndex": groupIndex}}},
	}
}

func TestLoadEventMountsLayers(t *testing.T) {
	d, ctx := start(t, sampleDataset())

	v := view(t, d, ctx)
	assert.False(t, v.Map.Loaded)
	assert.Empty(t, v.Map.Layers)
	assert.Len(t, v.Groups, 2)

	loadMap(t, d, ctx)
	v = view(t, d, ctx)
	assert.True(t, v.Map.Loaded)
	assert.Equal(t, []string{mapview.CircleLayerID, mapview.CountLayerID}, layerIDs(v.Map))
	require.Contains(t, v.Map.Sources, mapview.SourceID)
	assert.Len(t, v.Map.Sources[mapview.SourceID].Features, 2)
	assert.Equal(t, "none", v.Map.Layout["water_name_line"]["visibility"])
	assert.NotContains(t, v.Map.Layout, "place_town")
}

func TestSecondLoadRemounts(t *testing.T) {
	d, ctx := start(t, sampleDataset())
	loadMap(t, d, ctx)
	loadMap(t, d, ctx)

	v := view(t, d, ctx)
	assert.Equal(t, []string{mapview.CircleLayerID, mapview.CountLayerID}, layerIDs(v.Map))

	n, err := d.MapEvent(ctx, click(mapview.CircleLayerID, 1.0))
	require.NoError(t, err)
	assert.Equal(t, 1, n, "handlers are not duplicated")
}

func TestClickSelectsGroup(t *testing.T) {
	testCases := []struct {
		name      string
		event     mapview.Event
		wantIndex int
		wantIDs   []int
	}{
		{"circle layer", click(mapview.CircleLayerID, 0.0), 0, []int{1, 2}},
		{"count layer", click(mapview.CountLayerID, 1.0), 1, []int{3}},
		{"no features", mapview.Event{Type: mapview.EventClick, LayerID: mapview.CircleLayerID}, -1, nil},
		{"index out of range", click(mapview.CircleLayerID, 7.0), -1, nil},
		{"missing property", click(mapview.CircleLayerID, "x"), -1, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, ctx := start(t, sampleDataset())
			loadMap(t, d, ctx)

			_, err := d.MapEvent(ctx, tc.event)
			require.NoError(t, err)

			v := view(t, d, ctx)
			assert.Equal(t, tc.wantIndex, v.Selection.GroupIndex)
			assert.Equal(t, tc.wantIDs, v.Selection.MemberIDs)
			assert.Nil(t, v.Map.Camera, "clicks do not move the camera")
		})
	}
}

func TestHoverCursor(t *testing.T) {
	d, ctx := start(t, sampleDataset())
	loadMap(t, d, ctx)

	_, err := d.MapEvent(ctx, mapview.Event{Type: mapview.EventMouseEnter, LayerID: mapview.CircleLayerID})
	require.NoError(t, err)
	assert.Equal(t, "pointer", view(t, d, ctx).Map.Cursor)

	_, err = d.MapEvent(ctx, mapview.Event{Type: mapview.EventMouseLeave, LayerID: mapview.CircleLayerID})
	require.NoError(t, err)
	assert.Equal(t, "", view(t, d, ctx).Map.Cursor)
}

func TestUnknownEvent(t *testing.T) {
	d, ctx := start(t, sampleDataset())
	_, err := d.MapEvent(ctx, mapview.Event{Type: "zoomend"})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestSelectRecord(t *testing.T) {
	d, ctx := start(t, sampleDataset())

	ok, err := d.SelectRecord(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok, "map not ready")
	assert.False(t, view(t, d, ctx).Selection.Open())

	loadMap(t, d, ctx)
	ok, err = d.SelectRecord(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	v := view(t, d, ctx)
	assert.Equal(t, 0, v.Selection.GroupIndex)
	assert.Equal(t, []int{1, 2}, v.Selection.MemberIDs)
	require.NotNil(t, v.Map.Camera)
	assert.Equal(t, int64(1), v.Map.Camera.Seq)
	assert.Equal(t, [2]float64{121.0, 14.6}, v.Map.Camera.Center)
	assert.Equal(t, 12.0, v.Map.Camera.Zoom)
	assert.Equal(t, int64(1500), v.Map.Camera.DurationMs)

	_, err = d.SelectRecord(ctx, 99)
	assert.ErrorIs(t, err, ErrUnknownRecord)
	v = view(t, d, ctx)
	assert.Equal(t, int64(1), v.Map.Camera.Seq)
	assert.True(t, v.Selection.Open())
	assert.Equal(t, 0, v.Selection.GroupIndex)
	assert.Equal(t, []int{1, 2}, v.Selection.MemberIDs)
}

func TestDetailAndClose(t *testing.T) {
	d, ctx := start(t, sampleDataset())
	loadMap(t, d, ctx)

	ok, err := d.ShowDetail(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok, "no group open")

	_, err = d.MapEvent(ctx, click(mapview.CircleLayerID, 0.0))
	require.NoError(t, err)

	ok, err = d.ShowDetail(ctx, 3)
	require.NoError(t, err)
	assert.False(t, ok, "not a member of the open group")

	ok, err = d.ShowDetail(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	v := view(t, d, ctx)
	require.NotNil(t, v.Selection.DetailID)
	assert.Equal(t, 2, *v.Selection.DetailID)
	popup := v.Popup()
	require.Len(t, popup.Members, 2)
	assert.False(t, popup.Members[0].Detail)
	assert.True(t, popup.Members[1].Detail)

	require.NoError(t, d.HideDetail(ctx))
	assert.Nil(t, view(t, d, ctx).Selection.DetailID)

	_, err = d.ShowDetail(ctx, 2)
	require.NoError(t, err)
	_, err = d.MapEvent(ctx, click(mapview.CircleLayerID, 1.0))
	require.NoError(t, err)
	assert.Nil(t, view(t, d, ctx).Selection.DetailID, "selecting a group resets the detail view")

	require.NoError(t, d.ClosePopup(ctx))
	v = view(t, d, ctx)
	assert.False(t, v.Selection.Open())
	assert.False(t, v.Popup().Open)
}

func TestReloadKeepsOrDismissesSelection(t *testing.T) {
	d, ctx := start(t, sampleDataset())
	loadMap(t, d, ctx)
	_, err := d.MapEvent(ctx, click(mapview.CircleLayerID, 0.0))
	require.NoError(t, err)
	_, err = d.ShowDetail(ctx, 1)
	require.NoError(t, err)

	reordered := anomaly.NewDataset([]anomaly.Record{
		{ID: 3, Lat: 10.3, Lng: 123.9},
		{ID: 1, Lat: 14.6, Lng: 121.0},
		{ID: 2, Lat: 14.6, Lng: 121.0},
	}, "reordered")
	require.NoError(t, d.Load(ctx, reordered))
	v := view(t, d, ctx)
	assert.Equal(t, 1, v.Selection.GroupIndex)
	assert.Equal(t, []int{1, 2}, v.Selection.MemberIDs)
	require.NotNil(t, v.Selection.DetailID)
	assert.Equal(t, 1, *v.Selection.DetailID)
	assert.Equal(t, []string{mapview.CircleLayerID, mapview.CountLayerID}, layerIDs(v.Map))

	split := anomaly.NewDataset([]anomaly.Record{
		{ID: 1, Lat: 14.6, Lng: 121.0},
		{ID: 2, Lat: 14.7, Lng: 121.0},
	}, "split")
	require.NoError(t, d.Load(ctx, split))
	v = view(t, d, ctx)
	assert.False(t, v.Selection.Open())
	assert.Len(t, v.Map.Sources[mapview.SourceID].Features, 2)
}

func TestStyleReloadRestoresLayers(t *testing.T) {
	d, ctx := start(t, sampleDataset())
	loadMap(t, d, ctx)

	_, err := d.MapEvent(ctx, mapview.Event{Type: mapview.EventStyleLoad, StyleLayers: []mapview.LayerRef{
		{ID: "water_label", Type: "symbol"},
	}})
	require.NoError(t, err)

	v := view(t, d, ctx)
	assert.Equal(t, []string{mapview.CircleLayerID, mapview.CountLayerID}, layerIDs(v.Map))
	assert.Equal(t, "none", v.Map.Layout["water_label"]["visibility"])
	assert.NotContains(t, v.Map.Layout, "water_name_line")
}

func TestResetMap(t *testing.T) {
	d, ctx := start(t, sampleDataset())
	loadMap(t, d, ctx)
	reset, err := d.ResetMap(ctx, "")
	require.NoError(t, err)
	assert.True(t, reset)

	v := view(t, d, ctx)
	assert.False(t, v.Map.Loaded)
	assert.Empty(t, v.Map.Layers)
	assert.Empty(t, v.Map.Sources)

	ok, err := d.SelectRecord(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	loadMap(t, d, ctx)
	assert.Len(t, view(t, d, ctx).Map.Layers, 2)
}

func TestResetMapOnlyByLastRenderer(t *testing.T) {
	d, ctx := start(t, sampleDataset())
	for _, client := range []string{"tab-a", "tab-b"} {
		_, err := d.MapEvent(ctx, mapview.Event{Type: mapview.EventLoad, StyleLayers: basemap, Client: client})
		require.NoError(t, err)
	}

	reset, err := d.ResetMap(ctx, "tab-a")
	require.NoError(t, err)
	assert.False(t, reset)
	v := view(t, d, ctx)
	assert.True(t, v.Map.Loaded)
	assert.Len(t, v.Map.Layers, 2)

	reset, err = d.ResetMap(ctx, "tab-b")
	require.NoError(t, err)
	assert.True(t, reset)
	assert.False(t, view(t, d, ctx).Map.Loaded)

	reset, err = d.ResetMap(ctx, "tab-b")
	require.NoError(t, err)
	assert.False(t, reset, "a second close from the same tab is a no-op")
}

func TestConcurrentRequests(t *testing.T) {
	d, ctx := start(t, sampleDataset())
	loadMap(t, d, ctx)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = d.SelectRecord(ctx, 1+i%3)
			_, _ = d.View(ctx)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int64(50), view(t, d, ctx).Map.Camera.Seq)
}

func TestStoppedLoop(t *testing.T) {
	d := New(sampleDataset(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, errors.Is(d.Run(ctx), context.Canceled))

	err := d.Do(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestDoWaitsForAcceptedWork(t *testing.T) {
	d, _ := start(t, sampleDataset())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	written := 0
	err := d.Do(ctx, func() {
		time.Sleep(50 * time.Millisecond)
		written = 1
	})
	require.NoError(t, err)
	assert.Equal(t, 1, written)
	assert.Error(t, ctx.Err())
}

func TestDoCancelledBeforeAccept(t *testing.T) {
	d := New(sampleDataset(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := d.Do(ctx, func() { ran = true })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}
