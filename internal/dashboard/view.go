package dashboard

import (
	"context"

	"pagsusi/internal/anomaly"
	"pagsusi/internal/grouping"
	"pagsusi/internal/mapview"
	"pagsusi/internal/panel"
	"pagsusi/internal/selection"
)

// View is a consistent copy of the dashboard taken on the event loop. Dataset and Groups are
// never mutated after a load, so sharing them is safe.
type View struct {
	Dataset   *anomaly.Dataset
	Groups    []grouping.Group
	Selection selection.Snapshot
	Map       mapview.CanvasState
	Camera    mapview.Camera
}

func (d *Dashboard) View(ctx context.Context) (View, error) {
	var v View
	err := d.Do(ctx, func() {
		v = View{
			Dataset:   d.dataset,
			Groups:    d.groups,
			Selection: d.sel.Snapshot(),
			Map:       d.canvas.State(),
			Camera:    d.camera,
		}
	})
	return v, err
}

// SelectedGroup is the open group, if any.
func (v View) SelectedGroup() (grouping.Group, bool) {
	i := v.Selection.GroupIndex
	if i < 0 || i >= len(v.Groups) {
		return grouping.Group{}, false
	}
	return v.Groups[i], true
}

// Popup is the popup view model for the current selection.
func (v View) Popup() panel.PopupView {
	g, ok := v.SelectedGroup()
	if !ok {
		return panel.PopupView{}
	}
	return panel.NewPopup(g, v.Selection.DetailID)
}
