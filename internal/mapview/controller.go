package mapview

import (
	"math"
	"strings"
	"time"

	"pagsusi/internal/anomaly"
	"pagsusi/internal/grouping"
	"pagsusi/internal/logger"
	"pagsusi/internal/metrics"
)

const (
	SourceID      = "anomalies-source"
	CircleLayerID = "anomalies-circles"
	CountLayerID  = "anomalies-count"

	FlyToZoom     = 12.0
	FlyToDuration = 1500 * time.Millisecond
)

// SelectFunc receives the group resolved from a click or an external selection.
type SelectFunc func(g grouping.Group, index int)

// Controller owns the anomaly source and its two layers on a Surface.
type Controller struct {
	surface  Surface
	onSelect SelectFunc
	groups   []grouping.Group
	mounted  bool
	subs     []Subscription
}

func NewController(s Surface, onSelect SelectFunc) *Controller {
	return &Controller{surface: s, onSelect: onSelect}
}

// Mounted reports whether the layers are live on the surface.
func (c *Controller) Mounted() bool { return c.mounted }

// Mount hides water labels, adds the source and layers and subscribes to interaction.
// Before the surface has loaded it only remembers groups and returns false.
func (c *Controller) Mount(groups []grouping.Group) bool {
	c.groups = groups
	if c.surface == nil || !c.surface.Loaded() {
		return false
	}
	if c.mounted {
		c.render()
		return true
	}
	c.mounted = true
	c.hideWaterLabels()
	c.subs = append(c.subs, c.surface.On(EventStyleLoad, "", c.onStyleLoad))
	for _, id := range []string{CircleLayerID, CountLayerID} {
		c.subs = append(c.subs,
			c.surface.On(EventClick, id, c.handleClick),
			c.surface.On(EventMouseEnter, id, c.handleEnter),
			c.surface.On(EventMouseLeave, id, c.handleLeave),
		)
	}
	c.render()
	return true
}

// SetGroups swaps in a new group list. A mounted layer has its source data replaced in place.
func (c *Controller) SetGroups(groups []grouping.Group) {
	c.groups = groups
	if c.mounted {
		c.render()
	}
}

// Unmount deregisters every handler and removes the layers and source. Removal is skipped
// when the surface has no style, which happens while the map is being destroyed.
func (c *Controller) Unmount() {
	if !c.mounted {
		return
	}
	for _, s := range c.subs {
		c.surface.Off(s)
	}
	c.subs = nil
	c.mounted = false
	if !c.surface.StyleLoaded() {
		return
	}
	l := logger.L()
	for _, id := range []string{CountLayerID, CircleLayerID} {
		if c.surface.HasLayer(id) {
			if err := c.surface.RemoveLayer(id); err != nil {
				l.Warn("layer_remove_error", "layer", id, "err", err)
			}
		}
	}
	if c.surface.HasSource(SourceID) {
		if err := c.surface.RemoveSource(SourceID); err != nil {
			l.Warn("source_remove_error", "source", SourceID, "err", err)
		}
	}
}

// FocusRecord selects the group containing rec and flies the camera to it. It does nothing
// and returns false when the surface is not loaded or rec is in no current group.
func (c *Controller) FocusRecord(rec anomaly.Record) bool {
	if c.surface == nil || !c.surface.Loaded() {
		return false
	}
	gi := grouping.IndexOf(c.groups, rec.ID)
	if gi < 0 {
		logger.L().Debug("focus_record_miss", "id", rec.ID)
		return false
	}
	if c.onSelect != nil {
		c.onSelect(c.groups[gi], gi)
	}
	c.surface.FlyTo(Camera{
		Center:     [2]float64{rec.Lng, rec.Lat},
		Zoom:       FlyToZoom,
		DurationMs: FlyToDuration.Milliseconds(),
	})
	metrics.FlyToTotal.Inc()
	return true
}

func (c *Controller) render() {
	l := logger.L()
	data := FeatureCollection(c.groups)
	if c.surface.HasSource(SourceID) {
		if err := c.surface.SetSourceData(SourceID, data); err != nil {
			l.Warn("source_update_error", "err", err)
			return
		}
	} else {
		if err := c.surface.AddSource(SourceID, data); err != nil {
			l.Warn("source_add_error", "err", err)
			return
		}
		metrics.LayerRebuildsTotal.Inc()
	}
	for _, layer := range []Layer{CircleLayer(), CountLayer()} {
		if c.surface.HasLayer(layer.ID) {
			continue
		}
		if err := c.surface.AddLayer(layer); err != nil {
			l.Warn("layer_add_error", "layer", layer.ID, "err", err)
		}
	}
	metrics.GroupsRendered.Set(float64(len(data.Features)))
	l.Debug("anomaly_layer_rendered", "groups", len(data.Features))
}

// onStyleLoad runs after a basemap swap, which drops custom layers along with the old style.
func (c *Controller) onStyleLoad(Event) {
	c.hideWaterLabels()
	c.render()
}

// hideWaterLabels hides basemap sea and ocean names. The match is by layer id substring and
// depends on the basemap's naming.
func (c *Controller) hideWaterLabels() int {
	n := 0
	for _, layer := range c.surface.StyleLayers() {
		if layer.Type != "symbol" {
			continue
		}
		if !strings.Contains(layer.ID, "water") && !strings.Contains(layer.ID, "marine") {
			continue
		}
		if err := c.surface.SetLayoutProperty(layer.ID, "visibility", "none"); err != nil {
			logger.L().Debug("water_label_hide_error", "layer", layer.ID, "err", err)
			continue
		}
		n++
	}
	return n
}

func (c *Controller) handleClick(e Event) {
	if len(e.Features) == 0 {
		return
	}
	gi, ok := groupIndex(e.Features[0].Properties)
	if !ok || gi < 0 || gi >= len(c.groups) {
		return
	}
	metrics.SelectionsTotal.WithLabelValues("click").Inc()
	if c.onSelect != nil {
		c.onSelect(c.groups[gi], gi)
	}
}

func (c *Controller) handleEnter(Event) { c.surface.SetCursor("pointer") }
func (c *Controller) handleLeave(Event) { c.surface.SetCursor("") }

// groupIndex reads the groupIndex property. Renderers hand numbers back as float64.
func groupIndex(props map[string]any) (int, bool) {
	switch v := props["groupIndex"].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}
