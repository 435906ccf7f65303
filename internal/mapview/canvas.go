package mapview

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"

	"pagsusi/internal/logger"
)

type binding struct {
	sub Subscription
	h   Handler
}

// CameraCommand is a fly-to the browser has not necessarily applied yet. Seq increases with
// every command so the browser can skip ones it has already animated.
type CameraCommand struct {
	Seq int64 `json:"seq"`
	Camera
}

// CanvasState is what the browser needs to reproduce the server's view of the map.
type CanvasState struct {
	Loaded  bool                                  `json:"loaded"`
	Version int64                                 `json:"version"`
	Sources map[string]*geojson.FeatureCollection `json:"sources"`
	Layers  []Layer                               `json:"layers"`
	Layout  map[string]map[string]any             `json:"layout"`
	Cursor  string                                `json:"cursor"`
	Camera  *CameraCommand                        `json:"camera,omitempty"`
}

// Canvas is a Surface held on the server. The browser reports renderer events through
// Dispatch and polls State to apply sources, layers, layout overrides, cursor and camera.
//
// Constraint: not safe for concurrent use; the dashboard event loop is its only caller.
type Canvas struct {
	loaded      bool
	styleLoaded bool
	styleLayers []LayerRef
	layout      map[string]map[string]any
	sources     map[string]*geojson.FeatureCollection
	layers      []Layer
	bindings    []binding
	cursor      string
	camera      *CameraCommand
	seq         int64
	version     int64
}

// NewCanvas returns a surface that is not loaded until the browser reports a load event.
func NewCanvas() *Canvas {
	return &Canvas{
		layout:  map[string]map[string]any{},
		sources: map[string]*geojson.FeatureCollection{},
	}
}

func (c *Canvas) Loaded() bool      { return c.loaded }
func (c *Canvas) StyleLoaded() bool { return c.styleLoaded }

func (c *Canvas) HasSource(id string) bool {
	_, ok := c.sources[id]
	return ok
}

func (c *Canvas) AddSource(id string, data *geojson.FeatureCollection) error {
	if !c.styleLoaded {
		return ErrStyleNotLoaded
	}
	if c.HasSource(id) {
		return fmt.Errorf("add source %q: %w", id, ErrSourceExists)
	}
	c.sources[id] = data
	c.version++
	return nil
}

func (c *Canvas) SetSourceData(id string, data *geojson.FeatureCollection) error {
	if !c.HasSource(id) {
		return fmt.Errorf("set data on %q: %w", id, ErrNoSource)
	}
	c.sources[id] = data
	c.version++
	return nil
}

func (c *Canvas) RemoveSource(id string) error {
	if !c.styleLoaded {
		return ErrStyleNotLoaded
	}
	if !c.HasSource(id) {
		return fmt.Errorf("remove source %q: %w", id, ErrNoSource)
	}
	for _, l := range c.layers {
		if l.Source == id {
			return fmt.Errorf("remove source %q: %w (%s)", id, ErrSourceInUse, l.ID)
		}
	}
	delete(c.sources, id)
	c.version++
	return nil
}

func (c *Canvas) HasLayer(id string) bool { return c.layerIndex(id) >= 0 }

func (c *Canvas) layerIndex(id string) int {
	for i, l := range c.layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (c *Canvas) AddLayer(l Layer) error {
	if !c.styleLoaded {
		return ErrStyleNotLoaded
	}
	if c.HasLayer(l.ID) {
		return fmt.Errorf("add layer %q: %w", l.ID, ErrLayerExists)
	}
	if !c.HasSource(l.Source) {
		return fmt.Errorf("add layer %q: %w (%s)", l.ID, ErrNoSource, l.Source)
	}
	c.layers = append(c.layers, l)
	c.version++
	return nil
}

func (c *Canvas) RemoveLayer(id string) error {
	if !c.styleLoaded {
		return ErrStyleNotLoaded
	}
	i := c.layerIndex(id)
	if i < 0 {
		return fmt.Errorf("remove layer %q: %w", id, ErrNoLayer)
	}
	c.layers = append(c.layers[:i], c.layers[i+1:]...)
	c.version++
	return nil
}

func (c *Canvas) StyleLayers() []LayerRef {
	out := make([]LayerRef, len(c.styleLayers))
	copy(out, c.styleLayers)
	return out
}

func (c *Canvas) SetLayoutProperty(layerID, name string, value any) error {
	known := c.HasLayer(layerID)
	for _, l := range c.styleLayers {
		if l.ID == layerID {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("layout %s on %q: %w", name, layerID, ErrNoLayer)
	}
	props, ok := c.layout[layerID]
	if !ok {
		props = map[string]any{}
		c.layout[layerID] = props
	}
	props[name] = value
	c.version++
	return nil
}

func (c *Canvas) On(t EventType, layerID string, h Handler) Subscription {
	sub := Subscription{ID: uuid.NewString(), Type: t, LayerID: layerID}
	c.bindings = append(c.bindings, binding{sub: sub, h: h})
	return sub
}

func (c *Canvas) Off(sub Subscription) {
	for i, b := range c.bindings {
		if b.sub.ID == sub.ID {
			c.bindings = append(c.bindings[:i], c.bindings[i+1:]...)
			return
		}
	}
}

// Handlers is the number of live subscriptions.
func (c *Canvas) Handlers() int { return len(c.bindings) }

func (c *Canvas) FlyTo(cam Camera) {
	c.seq++
	c.camera = &CameraCommand{Seq: c.seq, Camera: cam}
	c.version++
}

func (c *Canvas) SetCursor(cursor string) {
	if c.cursor == cursor {
		return
	}
	c.cursor = cursor
	c.version++
}

// Dispatch applies a renderer event and runs the matching handlers. It returns how many
// handlers ran. A style load replaces the basemap layer list and, like the renderer, drops
// every source, layer and layout override added on top of the previous style.
func (c *Canvas) Dispatch(e Event) int {
	switch e.Type {
	case EventLoad, EventStyleLoad:
		c.loaded = true
		c.styleLoaded = true
		c.styleLayers = append([]LayerRef(nil), e.StyleLayers...)
		c.layout = map[string]map[string]any{}
		c.sources = map[string]*geojson.FeatureCollection{}
		c.layers = nil
		c.version++
	}
	// Handlers may subscribe or unsubscribe while running; iterate over a copy.
	matched := make([]binding, 0, len(c.bindings))
	for _, b := range c.bindings {
		if b.sub.Type == e.Type && b.sub.LayerID == e.LayerID {
			matched = append(matched, b)
		}
	}
	for _, b := range matched {
		b.h(e)
	}
	logger.L().Debug("map_event", "type", e.Type, "layer", e.LayerID, "features", len(e.Features), "handlers", len(matched))
	return len(matched)
}

// Reset models the map being destroyed: the style goes away and so does every subscription.
func (c *Canvas) Reset() {
	c.loaded = false
	c.styleLoaded = false
	c.styleLayers = nil
	c.layout = map[string]map[string]any{}
	c.sources = map[string]*geojson.FeatureCollection{}
	c.layers = nil
	c.bindings = nil
	c.cursor = ""
	c.camera = nil
	c.version++
}

// State copies the registry for serialisation.
func (c *Canvas) State() CanvasState {
	st := CanvasState{
		Loaded:  c.loaded,
		Version: c.version,
		Sources: make(map[string]*geojson.FeatureCollection, len(c.sources)),
		Layers:  append([]Layer{}, c.layers...),
		Layout:  make(map[string]map[string]any, len(c.layout)),
		Cursor:  c.cursor,
	}
	for k, v := range c.sources {
		st.Sources[k] = v
	}
	for k, v := range c.layout {
		props := make(map[string]any, len(v))
		for pk, pv := range v {
			props[pk] = pv
		}
		st.Layout[k] = props
	}
	if c.camera != nil {
		cam := *c.camera
		st.Camera = &cam
	}
	return st
}
