// Package mapview drives the interactive map: it turns coordinate groups into a point layer,
// answers clicks and hovers on that layer, and moves the camera to externally selected records.
//
// The map itself is reached only through Surface. Canvas is the server-side Surface that
// mirrors the browser map; tests may supply their own.
package mapview

import (
	"errors"

	"github.com/paulmach/orb/geojson"
)

// EventType names the renderer events the controller subscribes to.
type EventType string

const (
	EventLoad       EventType = "load"
	EventStyleLoad  EventType = "style.load"
	EventClick      EventType = "click"
	EventMouseEnter EventType = "mouseenter"
	EventMouseLeave EventType = "mouseleave"
)

// Known reports whether t is an event the surface understands.
func (t EventType) Known() bool {
	switch t {
	case EventLoad, EventStyleLoad, EventClick, EventMouseEnter, EventMouseLeave:
		return true
	}
	return false
}

// LayerRef is a style layer as enumerated from the loaded basemap.
type LayerRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Feature is a hit-tested feature; the renderer does the hit-testing.
type Feature struct {
	Properties map[string]any `json:"properties"`
}

// Event is one renderer notification. StyleLayers is set for load and style.load.
type Event struct {
	Type        EventType  `json:"type"`
	LayerID     string     `json:"layer,omitempty"`
	Features    []Feature  `json:"features,omitempty"`
	StyleLayers []LayerRef `json:"styleLayers,omitempty"`
	// Client identifies the browser map instance that sent the event.
	Client string `json:"client,omitempty"`
}

// Handler receives dispatched events.
type Handler func(Event)

// Subscription is the handle returned by On; pass it to Off to deregister.
type Subscription struct {
	ID      string    `json:"id"`
	Type    EventType `json:"type"`
	LayerID string    `json:"layer,omitempty"`
}

// Camera is a fly-to target. Center is [lng, lat].
type Camera struct {
	Center     [2]float64 `json:"center"`
	Zoom       float64    `json:"zoom"`
	DurationMs int64      `json:"duration"`
}

// Surface is the map capability surface. Only the Controller mutates its source and layer
// registry.
type Surface interface {
	// Loaded reports the map has finished its first style load.
	Loaded() bool
	// StyleLoaded reports a style is present; false while the map is being torn down.
	StyleLoaded() bool

	HasSource(id string) bool
	AddSource(id string, data *geojson.FeatureCollection) error
	SetSourceData(id string, data *geojson.FeatureCollection) error
	RemoveSource(id string) error

	HasLayer(id string) bool
	AddLayer(l Layer) error
	RemoveLayer(id string) error

	// StyleLayers enumerates the layers of the loaded basemap style.
	StyleLayers() []LayerRef
	SetLayoutProperty(layerID, name string, value any) error

	// On registers h for events of type t; layerID "" matches map-wide events.
	On(t EventType, layerID string, h Handler) Subscription
	Off(sub Subscription)

	FlyTo(c Camera)
	SetCursor(cursor string)
}

var (
	ErrStyleNotLoaded = errors.New("map style not loaded")
	ErrSourceExists   = errors.New("source already exists")
	ErrNoSource       = errors.New("source does not exist")
	ErrSourceInUse    = errors.New("source is used by a layer")
	ErrLayerExists    = errors.New("layer already exists")
	ErrNoLayer        = errors.New("layer does not exist")
)
