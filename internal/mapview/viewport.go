package mapview

import (
	"math"

	"github.com/golang/geo/s2"

	"pagsusi/internal/anomaly"
)

// DefaultCamera frames the Philippine archipelago.
var DefaultCamera = Camera{Center: [2]float64{121.7740, 12.8797}, Zoom: 4.75}

const (
	minFitZoom = 2.0
	maxFitZoom = FlyToZoom
)

// InitialCamera is DefaultCamera unless fit is set, in which case the camera frames the
// bounding rectangle of the records. Invalid coordinates are ignored.
func InitialCamera(records []anomaly.Record, fit bool) Camera {
	if !fit {
		return DefaultCamera
	}
	rect := s2.EmptyRect()
	for _, r := range records {
		ll := s2.LatLngFromDegrees(r.Lat, r.Lng)
		if !ll.IsValid() {
			continue
		}
		rect = rect.AddPoint(ll)
	}
	if rect.IsEmpty() {
		return DefaultCamera
	}
	center := rect.Center()
	size := rect.Size()
	span := math.Max(size.Lng.Degrees(), size.Lat.Degrees())
	zoom := maxFitZoom
	if span > 0 {
		// one world width is 360 degrees at zoom 0; keep half a level of margin
		zoom = math.Log2(360/span) - 0.5
	}
	zoom = math.Max(minFitZoom, math.Min(maxFitZoom, zoom))
	return Camera{
		Center: [2]float64{center.Lng.Degrees(), center.Lat.Degrees()},
		Zoom:   math.Round(zoom*100) / 100,
	}
}
