package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecordsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pagsusi_records_loaded",
		Help: "Number of precinct anomaly records in the active dataset",
	})
	GroupsRendered = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pagsusi_groups_rendered",
		Help: "Number of coordinate groups in the rendered point layer",
	})
	DatasetLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pagsusi_dataset_loads_total",
		Help: "Dataset loads by source and outcome",
	}, []string{"source", "status"})
	MapEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pagsusi_map_events_total",
		Help: "Browser map events dispatched to the surface",
	}, []string{"type"})
	SelectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pagsusi_selections_total",
		Help: "Group selections by origin (click, list, dismiss)",
	}, []string{"origin"})
	LayerRebuildsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pagsusi_layer_rebuilds_total",
		Help: "Times the anomaly source and layers were added to the map surface",
	})
	FlyToTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pagsusi_flyto_total",
		Help: "Camera fly-to commands issued",
	})
	GeoJSONCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pagsusi_geojson_cache_hits_total",
		Help: "GeoJSON responses served from redis",
	})
	GeoJSONCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pagsusi_geojson_cache_misses_total",
		Help: "GeoJSON responses built from the active groups",
	})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pagsusi_request_duration_ms",
		Help:    "API request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(RecordsLoaded)
	prometheus.MustRegister(GroupsRendered)
	prometheus.MustRegister(DatasetLoadsTotal)
	prometheus.MustRegister(MapEventsTotal)
	prometheus.MustRegister(SelectionsTotal)
	prometheus.MustRegister(LayerRebuildsTotal)
	prometheus.MustRegister(FlyToTotal)
	prometheus.MustRegister(GeoJSONCacheHitsTotal)
	prometheus.MustRegister(GeoJSONCacheMissesTotal)
	prometheus.MustRegister(RequestDurationMs)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
