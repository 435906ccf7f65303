// Package api exposes the dashboard over HTTP. BuildRoutes returns its own mux so the entry
// point can mount it under any prefix.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"pagsusi/internal/anomaly"
	"pagsusi/internal/dashboard"
	"pagsusi/internal/logger"
	"pagsusi/internal/mapview"
	"pagsusi/internal/metrics"
	"pagsusi/internal/panel"
)

const maxEventBytes = 1 << 20

// ReloadFunc fetches a fresh dataset from the configured source.
type ReloadFunc func(ctx context.Context) (*anomaly.Dataset, error)

type Options struct {
	GeoJSONTTL time.Duration
	// AdminToken guards /reload. Reload is refused while it is empty.
	AdminToken string
	Reload     ReloadFunc
}

func BuildRoutes(d *dashboard.Dashboard, rc *redis.Client, opts Options) *http.ServeMux {
	h := &handlers{d: d, rc: rc, opts: opts, qr: newLRU(qrCacheCap, qrCacheTTL)}
	apiMux := http.NewServeMux()
	route := func(pattern, name string, fn func(http.ResponseWriter, *http.Request)) {
		apiMux.HandleFunc(pattern, observe(name, fn))
	}
	route("GET /records", "records", h.records)
	route("GET /records/{id}", "record", h.record)
	route("GET /records/{id}/qr.png", "record_qr", h.recordQR)
	route("GET /groups", "groups", h.groups)
	route("GET /geojson", "geojson", h.geojson)
	route("GET /map/state", "map_state", h.mapState)
	route("POST /map/events", "map_events", h.mapEvents)
	route("DELETE /map", "map_reset", h.mapReset)
	route("POST /select/{id}", "select", h.selectRecord)
	route("GET /selection", "selection", h.selection)
	route("POST /popup/detail/{id}", "popup_detail", h.showDetail)
	route("DELETE /popup/detail", "popup_detail_hide", h.hideDetail)
	route("POST /popup/close", "popup_close", h.closePopup)
	route("GET /fragments/list", "fragment_list", h.fragmentList)
	route("GET /fragments/popup", "fragment_popup", h.fragmentPopup)
	route("POST /reload", "reload", h.reload)
	return apiMux
}

type handlers struct {
	d    *dashboard.Dashboard
	rc   *redis.Client
	opts Options
	qr   *lru
}

func observe(route string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()
		fn(w, r)
		metrics.RequestDurationMs.WithLabelValues(route).Observe(float64(time.Since(t0).Milliseconds()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeLoopError maps a failed hand-off to the event loop onto a status code.
func writeLoopError(w http.ResponseWriter, r *http.Request, err error) {
	logger.L().Warn("dashboard_unavailable", "path", r.URL.Path, "err", err)
	writeError(w, http.StatusServiceUnavailable, "dashboard unavailable")
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) (dashboard.View, bool) {
	v, err := h.d.View(r.Context())
	if err != nil {
		writeLoopError(w, r, err)
		return dashboard.View{}, false
	}
	return v, true
}

func (h *handlers) records(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	recs := v.Dataset.Records()
	if recs == nil {
		recs = []anomaly.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *handlers) record(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	rec, found := v.Dataset.Find(id)
	if !found {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handlers) recordQR(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	if _, found := v.Dataset.Find(id); !found {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	png, err := qrPNG(h.qr, deepLink(r, id))
	if err != nil {
		logger.L().Error("qr_encode_error", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "qr encode failed")
		return
	}
	writeQR(w, png)
}

func (h *handlers) groups(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summarize(v.Groups))
}

func (h *handlers) geojson(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	b, err := encodeGeoJSON(r.Context(), h.rc, h.opts.GeoJSONTTL, v.Dataset.Digest(), v.Groups)
	if err != nil {
		logger.L().Error("geojson_encode_error", "err", err)
		writeError(w, http.StatusInternalServerError, "geojson encode failed")
		return
	}
	w.Header().Set("content-type", "application/geo+json")
	w.Header().Set("cache-control", "no-store")
	_, _ = w.Write(b)
}

func (h *handlers) mapState(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v.Map)
}

func (h *handlers) mapEvents(w http.ResponseWriter, r *http.Request) {
	var e mapview.Event
	if err := json.NewDecoder(io.LimitReader(r.Body, maxEventBytes)).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "invalid event")
		return
	}
	n, err := h.d.MapEvent(r.Context(), e)
	switch {
	case errors.Is(err, dashboard.ErrUnknownEvent):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeLoopError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, eventResult{Handlers: n})
	}
}

func (h *handlers) mapReset(w http.ResponseWriter, r *http.Request) {
	reset, err := h.d.ResetMap(r.Context(), r.URL.Query().Get("client"))
	if err != nil {
		writeLoopError(w, r, err)
		return
	}
	if !reset {
		writeError(w, http.StatusConflict, "map owned by another client")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respond answers with the selection after an action that may have been a no-op.
func (h *handlers) respond(w http.ResponseWriter, r *http.Request, applied bool) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, actionResult{Applied: applied, Selection: v.Selection})
}

func (h *handlers) selectRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	applied, err := h.d.SelectRecord(r.Context(), id)
	switch {
	case errors.Is(err, dashboard.ErrUnknownRecord):
		writeError(w, http.StatusNotFound, "record not found")
	case err != nil:
		writeLoopError(w, r, err)
	default:
		h.respond(w, r, applied)
	}
}

func (h *handlers) selection(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v.Selection)
}

func (h *handlers) showDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	if _, found := v.Dataset.Find(id); !found {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	applied, err := h.d.ShowDetail(r.Context(), id)
	if err != nil {
		writeLoopError(w, r, err)
		return
	}
	h.respond(w, r, applied)
}

func (h *handlers) hideDetail(w http.ResponseWriter, r *http.Request) {
	if err := h.d.HideDetail(r.Context()); err != nil {
		writeLoopError(w, r, err)
		return
	}
	h.respond(w, r, true)
}

func (h *handlers) closePopup(w http.ResponseWriter, r *http.Request) {
	if err := h.d.ClosePopup(r.Context()); err != nil {
		writeLoopError(w, r, err)
		return
	}
	h.respond(w, r, true)
}

func writeHTMLHeaders(w http.ResponseWriter) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
}

func (h *handlers) fragmentList(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeHTMLHeaders(w)
	if err := panel.RenderList(w, v.Dataset.Records(), v.Selection.MemberIDs); err != nil {
		logger.L().Error("render_list_error", "err", err)
	}
}

func (h *handlers) fragmentPopup(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeHTMLHeaders(w)
	if err := panel.RenderPopup(w, v.Popup()); err != nil {
		logger.L().Error("render_popup_error", "err", err)
	}
}

func (h *handlers) reload(w http.ResponseWriter, r *http.Request) {
	t := r.Header.Get("x-admin-token")
	if h.opts.AdminToken == "" || t != h.opts.AdminToken {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if h.opts.Reload == nil {
		writeError(w, http.StatusNotImplemented, "reload not configured")
		return
	}
	ds, err := h.opts.Reload(r.Context())
	if err != nil {
		logger.L().Error("dataset_reload_error", "err", err)
		writeError(w, http.StatusInternalServerError, "reload failed")
		return
	}
	if err := h.d.Load(r.Context(), ds); err != nil {
		writeLoopError(w, r, err)
		return
	}
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	logger.L().Info("dataset_reloaded", "source", ds.Source(), "digest", ds.Digest(), "records", ds.Len())
	writeJSON(w, http.StatusOK, reloadResult{
		Source:  v.Dataset.Source(),
		Digest:  v.Dataset.Digest(),
		Records: v.Dataset.Len(),
		Groups:  len(v.Groups),
	})
}
