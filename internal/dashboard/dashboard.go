// Package dashboard wires the record store, grouping, selection and map controller together
// behind a single goroutine so browser requests can never interleave their mutations.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"pagsusi/internal/anomaly"
	"pagsusi/internal/grouping"
	"pagsusi/internal/logger"
	"pagsusi/internal/mapview"
	"pagsusi/internal/metrics"
	"pagsusi/internal/selection"
)

var (
	ErrStopped       = errors.New("dashboard stopped")
	ErrUnknownRecord = errors.New("unknown record")
	ErrUnknownEvent  = errors.New("unknown map event")
)

// Options tunes the initial view.
type Options struct {
	// FitData frames the loaded records instead of the default camera.
	FitData bool
}

// Dashboard is the UI state of one map session. Everything after quit is owned by the Run
// goroutine.
//
// Constraint: callers reach that state only through Do; one map session per process.
type Dashboard struct {
	opts Options
	reqs chan func()
	quit chan struct{}

	dataset *anomaly.Dataset
	groups  []grouping.Group
	sel     selection.State
	canvas  *mapview.Canvas
	ctrl    *mapview.Controller
	camera  mapview.Camera
	// renderer is the client that sent the last load event.
	renderer string
}

// New builds a dashboard over ds. Nothing is processed until Run is started.
func New(ds *anomaly.Dataset, opts Options) *Dashboard {
	d := &Dashboard{
		opts:   opts,
		reqs:   make(chan func()),
		quit:   make(chan struct{}),
		canvas: mapview.NewCanvas(),
	}
	d.ctrl = mapview.NewController(d.canvas, d.sel.SelectGroup)
	d.load(ds)
	return d
}

// Run processes requests until ctx is cancelled. It must be called exactly once.
func (d *Dashboard) Run(ctx context.Context) error {
	defer close(d.quit)
	logger.L().Info("dashboard_loop_start", "records", d.dataset.Len(), "groups", len(d.groups))
	for {
		select {
		case fn := <-d.reqs:
			fn()
		case <-ctx.Done():
			logger.L().Info("dashboard_loop_stop")
			return ctx.Err()
		}
	}
}

// Do runs fn on the event loop and waits for it to finish. ctx only bounds the wait for the
// loop to accept fn; once accepted, fn always completes before Do returns so callers may read
// whatever fn wrote.
func (d *Dashboard) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-d.quit:
		return ErrStopped
	case d.reqs <- func() { defer close(done); fn() }:
	}
	<-done
	return nil
}

// Load swaps in a new dataset. The map layer is updated in place. An open selection survives
// only if the same precincts still share a coordinate.
func (d *Dashboard) Load(ctx context.Context, ds *anomaly.Dataset) error {
	return d.Do(ctx, func() { d.load(ds) })
}

func (d *Dashboard) load(ds *anomaly.Dataset) {
	prev, open := d.sel.Group()
	detail, hasDetail := d.sel.DetailID()

	d.dataset = ds
	d.groups = grouping.Build(ds.Records())
	d.camera = mapview.InitialCamera(ds.Records(), d.opts.FitData)
	d.ctrl.SetGroups(d.groups)
	metrics.RecordsLoaded.Set(float64(ds.Len()))

	if open {
		idx := grouping.IndexOf(d.groups, prev.First().ID)
		if idx >= 0 && slices.Equal(d.groups[idx].IDs(), prev.IDs()) {
			d.sel.SelectGroup(d.groups[idx], idx)
			if hasDetail {
				d.sel.ShowDetail(detail)
			}
		} else {
			d.sel.Dismiss()
		}
	}
	logger.L().Info("dataset_active", "source", ds.Source(), "digest", ds.Digest(), "loaded_at", ds.LoadedAt(), "records", ds.Len(), "groups", len(d.groups), "selection_kept", d.sel.Index() >= 0)
}

// MapEvent feeds a renderer event to the canvas and returns how many handlers ran. A load
// event means a fresh renderer, so the layers are torn down and mounted again on it.
func (d *Dashboard) MapEvent(ctx context.Context, e mapview.Event) (int, error) {
	if !e.Type.Known() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
	var n int
	err := d.Do(ctx, func() {
		metrics.MapEventsTotal.WithLabelValues(string(e.Type)).Inc()
		if e.Type != mapview.EventLoad {
			n = d.canvas.Dispatch(e)
			return
		}
		d.ctrl.Unmount()
		d.renderer = e.Client
		n = d.canvas.Dispatch(e)
		d.ctrl.Mount(d.groups)
	})
	return n, err
}

// SelectRecord is the external selection path used by the list and deep links. It returns
// false when the map is not ready or the record is in no group.
func (d *Dashboard) SelectRecord(ctx context.Context, id int) (bool, error) {
	var ok, known bool
	err := d.Do(ctx, func() {
		var rec anomaly.Record
		rec, known = d.dataset.Find(id)
		if !known {
			return
		}
		ok = d.ctrl.FocusRecord(rec)
		if ok {
			metrics.SelectionsTotal.WithLabelValues("list").Inc()
		}
	})
	if err != nil {
		return false, err
	}
	if !known {
		return false, fmt.Errorf("%w: %d", ErrUnknownRecord, id)
	}
	return ok, nil
}

// ShowDetail switches member id of the open group to the detail view.
func (d *Dashboard) ShowDetail(ctx context.Context, id int) (bool, error) {
	var ok bool
	err := d.Do(ctx, func() { ok = d.sel.ShowDetail(id) })
	return ok, err
}

// HideDetail returns the popup to the summary view.
func (d *Dashboard) HideDetail(ctx context.Context) error {
	return d.Do(ctx, d.sel.HideDetail)
}

// ClosePopup clears the selection.
func (d *Dashboard) ClosePopup(ctx context.Context) error {
	return d.Do(ctx, func() {
		if d.sel.Index() >= 0 {
			metrics.SelectionsTotal.WithLabelValues("dismiss").Inc()
		}
		d.sel.Dismiss()
	})
}

// ResetMap models the browser map being destroyed: the style goes first, then the
// controller lets go of its handlers without touching the dead surface. A non-empty client
// only resets the map it last loaded; a tab closing after another tab took over is ignored.
func (d *Dashboard) ResetMap(ctx context.Context, client string) (bool, error) {
	var reset bool
	err := d.Do(ctx, func() {
		if client != "" && client != d.renderer {
			logger.L().Debug("map_reset_skipped", "client", client, "renderer", d.renderer)
			return
		}
		d.canvas.Reset()
		d.ctrl.Unmount()
		d.renderer = ""
		reset = true
	})
	return reset, err
}
