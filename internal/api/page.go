package api

import (
	"net/http"
	"strconv"

	"pagsusi/internal/dashboard"
	"pagsusi/internal/logger"
	"pagsusi/internal/panel"
	"pagsusi/internal/version"
)

// PageOptions is what the page needs beyond dashboard state.
type PageOptions struct {
	Title    string
	Subtitle string
	APIBase  string
	StyleURL string
}

// PageHandler serves the dashboard document at "/". A ?precinct=<id> query is handed to the
// browser, which selects it once the map has loaded.
func PageHandler(d *dashboard.Dashboard, opts PageOptions) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		v, err := d.View(r.Context())
		if err != nil {
			writeLoopError(w, r, err)
			return
		}
		precinct := 0
		if s := r.URL.Query().Get("precinct"); s != "" {
			if id, err := strconv.Atoi(s); err == nil {
				if _, ok := v.Dataset.Find(id); ok {
					precinct = id
				}
			}
		}
		writeHTMLHeaders(w)
		err = panel.RenderPage(w, panel.Page{
			Title:    opts.Title,
			Subtitle: opts.Subtitle,
			APIBase:  opts.APIBase,
			StyleURL: opts.StyleURL,
			Camera:   v.Camera,
			Precinct: precinct,
			List:     panel.NewList(v.Dataset.Records(), v.Selection.MemberIDs),
			Popup:    v.Popup(),
		})
		if err != nil {
			logger.L().Error("render_page_error", "err", err)
		}
	})
}

// StaticHandler serves the browser glue.
func StaticHandler() http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.FS(panel.Static())))
}

// ConfigJS exposes the API base and build to scripts that do not read the page bootstrap.
func ConfigJS(apiBase string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write([]byte("window.__API_BASE__=" + strconv.Quote(apiBase) + "\n"))
		_, _ = w.Write([]byte("window.__COMMIT_SHA__=" + strconv.Quote(version.Commit) + "\n"))
	})
}

