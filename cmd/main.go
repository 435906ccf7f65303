// Service entry: reads configuration, loads the dataset, starts the dashboard loop and serves
// the page and API. Routes live in internal/api.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pagsusi/internal/anomaly"
	"pagsusi/internal/api"
	"pagsusi/internal/config"
	"pagsusi/internal/dashboard"
	"pagsusi/internal/logger"
	"pagsusi/internal/metrics"
	"pagsusi/internal/middleware"
	"pagsusi/internal/migrate"
	"pagsusi/internal/store"
	"pagsusi/internal/utils"
)

func main() {
	config.LoadDotEnv()
	l := logger.Setup()
	l.Debug("log_init_ok")
	cfg := config.Load()
	l.Debug("config_loaded", "api_base", cfg.APIBase, "source", cfg.RecordsSource, "addr", cfg.Addr)

	var st *store.Store
	if cfg.RecordsSource == config.SourcePostgres {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		l.Info("db_open_ok")
		if err := db.Ping(); err != nil {
			l.Error("db_ping_error", "err", err)
		} else {
			l.Info("db_ping_ok")
		}
		if err := migrate.EnsureSchema(db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		st = store.AttachDB(db)
	}
	load := datasetLoader(cfg, st)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, err := load(ctx)
	if err != nil {
		l.Error("dataset_load_error", "source", cfg.RecordsSource, "err", err)
		os.Exit(1)
	}

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}

	d := dashboard.New(ds, dashboard.Options{FitData: cfg.FitData})
	go func() {
		if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			l.Error("dashboard_loop_error", "err", err)
		}
	}()

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(d, rc, api.Options{
		GeoJSONTTL: cfg.GeoJSONCacheTTL,
		AdminToken: cfg.AdminToken,
		Reload:     load,
	})
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, apiMux))
	mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())
	mux.Handle("/static/", api.StaticHandler())
	mux.Handle("/config.js", api.ConfigJS(cfg.APIBase))
	mux.Handle("/", api.PageHandler(d, api.PageOptions{
		Title:    cfg.Title,
		Subtitle: cfg.Subtitle,
		APIBase:  cfg.APIBase,
		StyleURL: cfg.StyleURL,
	}))

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	if cfg.TLSEnable {
		if err := utils.EnsureSelfSignedCert(cfg.TLSCertPath, cfg.TLSKeyPath, "pagsusi.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		if cfg.TLSRedirect {
			go serveRedirect(l, cfg.TLSRedirectAddr, cfg.Addr)
		}
		l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLSCertPath)
		if err := s.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server_error", "err", err)
		}
		return
	}
	l.Info("listening", "addr", cfg.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
	}
}

// datasetLoader reads from st when the database source is configured, otherwise from the
// records file. It serves both startup and the admin reload endpoint.
func datasetLoader(cfg config.Config, st *store.Store) api.ReloadFunc {
	return func(ctx context.Context) (*anomaly.Dataset, error) {
		var (
			ds  *anomaly.Dataset
			err error
		)
		if st != nil {
			ds, err = st.LoadDataset(ctx)
		} else {
			ds, err = anomaly.LoadFile(cfg.RecordsFile)
		}
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.DatasetLoadsTotal.WithLabelValues(cfg.RecordsSource, status).Inc()
		return ds, err
	}
}

// serveRedirect answers plain HTTP on redirAddr with a redirect to the HTTPS port of addr.
func serveRedirect(l *slog.Logger, redirAddr, addr string) {
	httpRedir := http.NewServeMux()
	httpRedir.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		httpsPort := strings.TrimPrefix(addr, ":")
		baseHost := host
		if i := strings.LastIndex(host, ":"); i != -1 {
			baseHost = host[:i]
		}
		targetHost := baseHost
		if httpsPort != "" {
			targetHost = baseHost + ":" + httpsPort
		}
		target := "https://" + targetHost + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		l.Debug("http_redirect", "from", r.Host, "to", target)
	})
	l.Info("http_redirect_listening", "addr", redirAddr, "to", "https"+addr)
	_ = http.ListenAndServe(redirAddr, logger.AccessMiddleware(l)(httpRedir))
}
