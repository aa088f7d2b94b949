// Package server is a preview server for generated catalogs. It applies
// the series routing rules and the filter engine per request, so the
// gallery state layer can be exercised without a browser.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AnyUserName/wallgen/internal/filter"
	"github.com/AnyUserName/wallgen/internal/logging"
	"github.com/AnyUserName/wallgen/internal/metrics"
	"github.com/AnyUserName/wallgen/internal/selection"
	"github.com/AnyUserName/wallgen/internal/series"
)

// Paging defaults of the wallpapers endpoint.
const (
	DefaultPerPage = 30
	MaxPerPage     = 200
)

// PopularityStore records events and aggregates them for popularity
// sorts.
type PopularityStore interface {
	Record(ctx context.Context, seriesID, key, kind string) error
	Snapshot(ctx context.Context, seriesID string) (filter.Popularity, error)
}

// Config configures a Server.
type Config struct {
	Table   *series.Table
	DataDir string
	// Popularity may be nil; popularity sorts then keep catalog order
	// and event endpoints answer 503.
	Popularity PopularityStore
	Guard      selection.GuardConfig
}

// Server serves catalogs and series routes.
type Server struct {
	table      *series.Table
	dataDir    string
	catalogs   *Catalogs
	popularity PopularityStore
	visitors   *visitors
}

// New creates a Server.
func New(cfg Config) *Server {
	if cfg.Table == nil {
		cfg.Table = series.Default()
	}
	return &Server{
		table:      cfg.Table,
		dataDir:    cfg.DataDir,
		catalogs:   NewCatalogs(cfg.DataDir),
		popularity: cfg.Popularity,
		visitors:   newVisitors(cfg.Guard),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(metrics.Middleware)

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/healthz", s.health).Methods("GET")

	r.PathPrefix("/data/").Handler(http.StripPrefix("/data/", http.FileServer(http.Dir(s.dataDir)))).Methods("GET", "HEAD")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/series", s.listSeries).Methods("GET")
	api.HandleFunc("/series/{series}/wallpapers", s.listWallpapers).Methods("GET")
	api.HandleFunc("/series/{series}/categories", s.listCategories).Methods("GET")
	api.HandleFunc("/series/{series}/wallpapers/{id}/{kind:view|download}", s.recordEvent).Methods("POST")

	// Series routes
	r.HandleFunc("/", s.navigate).Methods("GET")
	r.HandleFunc("/{series}", s.navigate).Methods("GET")

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logging.Info("serving %s on %s", s.dataDir, addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
