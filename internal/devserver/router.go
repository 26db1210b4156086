// Package devserver is an in-memory stand-in for the EcoTrails admin API,
// used for local development of the console and as the contract fake in
// tests.
package devserver

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/harrylevesque/ecoadmin/internal/metrics"
	"github.com/harrylevesque/ecoadmin/internal/utils"
)

// APIPrefix matches the path prefix of the real function apps.
const APIPrefix = "/api/api"

// Server holds the dev API state.
type Server struct {
	store    *Store
	accounts *Accounts
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records every request and serves /metrics.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a server over store and accounts.
func New(store *Store, accounts *Accounts, opts ...Option) *Server {
	s := &Server{
		store:    store,
		accounts: accounts,
		logger:   utils.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.observe)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	api := r.PathPrefix(APIPrefix).Subrouter()
	api.HandleFunc("/user/login", s.LoginHandler).Methods("POST")
	api.HandleFunc("/locations", s.PublicLocationsHandler).Methods("GET")
	api.HandleFunc("/admin/analytics", s.AnalyticsHandler).Methods("GET")
	api.HandleFunc("/admin/{resource}", s.ListHandler).Methods("GET")
	api.HandleFunc("/admin/{resource}", s.CreateHandler).Methods("POST")
	api.HandleFunc("/admin/{resource}/{id}", s.GetHandler).Methods("GET")
	api.HandleFunc("/admin/{resource}/{id}", s.UpdateHandler).Methods("PUT")
	api.HandleFunc("/admin/{resource}/{id}", s.DeleteHandler).Methods("DELETE")
	api.HandleFunc("/admin/{resource}/{id}/status", s.StatusHandler).Methods("PUT")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "route not found"})
	})
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// observe logs and counts each matched request by route template.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.metrics.ObserveServer(route, r.Method, rec.status)
		s.logger.Debug("handled request", "method", r.Method, "route", route, "status", rec.status)
	})
}
