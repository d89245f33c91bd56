package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/fews-explorer/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Explorer runs FEWS queries on behalf of API clients.
type Explorer interface {
	sharedobs.ReadinessChecker
	Connect(ctx context.Context, apiURL string) pipeline.ConnectResult
	Locations(ctx context.Context, apiURL string) pipeline.LocationsResult
	Parameters(ctx context.Context, apiURL string) pipeline.ParametersResult
	Timeseries(ctx context.Context, req pipeline.TimeseriesRequest) pipeline.TimeseriesResult
}

// Server exposes the explorer API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	explorer   Explorer
	logger     *slog.Logger
}

// defaultWriteTimeout applies when NewServer is given no write timeout.
const defaultWriteTimeout = 2 * time.Minute

// NewServer creates an HTTP server. corsOrigins lists the browser origins
// allowed to call the API. writeTimeout must cover the slowest query; zero
// selects a two minute default.
func NewServer(addr string, explorer Explorer, corsOrigins []string, writeTimeout time.Duration, logger *slog.Logger) *Server {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	r := mux.NewRouter()

	s := &Server{
		explorer: explorer,
		logger:   logger,
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/connect", s.handleConnect).Methods(http.MethodGet)
	api.HandleFunc("/locations", s.handleLocations).Methods(http.MethodGet)
	api.HandleFunc("/parameters", s.handleParameters).Methods(http.MethodGet)
	api.HandleFunc("/timeseries", s.handleTimeseries).Methods(http.MethodGet)

	r.HandleFunc("/healthz", sharedobs.LivenessHandler()).Methods(http.MethodGet)
	r.HandleFunc("/readyz", sharedobs.ReadinessHandler(explorer)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins(corsOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(cors(r), "fews-explorer"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// WriteTimeout reports the configured response write deadline.
func (s *Server) WriteTimeout() time.Duration {
	return s.httpServer.WriteTimeout
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.explorer.Connect(r.Context(), r.URL.Query().Get("url")))
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.explorer.Locations(r.Context(), r.URL.Query().Get("url")))
}

func (s *Server) handleParameters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.explorer.Parameters(r.Context(), r.URL.Query().Get("url")))
}

// handleTimeseries reads repeated locationIds and parameterIds keys; values
// are never split on commas.
func (s *Server) handleTimeseries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := pipeline.TimeseriesRequest{
		APIURL:       q.Get("url"),
		LocationIDs:  q["locationIds"],
		ParameterIDs: q["parameterIds"],
		StartDate:    q.Get("start"),
		EndDate:      q.Get("end"),
	}
	writeJSON(w, http.StatusOK, s.explorer.Timeseries(r.Context(), req))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
