// Command mockfews serves the fixture documents in data/mock as a FEWS PI
// REST service for local development and demos.
//
// Usage:
//
//	go run ./cmd/mockfews -addr :8081 -data data/mock
//	FEWS_API_URL=http://localhost:8081/rest/fewspiservice/v1 go run ./cmd/fewsexplorer
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/couchcryptid/fews-explorer/internal/domain"
	"github.com/gorilla/mux"
	"github.com/lmittmann/tint"
)

func main() {
	addr := flag.String("addr", ":8081", "listen address")
	dataDir := flag.String("data", "data/mock", "directory holding locations.json, parameters.json and timeseries.json")
	latency := flag.Duration("latency", 0, "artificial delay added to every response")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.Kitchen}))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newHandler(*dataDir, *latency, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("mock FEWS service listening", "addr", *addr, "api_url", "http://localhost"+*addr+domain.RestPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("mock server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
		os.Exit(1)
	}
}

// newHandler routes the three PI resources to their fixture files. The
// documentFormat parameter must match what the real service expects.
func newHandler(dataDir string, latency time.Duration, logger *slog.Logger) http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix(domain.RestPath).Subrouter()

	serve := func(name, format string) http.HandlerFunc {
		path := filepath.Join(dataDir, name+".json")
		return func(w http.ResponseWriter, req *http.Request) {
			if latency > 0 {
				select {
				case <-time.After(latency):
				case <-req.Context().Done():
					return
				}
			}
			if got := req.URL.Query().Get("documentFormat"); got != format {
				http.Error(w, fmt.Sprintf("unsupported documentFormat %q", got), http.StatusBadRequest)
				return
			}
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Error("read fixture", "path", path, "error", err)
				http.Error(w, "fixture unavailable", http.StatusInternalServerError)
				return
			}
			logger.Debug("served fixture", "resource", name, "query", req.URL.RawQuery)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(data)
		}
	}

	api.HandleFunc("/locations", serve("locations", domain.FormatPIJSON)).Methods(http.MethodGet)
	api.HandleFunc("/parameters", serve("parameters", domain.FormatPIJSON)).Methods(http.MethodGet)
	api.HandleFunc("/timeseries", serve("timeseries", domain.FormatDDJSON)).Methods(http.MethodGet)
	return r
}
