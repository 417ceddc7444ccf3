package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"pixelwatch/internal/adapters/storage/sqlite"
	"pixelwatch/internal/infrastructure/config"
	obs "pixelwatch/internal/infrastructure/observability"
	"pixelwatch/internal/usecase"
)

type Deps struct {
	Cfg     config.Config
	Logger  *zerolog.Logger
	Metrics *obs.Metrics
	Svc     *usecase.RecordService
	Monitor *MonitorHub
	// Archive is optional; when nil the archive endpoint reports 501.
	Archive *sqlite.Archive
}

func NewRouter(d *Deps) http.Handler {
	return withCORS(d.Cfg, buildBaseMux(d))
}

func buildBaseMux(d *Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry(), promhttp.HandlerOpts{}))

	mux.HandleFunc("/api/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":    "pixelwatch",
			"version": obs.Version,
			"time":    time.Now().UTC(),
		})
	})

	mux.HandleFunc("/api/requests", d.handleRequests)
	mux.HandleFunc("/api/requests/", d.handleRequestByID)
	mux.HandleFunc("/api/analyze", d.handleAnalyze)
	mux.HandleFunc("/api/summary", d.handleSummary)
	mux.HandleFunc("/api/export", d.handleExport)
	mux.HandleFunc("/api/archive", d.handleArchive)
	mux.HandleFunc("/api/monitor/ws", d.Monitor.HandleWS)
	mux.HandleFunc("/api/monitor/events", d.handleMonitorEvents)

	return mux
}

func withCORS(cfg config.Config, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
