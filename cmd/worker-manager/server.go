// cmd/worker-manager/server.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"costli-agents/pkg/registry"
)

const readyTimeout = 3 * time.Second

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newMux serves the probes, Prometheus metrics and the activity catalog of
// the running workers.
func newMux(ready func(context.Context) error, taskTypes func() []string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := ready(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ready", "workers": len(taskTypes())})
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/registry", func(w http.ResponseWriter, r *http.Request) {
		catalog := registry.Catalog()
		if r.URL.Query().Get("all") != "true" {
			catalog = catalog.Restrict(taskTypes())
		}
		writeJSON(w, http.StatusOK, catalog)
	})

	return mux
}
