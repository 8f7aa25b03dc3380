package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// healthHandler reports liveness.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// statusHandler reports the most recent build run as JSON.
func (a *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Status endpoint hit.", "remote_addr", r.RemoteAddr)

	last := a.lastRun()
	w.Header().Set("Content-Type", "application/json")
	if last == nil {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"state":"idle"}`)
		return
	}

	payload := map[string]any{
		"state":    "ok",
		"run_id":   last.RunID,
		"bundle":   last.Bundle,
		"started":  last.Started.Format(time.RFC3339Nano),
		"finished": last.Finished.Format(time.RFC3339Nano),
		"steps":    last.Steps,
	}
	if !last.OK() {
		payload["state"] = "failed"
		payload["error"] = last.Err.Error()
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error("Failed to encode status payload.", "error", err)
	}
}

// startStatusServer initializes and runs the status HTTP server.
func (a *App) startStatusServer(port int) {
	a.logger.Debug("Configuring status server.")
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/status", a.statusHandler)

	addr := fmt.Sprintf(":%d", port)

	go func() {
		a.logger.Info("🩺 Status server starting", "address", fmt.Sprintf("http://localhost%s/status", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			a.logger.Error("Status server failed", "error", err)
		}
	}()
}
