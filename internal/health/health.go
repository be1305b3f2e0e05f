// Package health serves liveness and readiness probes for the daemon.
//
// /healthz reports liveness and always returns 200 for a running process.
// /readyz evaluates the registered [Check] functions and returns 200 only
// when every one of them passes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// probeTimeout bounds a single readiness check.
const probeTimeout = 3 * time.Second

// Check is a named readiness probe. Probe returns nil when the dependency is
// usable and an error describing the failure otherwise. It must respect
// context cancellation.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Handler serves the probe endpoints. The check list is fixed at construction
// time, so the handler is safe for concurrent use.
type Handler struct {
	checks []Check
}

// New creates a [Handler] that runs the given checks, in order, on each
// /readyz request.
func New(checks ...Check) *Handler {
	h := &Handler{checks: make([]Check, len(checks))}
	copy(h.checks, checks)
	return h
}

// Routes registers the probe endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("GET /readyz", h.readyz)
}

// probeReport is the JSON body written by both endpoints.
type probeReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeReport(w, http.StatusOK, probeReport{Status: "ok"})
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	report := probeReport{
		Status: "ok",
		Checks: make(map[string]string, len(h.checks)),
	}
	code := http.StatusOK

	for _, c := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		err := c.Probe(ctx)
		cancel()

		if err != nil {
			report.Checks[c.Name] = "fail: " + err.Error()
			report.Status = "fail"
			code = http.StatusServiceUnavailable
			continue
		}
		report.Checks[c.Name] = "ok"
	}
	writeReport(w, code, report)
}

func writeReport(w http.ResponseWriter, code int, report probeReport) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(report)
}
