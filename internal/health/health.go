// Package health tracks whether the hub is accepting connections and exposes
// liveness and readiness endpoints.
package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	stateStarting int32 = iota
	stateReady
	stateDraining
)

// Checker follows the hub lifecycle: starting, ready, then draining once
// shutdown begins. It is safe for concurrent use.
type Checker struct {
	state   atomic.Int32
	started time.Time
}

// NewChecker returns a Checker in the starting state.
func NewChecker() *Checker {
	return &Checker{started: time.Now()}
}

// SetReady marks the hub as accepting connections.
func (c *Checker) SetReady() { c.state.Store(stateReady) }

// SetDraining marks the hub as shutting down.
func (c *Checker) SetDraining() { c.state.Store(stateDraining) }

// IsReady reports whether new WebSocket sessions should be accepted.
func (c *Checker) IsReady() bool {
	return c.state.Load() == stateReady
}

// State returns "starting", "ready" or "draining".
func (c *Checker) State() string {
	switch c.state.Load() {
	case stateReady:
		return "ready"
	case stateDraining:
		return "draining"
	default:
		return "starting"
	}
}

type response struct {
	Status string `json:"status"`
	Uptime string `json:"uptime,omitempty"`
}

// LivenessHandler always answers 200 while the process runs.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		uptime := time.Since(c.started).Truncate(time.Second)
		writeJSON(w, http.StatusOK, response{Status: "ok", Uptime: uptime.String()})
	}
}

// ReadinessHandler answers 200 when ready and 503 otherwise.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		code := http.StatusServiceUnavailable
		if c.IsReady() {
			code = http.StatusOK
		}
		writeJSON(w, code, response{Status: c.State()})
	}
}

func writeJSON(w http.ResponseWriter, code int, v response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
