// Package server wires HTTP handlers into a ServeMux for the hub.
package server

import (
	"net/http"

	"github.com/Tyrowin/presencehub/internal/health"
)

// SetupRoutes configures and returns an HTTP ServeMux with all application routes.
// The JSON API routes are wrapped in the CORS policy built from the allowed origins.
func SetupRoutes(h *Handlers, checker *health.Checker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.Banner)
	mux.HandleFunc("/ws", h.WebSocket)
	mux.HandleFunc("/test", h.TestPage)
	mux.Handle("/api/messages", h.origins.cors(http.HandlerFunc(h.Messages)))
	mux.Handle("/api/users", h.origins.cors(http.HandlerFunc(h.Users)))
	mux.HandleFunc("/healthz", checker.LivenessHandler())
	mux.HandleFunc("/readyz", checker.ReadinessHandler())
	return mux
}
