// Package server implements the HTTP and WebSocket side of the presence hub.
//
// The Hub runs the presence core on a single goroutine; Clients pump frames
// between their WebSocket and the hub; Handlers and SetupRoutes expose the
// upgrade endpoint, the read-only roster and history API and the health probes.
package server
