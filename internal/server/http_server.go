// Package server constructs, starts and drains the hub's HTTP service.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Tyrowin/presencehub/internal/health"
)

// CreateServer creates and configures an HTTP server with the specified port and handler.
// It sets reasonable timeout values for production use.
func CreateServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// ShutdownServer gracefully shuts down the HTTP server, waiting for in-flight
// requests until timeout. Hijacked WebSocket connections are closed by the hub.
func ShutdownServer(server *http.Server, timeout time.Duration, log *slog.Logger) error {
	log.Info("shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown error", slogKeyError, err)
		return err
	}

	log.Info("HTTP server shutdown completed")
	return nil
}

// Server bundles the hub, its readiness state and the HTTP listener.
type Server struct {
	cfg    Config
	hub    *Hub
	health *health.Checker
	http   *http.Server
	log    *slog.Logger
}

// New assembles a Server from cfg. Nothing runs until Run.
func New(cfg Config, opts ...HubOption) *Server {
	hub := NewHub(cfg, opts...)
	checker := health.NewChecker()
	mux := SetupRoutes(NewHandlers(hub, checker), checker)

	return &Server{
		cfg:    hub.cfg,
		hub:    hub,
		health: checker,
		http:   CreateServer(hub.cfg.Port, mux),
		log:    hub.log,
	}
}

// Hub returns the hub served by s.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the HTTP handler, for tests that bring their own listener.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Health returns the readiness checker.
func (s *Server) Health() *health.Checker { return s.health }

// Run starts the hub and serves HTTP until ctx is cancelled or the listener
// fails, then drains: readiness flips to draining, HTTP stops, the hub closes
// every session.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	go s.hub.Run()

	serveErr := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", listener.Addr().String())
		serveErr <- s.http.Serve(listener)
	}()
	s.health.SetReady()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	s.health.SetDraining()
	shutdownErr := ShutdownServer(s.http, s.cfg.ShutdownTimeout, s.log)
	hubErr := s.hub.Shutdown(s.cfg.ShutdownTimeout)
	return errors.Join(runErr, shutdownErr, hubErr)
}
