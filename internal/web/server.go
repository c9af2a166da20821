// Package web provides the HTTP JSON API over the visit records store.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/evcraddock/client-visits/internal/auth"
	"github.com/evcraddock/client-visits/internal/logging"
	"github.com/evcraddock/client-visits/internal/metrics"
	"github.com/evcraddock/client-visits/internal/visit"
)

// DefaultRecent is how many visits the summary lists when the request does not say.
const DefaultRecent = 3

// Options configures a Server.
type Options struct {
	// Scoping restricts every user to the visits attributed to them.
	Scoping bool
	// Users resolves request credentials. Nil means the demo directory.
	Users   *auth.Directory
	Metrics *metrics.Metrics
}

// Server is the API HTTP server.
type Server struct {
	store   *visit.Store
	scoping bool
	metrics *metrics.Metrics
	mux     *http.ServeMux
	handler http.Handler
}

// NewServer creates a server over store.
func NewServer(store *visit.Store, opts Options) *Server {
	users := opts.Users
	if users == nil {
		users = auth.DemoDirectory()
	}

	s := &Server{
		store:   store,
		scoping: opts.Scoping,
		metrics: opts.Metrics,
		mux:     http.NewServeMux(),
	}

	s.mux.HandleFunc("/health", s.handleHealth)
	if s.metrics != nil {
		s.mux.Handle("/metrics", s.metrics.Handler())
	}
	s.mux.HandleFunc("/api/me", s.handleAPIMe)
	s.mux.HandleFunc("/api/summary", s.handleAPISummary)
	s.mux.HandleFunc("/api/export", s.handleAPIExport)
	s.mux.HandleFunc("/api/visits", s.handleAPIVisits)
	s.mux.HandleFunc("/api/visits/", s.handleAPIVisits)
	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		apiError(w, "not found", http.StatusNotFound)
	})

	s.handler = logging.RequestLogger(auth.RequireUser(users, s.mux))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr, "scoping", s.scoping)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// view returns the store as seen by the request's user.
func (s *Server) view(r *http.Request) (*visit.View, *auth.User) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		return nil, nil
	}
	return s.store.View(u.ID, s.scoping), u
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
