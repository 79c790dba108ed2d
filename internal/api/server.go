// Package api exposes the bundler over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/merchkit/image-bundler/pkg/bundle"
	"github.com/merchkit/image-bundler/pkg/history"
	"github.com/merchkit/image-bundler/pkg/shop"
)

// BundleRunner runs one bundle request. *bundle.Service implements it.
type BundleRunner interface {
	Run(ctx context.Context, req bundle.Request) (bundle.Response, error)
}

// HistoryReader lists recent bundles. *history.Store implements it.
type HistoryReader interface {
	Recent(ctx context.Context, n int) ([]history.Record, error)
}

// Server routes bundle requests to the pipeline.
type Server struct {
	Router  *mux.Router
	bundles BundleRunner
	history HistoryReader
	logger  zerolog.Logger
}

// NewServer creates the HTTP server. history may be nil.
func NewServer(bundles BundleRunner, hist HistoryReader) *Server {
	s := &Server{
		Router:  mux.NewRouter(),
		bundles: bundles,
		history: hist,
		logger:  log.With().Str("component", "api").Logger(),
	}

	s.Router.Use(s.recoverMiddleware)
	s.Router.HandleFunc("/bundles", s.handleCreateBundle).Methods(http.MethodPost)
	s.Router.HandleFunc("/bundles/recent", s.handleRecentBundles).Methods(http.MethodGet)
	s.Router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.Router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) handleCreateBundle(w http.ResponseWriter, r *http.Request) {
	var req bundle.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := s.bundles.Run(r.Context(), req)
	if err != nil {
		s.writeRunError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecentBundles(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeJSON(w, http.StatusOK, []history.Record{})
		return
	}

	records, err := s.history.Recent(r.Context(), 20)
	if err != nil {
		s.logger.Error().Err(err).Msg("History read failed")
		s.writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if records == nil {
		records = []history.Record{}
	}

	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// writeRunError maps pipeline failures onto status codes: validation errors
// are the caller's fault, upstream API failures surface as bad gateway, and
// everything else is an internal error.
func (s *Server) writeRunError(w http.ResponseWriter, err error) {
	var apiErr *shop.APIError

	switch {
	case errors.Is(err, bundle.ErrInvalidRequest):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &apiErr):
		s.logger.Error().Err(err).Int("upstream_status", apiErr.StatusCode).Msg("Upstream API failure")
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error().Err(err).Msg("Bundle request failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// recoverMiddleware reports panics as generic internal errors instead of
// tearing down the connection.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("Handler panic")
				s.writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
