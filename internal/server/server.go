// Package server exposes the webhook endpoint. It owns transport
// concerns only: signature verification, payload decoding and response
// codes. Everything after a verified payload belongs to the bridge.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/go-github/v41/github"

	"github.com/issuebridge/issuebridge/internal/bridge"
	"github.com/issuebridge/issuebridge/internal/logging"
	"github.com/issuebridge/issuebridge/pkg/models"
)

// EventHandler processes one verified webhook delivery.
type EventHandler interface {
	Handle(ctx context.Context, event *models.WebhookEvent) (bridge.Outcome, error)
}

// Server is the webhook HTTP server.
type Server struct {
	handler EventHandler
	secret  []byte
	mux     *http.ServeMux
}

// New creates a Server verifying deliveries against the shared secret.
func New(handler EventHandler, secret string) *Server {
	s := &Server{
		handler: handler,
		secret:  []byte(secret),
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("/", s.handleWebhook)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleWebhook verifies, decodes and processes one delivery. Unverified
// requests never reach the bridge.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"msg": "method not allowed"})
		return
	}

	payload, err := github.ValidatePayload(r, s.secret)
	if err != nil {
		logging.Warn("rejected unverified delivery", "error", err)
		writeJSON(w, http.StatusForbidden, map[string]string{"msg": "signature verification failed"})
		return
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		logging.Warn("rejected undecodable delivery", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "malformed payload"})
		return
	}

	outcome, err := s.handler.Handle(r.Context(), &event)
	if err != nil {
		logging.Error("failed to process delivery", "action", event.Action, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"msg": "failed to process event"})
		return
	}

	response := map[string]string{"msg": string(outcome.Disposition)}
	if outcome.Ticket != nil {
		response["ticket"] = outcome.Ticket.Key
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("failed to write response", "error", err)
	}
}

// ListenAndServe runs the server on addr until ctx is canceled, then
// shuts down gracefully, letting in-flight deliveries finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	logging.Info("webhook server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logging.Info("webhook server stopped")
		return nil
	}
}
