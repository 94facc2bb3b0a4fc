// Package server exposes the authentication orchestrator over HTTP: one
// endpoint to run a login ceremony and a small session-management surface
// on top of the storage layer.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/trungleviet-agilityio/playwright-training/pkg/config"
	"github.com/trungleviet-agilityio/playwright-training/pkg/logging"
	"github.com/trungleviet-agilityio/playwright-training/pkg/storage"
	"github.com/trungleviet-agilityio/playwright-training/pkg/types"
)

// Authenticator runs one authentication attempt. Satisfied by
// auth.Orchestrator.
type Authenticator interface {
	Authenticate(ctx context.Context, req *types.LoginRequest) (*types.AuthResult, error)
}

// ProviderLister enumerates the supported providers for the catalog
// endpoint.
type ProviderLister func() []types.Provider

// Server wires the HTTP routes.
type Server struct {
	auth      Authenticator
	store     storage.Store
	settings  *config.Settings
	providers ProviderLister
	log       *logging.Logger
	router    *mux.Router
}

// New builds the server and its routes.
func New(auth Authenticator, store storage.Store, settings *config.Settings, providers ProviderLister, log *logging.Logger) *Server {
	s := &Server{
		auth:      auth,
		store:     store,
		settings:  settings,
		providers: providers,
		log:       log,
		router:    mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/providers", s.handleProviders).Methods(http.MethodGet)
	s.router.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	s.router.HandleFunc("/auth/sessions", s.handleListSessions).Methods(http.MethodGet)
	s.router.HandleFunc("/auth/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	s.router.HandleFunc("/auth/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)
}

// Handler returns the root handler for mounting or serving.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks serving the configured address.
func (s *Server) ListenAndServe() error {
	s.log.Infof("listening on %s", s.settings.APIAddr)
	srv := &http.Server{
		Addr:              s.settings.APIAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// LoginResponse is the login endpoint's payload.
type LoginResponse struct {
	Success         bool                  `json:"success"`
	Message         string                `json:"message"`
	SessionID       string                `json:"session_id,omitempty"`
	Cookies         []types.SessionCookie `json:"cookies,omitempty"`
	Tokens          *types.OAuthTokens    `json:"tokens,omitempty"`
	ExecutionTimeMS int64                 `json:"execution_time_ms"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	result, err := s.auth.Authenticate(r.Context(), &req)
	if err != nil {
		// Configuration-invariant violations are the caller's fault.
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := LoginResponse{
		Success:         result.Success,
		Message:         result.Message,
		Cookies:         result.Cookies,
		Tokens:          result.Tokens,
		ExecutionTimeMS: time.Since(start).Milliseconds(),
	}

	if result.Success {
		sessionID := uuid.NewString()
		now := time.Now().UTC()
		record := &storage.Record{
			SessionID: sessionID,
			Provider:  req.Provider,
			Email:     req.Email,
			Cookies:   result.Cookies,
			Tokens:    result.Tokens,
			Metadata:  map[string]string{"mode": string(req.EffectiveMode())},
			CreatedAt: now,
			ExpiresAt: now.Add(time.Duration(s.settings.SessionTimeoutMinutes) * time.Minute),
			LastUsed:  now,
		}
		if err := s.store.Store(record); err != nil {
			s.log.Errorf("failed to persist session %s: %v", sessionID, err)
		} else {
			resp.SessionID = sessionID
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	record, err := s.store.Get(id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if record == nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	provider := types.Provider(r.URL.Query().Get("provider"))
	records, err := s.store.ListActive(provider)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []*storage.Record{}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": records})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	existed, err := s.store.Delete(id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !existed {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"providers": s.providers()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Errorf("failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
